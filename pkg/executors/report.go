package executors

import (
	"fmt"
	"time"

	"github.com/brunomvsouza/ynab.go/api/transaction"

	"github.com/yurifrl/achu/pkg/nacha"
	"github.com/yurifrl/achu/pkg/ynab"
)

// Item is one rendered entry together with the values shown to the user.
type Item struct {
	file   string
	batch  int
	name   string
	class  nacha.EntryClass
	cents  int64
	record string
}

func (i Item) Batch() int { return i.batch }
func (i Item) Name() string { return i.name }
func (i Item) Class() nacha.EntryClass { return i.class }
func (i Item) Kind() string { return i.class.String() }
func (i Item) Cents() int64 { return i.cents }
func (i Item) Record() string { return i.record }

// Trace is the trace number exactly as printed in the record.
func (i Item) Trace() string {
	return i.record[87:94]
}

// Amount is signed from the originator's point of view: credits sent to a
// receiver are negative, debits collected are positive.
func (i Item) Amount() float64 {
	v := float64(i.cents) / 100
	if i.class == nacha.CreditEntry {
		return -v
	}
	return v
}

// CustomID identifies the entry in external systems. Trace numbers restart
// in every file, so the file's creation time and ID modifier are part of it.
func (i Item) CustomID() string {
	return fmt.Sprintf("ach-%s-%d-%s", i.file, i.batch, i.Trace())
}

type BatchSummary struct {
	Number      int
	Company     string
	Description string
	Entries     int
	Debits      int64
	Credits     int64
	Hash        int64
}

// Report summarises a file without re-parsing what was rendered.
type Report struct {
	Items   []Item
	Batches []BatchSummary
	Lines   int
	Blocks  int
	Entries int
	Debits  int64
	Credits int64
	Hash    int64
}

func BuildReport(f *nacha.File) *Report {
	r := &Report{
		Lines:   len(f.Lines()),
		Blocks:  f.BlockCount(),
		Entries: f.EntryCount(),
		Debits:  f.TotalDebits(),
		Credits: f.TotalCredits(),
		Hash:    f.RoutingHash(),
	}
	header := f.Header()
	fileID := header[23:33] + "-" + header[33:34]
	for _, b := range f.Batches() {
		cfg := b.Config()
		ctx := b.Context()
		r.Batches = append(r.Batches, BatchSummary{
			Number:      b.Number(),
			Company:     cfg.CompanyName,
			Description: cfg.EntryDescription,
			Entries:     b.EntryCount(),
			Debits:      b.TotalDebits(),
			Credits:     b.TotalCredits(),
			Hash:        b.RoutingHash(),
		})
		for _, e := range b.Entries() {
			r.Items = append(r.Items, Item{
				file:   fileID,
				batch:  b.Number(),
				name:   e.IndividualName(),
				class:  e.Class(),
				cents:  e.Amount(),
				record: e.Render(ctx),
			})
		}
	}
	return r
}

// Count returns how many items belong to class.
func (r *Report) Count(class nacha.EntryClass) int {
	n := 0
	for _, it := range r.Items {
		if it.class == class {
			n++
		}
	}
	return n
}

// Payloads converts the live entries not listed in skip into YNAB payloads.
// Unclassified entries move no money and are left out.
func (r *Report) Payloads(accountID string, date time.Time, skip map[string]bool) ([]transaction.PayloadTransaction, error) {
	out := make([]transaction.PayloadTransaction, 0, len(r.Items))
	for _, it := range r.Items {
		if it.class == nacha.Unclassified || skip[it.CustomID()] {
			continue
		}
		p, err := ynab.Payload(accountID, date, it.name, ynab.Memo(it.CustomID(), it.Kind()), it.cents*10*sign(it.class))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func sign(class nacha.EntryClass) int64 {
	if class == nacha.CreditEntry {
		return -1
	}
	return 1
}
