package nacha

import (
	"strconv"
	"time"
)

// batch header dates are printed as YYMMDD
const dateLayout = "060102"

// BatchConfig holds the caller supplied values of a batch. Zero values take
// the documented defaults.
type BatchConfig struct {
	// ServiceClassCode defaults to 200 (mixed debits and credits).
	ServiceClassCode int
	CompanyName      string
	// CompanyDiscretionaryData is free reference text for the originator.
	CompanyDiscretionaryData string
	// CompanyID is often the originator's EIN with a leading pad character.
	CompanyID string
	// SECCode defaults to PPD.
	SECCode          string
	EntryDescription string
	DescriptiveDate  time.Time
	// EffectiveDate is the date the originator intends the batch to settle.
	EffectiveDate  time.Time
	SettlementDate string
	// OriginatorStatusCode defaults to 1.
	OriginatorStatusCode int
	// InstitutionID is the first eight digits of the originating DFI routing number.
	InstitutionID         string
	InstitutionCheckDigit int
	MessageAuthCode       string
	Reserved              string
	// BatchNumber defaults to the owning file's numbering policy.
	BatchNumber int
	// OpenCode and CloseCode default to 5 and 8.
	OpenCode  string
	CloseCode string
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.ServiceClassCode == 0 {
		c.ServiceClassCode = 200
	}
	if c.SECCode == "" {
		c.SECCode = "PPD"
	}
	if c.OriginatorStatusCode == 0 {
		c.OriginatorStatusCode = 1
	}
	if c.OpenCode == "" {
		c.OpenCode = "5"
	}
	if c.CloseCode == "" {
		c.CloseCode = "8"
	}
	return c
}

// BatchContext is what an entry needs from its batch to render itself.
type BatchContext struct {
	InstitutionID string
	BatchNumber   int
}

// Batch is an ordered, append only group of entries that settle together.
type Batch struct {
	cfg       BatchConfig
	entries   []*Entry
	numbering Numbering
}

// NewBatch creates a batch outside of a file. cfg.BatchNumber is used as is.
func NewBatch(cfg BatchConfig) *Batch {
	return newBatch(cfg, Sequential{})
}

func newBatch(cfg BatchConfig, numbering Numbering) *Batch {
	return &Batch{cfg: cfg.withDefaults(), numbering: numbering}
}

// Config returns the batch settings after defaults were applied.
func (b *Batch) Config() BatchConfig {
	return b.cfg
}

func (b *Batch) Number() int {
	return b.cfg.BatchNumber
}

// Entries returns the entries in insertion order.
func (b *Batch) Entries() []*Entry {
	out := make([]*Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Batch) EntryCount() int {
	return len(b.entries)
}

// Context returns the rendering context handed to the batch's entries.
func (b *Batch) Context() *BatchContext {
	return &BatchContext{
		InstitutionID: b.cfg.InstitutionID,
		BatchNumber:   b.cfg.BatchNumber,
	}
}

// AddEntry builds an entry from cfg and appends it. A zero trace number is
// replaced by the numbering policy's value for the entry's position.
func (b *Batch) AddEntry(cfg EntryConfig) (*Entry, error) {
	if cfg.TraceNumber == 0 {
		cfg.TraceNumber = b.numbering.TraceNumber(len(b.entries) + 1)
	}
	e, err := NewEntry(cfg)
	if err != nil {
		return nil, err
	}
	b.entries = append(b.entries, e)
	return e, nil
}

func (b *Batch) TotalCredits() int64 {
	return b.sum(CreditEntry)
}

func (b *Batch) TotalDebits() int64 {
	return b.sum(DebitEntry)
}

func (b *Batch) sum(class EntryClass) int64 {
	var total int64
	for _, e := range b.entries {
		if e.Class() == class {
			total += e.Amount()
		}
	}
	return total
}

// RoutingHash sums the receiving routing identifiers. The value is not
// reduced; footers keep its rightmost ten digits.
func (b *Batch) RoutingHash() int64 {
	var hash int64
	for _, e := range b.entries {
		hash += e.hashValue()
	}
	return hash
}

// Header renders the batch header record.
func (b *Batch) Header() string {
	c := b.cfg
	return Alpha(c.OpenCode, 1) +
		Numeric(int64(c.ServiceClassCode), 3) +
		Alpha(c.CompanyName, 16) +
		Alpha(c.CompanyDiscretionaryData, 20) +
		Alpha(c.CompanyID, 10) +
		Alpha(c.SECCode, 3) +
		Alpha(c.EntryDescription, 10) +
		Alpha(formatDate(c.DescriptiveDate), 6) +
		Alpha(formatDate(c.EffectiveDate), 6) +
		Alpha(c.SettlementDate, 3) +
		Alpha(strconv.Itoa(c.OriginatorStatusCode), 1) +
		Alpha(c.InstitutionID, 8) +
		Numeric(int64(c.BatchNumber), 7)
}

// Footer renders the batch control record from totals computed by the caller.
func (b *Batch) Footer(hash, debits, credits int64) string {
	c := b.cfg
	return Alpha(c.CloseCode, 1) +
		Numeric(int64(c.ServiceClassCode), 3) +
		Numeric(int64(len(b.entries)), 6) +
		Numeric(hash, 10) +
		Numeric(debits, 12) +
		Numeric(credits, 12) +
		Field(c.CompanyID, 10, JustifyRight, '1') +
		Field(c.MessageAuthCode, 19, JustifyRight, ' ') +
		Field(c.Reserved, 6, JustifyRight, ' ') +
		Alpha(c.InstitutionID, 8) +
		Numeric(int64(c.BatchNumber), 7)
}

// Lines renders the header, every entry in order, and the footer.
func (b *Batch) Lines() []string {
	ctx := b.Context()
	lines := make([]string, 0, len(b.entries)+2)
	lines = append(lines, b.Header())
	for _, e := range b.entries {
		lines = append(lines, e.Render(ctx))
	}
	return append(lines, b.Footer(b.RoutingHash(), b.TotalDebits(), b.TotalCredits()))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
