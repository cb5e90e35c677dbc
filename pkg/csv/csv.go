package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"strconv"
)

// Record is one line of the entry register.
type Record interface {
	Batch() int
	Trace() string
	Name() string
	Kind() string
	Amount() float64
}

type FilterFunc[T Record] func(T) bool

var header = []string{"Batch", "Trace", "Name", "Kind", "Amount"}

// Create renders records accepted by filter as CSV. A nil filter keeps every record.
func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write([]string{
				strconv.Itoa(r.Batch()),
				r.Trace(),
				r.Name(),
				r.Kind(),
				strconv.FormatFloat(r.Amount(), 'f', 2, 64),
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}
