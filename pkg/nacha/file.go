package nacha

import (
	"io"
	"strconv"
	"strings"
	"time"
)

// file header creation timestamp, YYMMDDHHmm
const timestampLayout = "0601021504"

// FileConfig holds the file header values. Zero values take the documented
// defaults except CreatedAt, which the caller always provides.
type FileConfig struct {
	// OpenCode and CloseCode default to 1 and 9.
	OpenCode  string
	CloseCode string
	// Priority defaults to 01.
	Priority string
	// DestinationID is the routing number of the receiving point, usually
	// with a leading space.
	DestinationID string
	// OriginID is usually the originator's EIN with a leading pad digit.
	OriginID string
	// FileIDModifier (0-9, A-Z) tells apart files created on the same day.
	// Defaults to 0.
	FileIDModifier string
	CreatedAt      time.Time
	// RecordSize defaults to 94.
	RecordSize int
	// BlockingFactor defaults to 10.
	BlockingFactor int
	// FormatCode defaults to 1.
	FormatCode      string
	DestinationName string
	OriginName      string
	// ReferenceCode defaults to 00000000.
	ReferenceCode string
	Reserved      string
}

func (c FileConfig) withDefaults() FileConfig {
	if c.OpenCode == "" {
		c.OpenCode = "1"
	}
	if c.CloseCode == "" {
		c.CloseCode = "9"
	}
	if c.Priority == "" {
		c.Priority = "01"
	}
	if c.FileIDModifier == "" {
		c.FileIDModifier = "0"
	}
	if c.RecordSize == 0 {
		c.RecordSize = RecordLength
	}
	if c.BlockingFactor <= 0 || c.BlockingFactor > 99 {
		c.BlockingFactor = 10
	}
	if c.FormatCode == "" {
		c.FormatCode = "1"
	}
	if c.ReferenceCode == "" {
		c.ReferenceCode = "00000000"
	}
	return c
}

// Option configures a File.
type Option func(*File)

// WithNumbering replaces the default Sequential numbering policy.
func WithNumbering(n Numbering) Option {
	return func(f *File) {
		f.numbering = n
	}
}

// File is the root of the model: an ordered, append only list of batches.
type File struct {
	cfg       FileConfig
	batches   []*Batch
	numbering Numbering
}

func NewFile(cfg FileConfig, opts ...Option) *File {
	f := &File{cfg: cfg.withDefaults(), numbering: Sequential{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the file settings after defaults were applied.
func (f *File) Config() FileConfig {
	return f.cfg
}

// AddBatch appends a new batch. A zero batch number is replaced by the
// numbering policy's value for the batch's index.
func (f *File) AddBatch(cfg BatchConfig) *Batch {
	if cfg.BatchNumber == 0 {
		cfg.BatchNumber = f.numbering.BatchNumber(len(f.batches))
	}
	b := newBatch(cfg, f.numbering)
	f.batches = append(f.batches, b)
	return b
}

// Batches returns the batches in insertion order.
func (f *File) Batches() []*Batch {
	out := make([]*Batch, len(f.batches))
	copy(out, f.batches)
	return out
}

func (f *File) EntryCount() int {
	n := 0
	for _, b := range f.batches {
		n += b.EntryCount()
	}
	return n
}

// CountLines is the number of records before filler: file header and
// control, a header and control per batch, and one line per entry.
func (f *File) CountLines() int {
	return 2 + f.EntryCount() + 2*len(f.batches)
}

func (f *File) fillerCount() int {
	rem := f.CountLines() % f.cfg.BlockingFactor
	if rem == 0 {
		return 0
	}
	return f.cfg.BlockingFactor - rem
}

// BlockCount is the number of blocks the padded file occupies.
func (f *File) BlockCount() int {
	return (f.CountLines() + f.fillerCount()) / f.cfg.BlockingFactor
}

// FillerLines pads the file to a whole number of blocks with records of nines.
func (f *File) FillerLines() []string {
	n := f.fillerCount()
	filler := strings.Repeat("9", RecordLength)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = filler
	}
	return lines
}

func (f *File) TotalCredits() int64 {
	var total int64
	for _, b := range f.batches {
		total += b.TotalCredits()
	}
	return total
}

func (f *File) TotalDebits() int64 {
	var total int64
	for _, b := range f.batches {
		total += b.TotalDebits()
	}
	return total
}

func (f *File) RoutingHash() int64 {
	var hash int64
	for _, b := range f.batches {
		hash += b.RoutingHash()
	}
	return hash
}

// Header renders the file header record.
func (f *File) Header() string {
	c := f.cfg
	return Alpha(c.OpenCode, 1) +
		Alpha(c.Priority, 2) +
		Field(c.DestinationID, 10, JustifyRight, ' ') +
		Alpha(c.OriginID, 10) +
		Alpha(c.CreatedAt.Format(timestampLayout), 10) +
		Alpha(c.FileIDModifier, 1) +
		Numeric(int64(c.RecordSize), 3) +
		Numeric(int64(c.BlockingFactor), 2) +
		Alpha(c.FormatCode, 1) +
		Alpha(c.DestinationName, 23) +
		Alpha(c.OriginName, 23) +
		Alpha(c.ReferenceCode, 8)
}

// Footer renders the file control record, aggregating every batch.
func (f *File) Footer() string {
	c := f.cfg
	return Alpha(c.CloseCode, 1) +
		Numeric(int64(len(f.batches)), 6) +
		Numeric(int64(f.BlockCount()), 6) +
		Numeric(int64(f.EntryCount()), 8) +
		Rightmost(strconv.FormatInt(f.RoutingHash(), 10), 10) +
		Numeric(f.TotalDebits(), 12) +
		Numeric(f.TotalCredits(), 12) +
		Field(c.Reserved, 39, JustifyRight, ' ')
}

// Lines renders the complete file: header, batches, control and filler.
func (f *File) Lines() []string {
	lines := make([]string, 0, f.CountLines()+f.fillerCount())
	lines = append(lines, f.Header())
	for _, b := range f.batches {
		lines = append(lines, b.Lines()...)
	}
	lines = append(lines, f.Footer())
	return append(lines, f.FillerLines()...)
}

// String joins the rendered records with newlines.
func (f *File) String() string {
	return strings.Join(f.Lines(), "\n")
}

// WriteTo writes every record followed by a newline.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range f.Lines() {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
