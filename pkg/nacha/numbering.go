package nacha

// DefaultBatchStride leaves room between generated batch numbers so batches
// can be renumbered by hand.
const DefaultBatchStride = 10000

// Numbering supplies identifiers the caller did not set explicitly.
type Numbering interface {
	// TraceNumber returns the trace number for the entry at the 1-based position.
	TraceNumber(position int) int
	// BatchNumber returns the batch number for the batch at the 0-based index.
	BatchNumber(index int) int
}

// Sequential numbers entries by position and batches by (index+1)*BatchStride.
type Sequential struct {
	BatchStride int
}

func (s Sequential) TraceNumber(position int) int {
	return position
}

func (s Sequential) BatchNumber(index int) int {
	stride := s.BatchStride
	if stride <= 0 {
		stride = DefaultBatchStride
	}
	return (index + 1) * stride
}
