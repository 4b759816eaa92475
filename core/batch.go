package core

import "fmt"

// DefaultBatchCapacity is the number of records a batch pre-allocates.
const DefaultBatchCapacity = 1024

// Batch accumulates the instance records of one draw class for one
// frame. Its backing storage only grows: Clear keeps capacity so a
// steady-state frame allocates nothing.
type Batch struct {
	class      DrawClass
	records    []InstanceRecord
	limit      int
	overflowed bool
}

// NewBatch returns a batch for the given class. limit caps the record
// count; zero or negative means unbounded.
func NewBatch(class DrawClass, limit int) *Batch {
	capacity := DefaultBatchCapacity
	if limit > 0 && limit < capacity {
		capacity = limit
	}
	return &Batch{
		class:   class,
		records: make([]InstanceRecord, 0, capacity),
		limit:   limit,
	}
}

// Class returns the draw class this batch holds records for.
func (b *Batch) Class() DrawClass { return b.class }

// Len returns the number of records queued this frame.
func (b *Batch) Len() int { return len(b.records) }

// Push appends one record. When the batch has reached its limit the
// record is dropped, the batch is marked overflowed for the rest of the
// frame, and ErrBufferOverflow is returned.
func (b *Batch) Push(r InstanceRecord) error {
	if b.limit > 0 && len(b.records) >= b.limit {
		b.overflowed = true
		return fmt.Errorf("%s batch at limit %d: %w", b.class, b.limit, ErrBufferOverflow)
	}
	b.records = append(b.records, r)
	return nil
}

// Overflowed reports whether any record was dropped since the last
// Clear. An overflowed batch must not be submitted: a partial frame
// would silently render a subset of what the caller queued.
func (b *Batch) Overflowed() bool { return b.overflowed }

// Records returns the queued records. The slice is only valid until the
// next Clear.
func (b *Batch) Records() []InstanceRecord { return b.records }

// Bytes appends the little-endian byte image of every queued record to
// dst and returns the result. Upload paths reuse dst across frames.
func (b *Batch) Bytes(dst []byte) []byte {
	if need := len(b.records) * RecordStride; cap(dst)-len(dst) < need {
		grown := make([]byte, len(dst), len(dst)+need)
		copy(grown, dst)
		dst = grown
	}
	for _, r := range b.records {
		dst = r.AppendBytes(dst)
	}
	return dst
}

// Clear drops the queued records and the overflow mark but keeps
// capacity.
func (b *Batch) Clear() {
	b.records = b.records[:0]
	b.overflowed = false
}
