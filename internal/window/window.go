// Package window implements the time-bounded sample buffer that feeds peak
// detection and metrics.
package window

const (
	DefaultMaxSpan = 25.0
	MinMaxSpan     = 20.0
	MaxMaxSpan     = 25.0
)

// Sample is one processed frame. Times are seconds on a monotonic clock.
type Sample struct {
	Time        float64
	Raw         float64
	Cardiac     float64
	Respiratory float64
}

// Buffer keeps four index-aligned series and evicts from the front once the
// covered time span exceeds maxSpan. Eviction advances a head offset; the
// backing arrays are compacted when the dead prefix dominates, which keeps
// Push amortized O(1).
type Buffer struct {
	maxSpan float64
	head    int

	times       []float64
	raw         []float64
	cardiac     []float64
	respiratory []float64
}

func New(maxSpan float64) *Buffer {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	return &Buffer{maxSpan: maxSpan}
}

func (b *Buffer) MaxSpan() float64 {
	return b.maxSpan
}

// Push appends s and evicts stale samples. Samples older than the newest
// one are clamped forward so the time series never decreases.
func (b *Buffer) Push(s Sample) {
	if n := len(b.times); n > b.head && s.Time < b.times[n-1] {
		s.Time = b.times[n-1]
	}

	b.times = append(b.times, s.Time)
	b.raw = append(b.raw, s.Raw)
	b.cardiac = append(b.cardiac, s.Cardiac)
	b.respiratory = append(b.respiratory, s.Respiratory)

	newest := s.Time
	for b.head < len(b.times)-1 && newest-b.times[b.head] > b.maxSpan {
		b.head++
	}

	if b.head > 0 && b.head >= len(b.times)/2 {
		b.compact()
	}
}

func (b *Buffer) compact() {
	n := copy(b.times, b.times[b.head:])
	copy(b.raw, b.raw[b.head:])
	copy(b.cardiac, b.cardiac[b.head:])
	copy(b.respiratory, b.respiratory[b.head:])

	b.times = b.times[:n]
	b.raw = b.raw[:n]
	b.cardiac = b.cardiac[:n]
	b.respiratory = b.respiratory[:n]
	b.head = 0
}

// Reset empties all four series.
func (b *Buffer) Reset() {
	b.head = 0
	b.times = b.times[:0]
	b.raw = b.raw[:0]
	b.cardiac = b.cardiac[:0]
	b.respiratory = b.respiratory[:0]
}

func (b *Buffer) Len() int {
	return len(b.times) - b.head
}

// The series accessors return views into the live region. They are valid
// until the next Push or Reset and must not be modified.

func (b *Buffer) Times() []float64       { return b.times[b.head:] }
func (b *Buffer) Raw() []float64         { return b.raw[b.head:] }
func (b *Buffer) Cardiac() []float64     { return b.cardiac[b.head:] }
func (b *Buffer) Respiratory() []float64 { return b.respiratory[b.head:] }

// At returns the i-th live sample.
func (b *Buffer) At(i int) Sample {
	j := b.head + i
	return Sample{
		Time:        b.times[j],
		Raw:         b.raw[j],
		Cardiac:     b.cardiac[j],
		Respiratory: b.respiratory[j],
	}
}

// Newest returns the most recent sample time.
func (b *Buffer) Newest() (float64, bool) {
	if b.Len() == 0 {
		return 0, false
	}
	return b.times[len(b.times)-1], true
}

// Span is newest minus oldest sample time.
func (b *Buffer) Span() float64 {
	if b.Len() == 0 {
		return 0
	}
	return b.times[len(b.times)-1] - b.times[b.head]
}
