package window_test

import (
	"testing"

	"codeberg.org/mutker/camvitals/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func push(b *window.Buffer, fs, seconds float64) {
	n := int(fs * seconds)
	for i := 0; i < n; i++ {
		t := float64(i) / fs
		b.Push(window.Sample{Time: t, Raw: float64(i), Cardiac: -float64(i), Respiratory: 2 * float64(i)})
	}
}

func TestBufferAligned(t *testing.T) {
	b := window.New(window.DefaultMaxSpan)
	push(b, 30, 40)

	n := b.Len()
	require.Positive(t, n)
	assert.Len(t, b.Times(), n)
	assert.Len(t, b.Raw(), n)
	assert.Len(t, b.Cardiac(), n)
	assert.Len(t, b.Respiratory(), n)

	for i := 0; i < n; i++ {
		s := b.At(i)
		assert.InDelta(t, -s.Raw, s.Cardiac, 1e-12)
		assert.InDelta(t, 2*s.Raw, s.Respiratory, 1e-12)
	}
}

func TestBufferSpan(t *testing.T) {
	b := window.New(20)
	push(b, 30, 60)

	assert.LessOrEqual(t, b.Span(), 20.0)
	assert.Greater(t, b.Span(), 19.9)

	newest, ok := b.Newest()
	require.True(t, ok)
	assert.InDelta(t, 59+29.0/30, newest, 1e-9)
	assert.InDelta(t, newest-b.Times()[0], b.Span(), 1e-12)
}

func TestBufferMonotonic(t *testing.T) {
	b := window.New(25)
	b.Push(window.Sample{Time: 1})
	b.Push(window.Sample{Time: 2})
	b.Push(window.Sample{Time: 1.5})

	times := b.Times()
	require.Len(t, times, 3)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i], times[i-1])
	}
}

func TestBufferLongGapKeepsNewest(t *testing.T) {
	b := window.New(25)
	push(b, 30, 5)
	b.Push(window.Sample{Time: 100, Raw: 7})

	require.Equal(t, 1, b.Len())
	assert.InDelta(t, 7.0, b.At(0).Raw, 1e-12)
	assert.Zero(t, b.Span())
}

func TestBufferReset(t *testing.T) {
	b := window.New(0)
	assert.InDelta(t, window.DefaultMaxSpan, b.MaxSpan(), 1e-12)

	push(b, 30, 30)
	b.Reset()

	assert.Zero(t, b.Len())
	assert.Empty(t, b.Times())
	assert.Zero(t, b.Span())
	_, ok := b.Newest()
	assert.False(t, ok)

	b.Reset()
	assert.Zero(t, b.Len())

	b.Push(window.Sample{Time: 3, Raw: 1})
	assert.Equal(t, 1, b.Len())
}
