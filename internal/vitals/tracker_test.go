package vitals_test

import (
	"testing"

	"codeberg.org/mutker/camvitals/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerDedupe(t *testing.T) {
	tr := vitals.NewTracker(vitals.DefaultBeatHorizon)

	tr.Merge([]float64{1, 1.2, 2}, 2)
	assert.Equal(t, []float64{1, 2}, tr.Peaks())

	// A re-detection of the last beat and an older one are ignored.
	tr.Merge([]float64{1, 1.9, 2.2, 3}, 3)
	assert.Equal(t, []float64{1, 2, 3}, tr.Peaks())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.InDelta(t, 3.0, last, 1e-12)
}

func TestTrackerHorizon(t *testing.T) {
	tr := vitals.NewTracker(0)

	tr.Merge([]float64{1, 2, 3, 10, 20}, 20)
	assert.Equal(t, []float64{2, 3, 10, 20}, tr.Peaks())

	tr.Merge(nil, 40)
	assert.Zero(t, tr.Len())
	_, ok := tr.Last()
	assert.False(t, ok)
}

func TestTrackerPeaksIsCopy(t *testing.T) {
	tr := vitals.NewTracker(18)
	tr.Merge([]float64{1, 2}, 2)

	peaks := tr.Peaks()
	peaks[0] = 99
	assert.Equal(t, []float64{1, 2}, tr.Peaks())
}

func TestTrackerReset(t *testing.T) {
	tr := vitals.NewTracker(18)
	tr.Merge([]float64{1, 2, 3}, 3)

	tr.Reset()
	assert.Zero(t, tr.Len())
	assert.Empty(t, tr.IBIs())

	tr.Reset()
	assert.Zero(t, tr.Len())
}

func TestIBIs(t *testing.T) {
	ibis := vitals.IBIs([]float64{0, 0.2, 1.0, 3.0, 3.8})
	require.Len(t, ibis, 2)
	assert.InDelta(t, 0.8, ibis[0], 1e-9)
	assert.InDelta(t, 0.8, ibis[1], 1e-9)

	assert.Empty(t, vitals.IBIs([]float64{5}))
}
