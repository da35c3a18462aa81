package dsp_test

import (
	"testing"

	"codeberg.org/mutker/camvitals/internal/dsp"
	"github.com/stretchr/testify/assert"
)

func TestMeanStd(t *testing.T) {
	mean, std := dsp.MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, 1e-12)
	assert.InDelta(t, 2, std, 1e-12)

	mean, std = dsp.MeanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)

	_, std = dsp.MeanStd([]float64{7})
	assert.Zero(t, std)
}

func TestMedian(t *testing.T) {
	_, ok := dsp.Median(nil)
	assert.False(t, ok)

	m, ok := dsp.Median([]float64{3, 1, 2})
	assert.True(t, ok)
	assert.InDelta(t, 2, m, 1e-12)

	input := []float64{4, 1, 3, 2}
	m, _ = dsp.Median(input)
	assert.InDelta(t, 2.5, m, 1e-12)
	assert.Equal(t, []float64{4, 1, 3, 2}, input, "input is not reordered")
}

func TestClamp(t *testing.T) {
	assert.InDelta(t, 0.0, dsp.Clamp(-1, 0, 1), 1e-12)
	assert.InDelta(t, 1.0, dsp.Clamp(2, 0, 1), 1e-12)
	assert.InDelta(t, 0.5, dsp.Clamp(0.5, 0, 1), 1e-12)
}
