package dsp_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/camvitals/internal/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, fs, seconds float64) (values, times []float64) {
	n := int(fs * seconds)
	values = make([]float64, n)
	times = make([]float64, n)
	for i := range values {
		times[i] = float64(i) / fs
		values[i] = math.Sin(2 * math.Pi * freq * times[i])
	}
	return values, times
}

func TestDetectPeaksShortSeries(t *testing.T) {
	assert.Empty(t, dsp.CardiacPeaks([]float64{0, 1, 5, 1, 0}[:4], []float64{0, 1, 2, 3}))
	assert.Empty(t, dsp.CardiacPeaks(nil, nil))
}

func TestDetectPeaksSine(t *testing.T) {
	// At 40 Hz each crest lands on a sample.
	values, times := sine(1, 40, 10)

	peaks := dsp.CardiacPeaks(values, times)
	require.Len(t, peaks, 10)
	for i, p := range peaks {
		assert.InDelta(t, 0.25+float64(i), p, 1e-9)
	}
}

func TestDetectPeaksSpacing(t *testing.T) {
	values, times := sine(4, 30, 10)

	peaks := dsp.CardiacPeaks(values, times)
	require.NotEmpty(t, peaks)
	for i := 1; i < len(peaks); i++ {
		assert.GreaterOrEqual(t, peaks[i]-peaks[i-1], dsp.CardiacMinDistance)
	}

	resp := dsp.RespiratoryPeaks(values, times)
	for i := 1; i < len(resp); i++ {
		assert.GreaterOrEqual(t, resp[i]-resp[i-1], dsp.RespiratoryMinDistance)
	}
}

func TestDetectPeaksFlat(t *testing.T) {
	values := make([]float64, 60)
	times := make([]float64, 60)
	for i := range times {
		values[i] = 3
		times[i] = float64(i) / 30
	}

	assert.Empty(t, dsp.CardiacPeaks(values, times))
}

func TestDetectPeaksPlateauRejected(t *testing.T) {
	values := []float64{0, 0, 0, 5, 5, 0, 0, 0}
	times := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	assert.Empty(t, dsp.DetectPeaks(values, times, 0, 0), "equal neighbours are not peaks")
}

func TestDetectPeaksSecondNeighbourTie(t *testing.T) {
	values := []float64{0, 5, 1, 5, 1, 0, 0, 0}
	times := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	peaks := dsp.DetectPeaks(values, times, 0, 0)
	assert.Equal(t, []float64{3}, peaks)
}

func TestDetectPeaksDeterministic(t *testing.T) {
	values, times := sine(1.3, 30, 20)

	a := dsp.CardiacPeaks(values, times)
	b := dsp.CardiacPeaks(values, times)
	assert.Equal(t, a, b)
}

func TestDetectPeaksMismatchedLengths(t *testing.T) {
	values, times := sine(1, 40, 10)

	peaks := dsp.CardiacPeaks(values, times[:200])
	assert.Len(t, peaks, 5)
}
