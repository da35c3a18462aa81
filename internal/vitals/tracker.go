package vitals

import "codeberg.org/mutker/camvitals/internal/dsp"

const (
	// DedupeDistance keeps the same beat, seen again by an overlapping
	// detection pass, from being counted twice.
	DedupeDistance = 0.25

	DefaultBeatHorizon = 18.0
	MinBeatHorizon     = 15.0
	MaxBeatHorizon     = 18.0

	MinIBI = 0.33
	MaxIBI = 1.6
)

// Tracker keeps the ordered list of detected beat times across metrics
// cycles.
type Tracker struct {
	horizon float64
	peaks   []float64
}

func NewTracker(horizon float64) *Tracker {
	if horizon <= 0 {
		horizon = DefaultBeatHorizon
	}
	return &Tracker{horizon: horizon}
}

// Update detects peaks in the cardiac series, merges the new ones into the
// beat list and drops beats older than the horizon relative to now.
func (t *Tracker) Update(cardiac, times []float64, now float64) {
	t.Merge(dsp.CardiacPeaks(cardiac, times), now)
}

// Merge adds peaks that fall more than DedupeDistance past the current last
// beat, then applies the retention horizon.
func (t *Tracker) Merge(peaks []float64, now float64) {
	for _, p := range peaks {
		if n := len(t.peaks); n == 0 || p-t.peaks[n-1] > DedupeDistance {
			t.peaks = append(t.peaks, p)
		}
	}

	keep := t.peaks[:0]
	for _, p := range t.peaks {
		if now-p <= t.horizon {
			keep = append(keep, p)
		}
	}
	t.peaks = keep
}

// Peaks returns a copy of the retained beat times.
func (t *Tracker) Peaks() []float64 {
	out := make([]float64, len(t.peaks))
	copy(out, t.peaks)
	return out
}

func (t *Tracker) Len() int {
	return len(t.peaks)
}

// Last returns the most recent retained beat.
func (t *Tracker) Last() (float64, bool) {
	if len(t.peaks) == 0 {
		return 0, false
	}
	return t.peaks[len(t.peaks)-1], true
}

// IBIs returns the inter-beat intervals that fall in the physiological
// band. Intervals outside it are detection artifacts and are dropped.
func (t *Tracker) IBIs() []float64 {
	return IBIs(t.peaks)
}

func (t *Tracker) Reset() {
	t.peaks = t.peaks[:0]
}

// IBIs computes accepted intervals between consecutive beat times.
func IBIs(peaks []float64) []float64 {
	var ibis []float64
	for i := 1; i < len(peaks); i++ {
		interval := peaks[i] - peaks[i-1]
		if interval >= MinIBI && interval <= MaxIBI {
			ibis = append(ibis, interval)
		}
	}
	return ibis
}
