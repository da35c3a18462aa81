package capture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const timingWindow = 120

// TimingStats summarizes recent frame arrival.
type TimingStats struct {
	Frames     uint64
	FPSMean    float64
	FPSStdDev  float64
	JitterMean time.Duration
	JitterMax  time.Duration
}

// Timing records inter-frame intervals over a bounded window.
type Timing struct {
	last      time.Time
	frames    uint64
	intervals []float64
	next      int
}

// Observe records a frame captured at ts.
func (t *Timing) Observe(ts time.Time) {
	t.frames++
	if !t.last.IsZero() {
		if dt := ts.Sub(t.last).Seconds(); dt > 0 {
			if len(t.intervals) < timingWindow {
				t.intervals = append(t.intervals, dt)
			} else {
				t.intervals[t.next] = dt
				t.next = (t.next + 1) % timingWindow
			}
		}
	}
	t.last = ts
}

// Stats computes the frame rate and jitter over the window. Jitter is the
// deviation of each interval from the mean interval.
func (t *Timing) Stats() TimingStats {
	out := TimingStats{Frames: t.frames}
	if len(t.intervals) == 0 {
		return out
	}

	meanInterval := stat.Mean(t.intervals, nil)
	out.FPSMean = 1 / meanInterval

	fps := make([]float64, len(t.intervals))
	var jitterSum, jitterMax float64
	for i, dt := range t.intervals {
		fps[i] = 1 / dt
		j := math.Abs(dt - meanInterval)
		jitterSum += j
		jitterMax = math.Max(jitterMax, j)
	}
	if len(fps) > 1 {
		_, out.FPSStdDev = stat.PopMeanStdDev(fps, nil)
	}
	out.JitterMean = time.Duration(jitterSum / float64(len(t.intervals)) * float64(time.Second))
	out.JitterMax = time.Duration(jitterMax * float64(time.Second))

	return out
}

func (t *Timing) Reset() {
	*t = Timing{intervals: t.intervals[:0]}
}
