package dsp

const (
	DefaultThresholdScale = 0.5

	CardiacMinDistance        = 0.33
	CardiacThresholdScale     = 0.5
	RespiratoryMinDistance    = 1.6
	RespiratoryThresholdScale = 0.2

	minPeakSeries = 5
)

// DetectPeaks returns the times of local maxima in values that rise above
// mean + thresholdScale*std. A candidate must beat its immediate neighbours
// strictly and be no lower than its second neighbours. Candidates closer
// than minDistance seconds to the previously accepted peak are dropped.
//
// values and times are parallel; only the shorter length is scanned.
func DetectPeaks(values, times []float64, minDistance, thresholdScale float64) []float64 {
	n := min(len(values), len(times))
	if n < minPeakSeries {
		return nil
	}
	values = values[:n]

	mean, std := MeanStd(values)
	if std == 0 {
		std = 1
	}
	threshold := mean + thresholdScale*std

	var peaks []float64
	for i := 2; i < n-2; i++ {
		v := values[i]
		if v <= threshold {
			continue
		}
		if v <= values[i-1] || v <= values[i+1] || v < values[i-2] || v < values[i+2] {
			continue
		}

		t := times[i]
		if len(peaks) > 0 && t-peaks[len(peaks)-1] < minDistance {
			continue
		}
		peaks = append(peaks, t)
	}

	return peaks
}

// CardiacPeaks runs DetectPeaks with the heartbeat presets.
func CardiacPeaks(values, times []float64) []float64 {
	return DetectPeaks(values, times, CardiacMinDistance, CardiacThresholdScale)
}

// RespiratoryPeaks uses a wider spacing and a gentler threshold, since
// breathing modulation has lower prominence than the pulse.
func RespiratoryPeaks(values, times []float64) []float64 {
	return DetectPeaks(values, times, RespiratoryMinDistance, RespiratoryThresholdScale)
}
