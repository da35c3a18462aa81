package vitals

import (
	"math"

	"codeberg.org/mutker/camvitals/internal/dsp"
)

const (
	minRMSSDIntervals = 3

	stressFloorMs   = 15.0
	stressCeilingMs = 100.0

	MinQualitySamples  = 30
	qualityWindow      = 120
	qualityNormalizer  = 20.0
	minBreathSamples   = 30
	minBreathInterval  = 1.0
	maxBreathInterval  = 10.0
	capturingPeakCount = 4
)

// HeartRate is round(60 / median IBI) in beats per minute.
func HeartRate(ibis []float64) (int, bool) {
	median, ok := dsp.Median(ibis)
	if !ok || median <= 0 {
		return 0, false
	}
	return int(math.Round(60 / median)), true
}

// RMSSD returns the root mean square of successive IBI differences in
// milliseconds. Fewer than three intervals give a single difference, which
// is too unstable to report.
func RMSSD(ibis []float64) (float64, bool) {
	if len(ibis) < minRMSSDIntervals {
		return 0, false
	}

	var sum float64
	for i := 1; i < len(ibis); i++ {
		d := ibis[i] - ibis[i-1]
		sum += d * d
	}
	return math.Sqrt(sum/float64(len(ibis)-1)) * 1000, true
}

// StressScore maps RMSSD onto 0-100, inversely: RMSSD at or below 15 ms
// scores 100, at or above 100 ms scores 0, linear in between. This is a
// heuristic proxy, not a validated clinical index.
func StressScore(rmssdMs float64) int {
	clamped := dsp.Clamp(rmssdMs, stressFloorMs, stressCeilingMs)
	return int(math.Round(100 - (clamped-stressFloorMs)/(stressCeilingMs-stressFloorMs)*100))
}

// BreathingRate estimates breaths per minute from the respiratory series.
func BreathingRate(respiratory, times []float64) (float64, bool) {
	if len(respiratory) < minBreathSamples {
		return 0, false
	}

	peaks := dsp.RespiratoryPeaks(respiratory, times)
	if len(peaks) < 2 {
		return 0, false
	}

	var intervals []float64
	for i := 1; i < len(peaks); i++ {
		interval := peaks[i] - peaks[i-1]
		if interval > minBreathInterval && interval < maxBreathInterval {
			intervals = append(intervals, interval)
		}
	}

	median, ok := dsp.Median(intervals)
	if !ok || median <= 0 {
		return 0, false
	}
	return 60 / median, true
}

// BeatPhase is the fraction of the current beat period elapsed since the
// last beat. It is not clamped: values above 1 mean a beat is overdue.
func BeatPhase(now, lastPeak float64, heartRate int) float64 {
	return (now - lastPeak) * (float64(heartRate) / 60)
}

// SignalQuality scores pulsatile energy in the most recent cardiac samples
// on [0, 1], rounded to two decimals. It is 0 until enough samples exist.
func SignalQuality(cardiac []float64) float64 {
	if len(cardiac) < MinQualitySamples {
		return 0
	}

	recent := cardiac[max(0, len(cardiac)-qualityWindow):]
	_, std := dsp.MeanStd(recent)
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}

	normalized := dsp.Clamp(std/qualityNormalizer, 0, 1)
	return math.Round(normalized*100) / 100
}

// StressLevel buckets a stress score the way the dashboard badges it.
func StressLevel(score int) string {
	switch {
	case score >= 66:
		return "high"
	case score >= 33:
		return "medium"
	default:
		return "low"
	}
}

// QualityLevel buckets a signal quality value.
func QualityLevel(quality float64) string {
	switch {
	case quality > 0.6:
		return "good"
	case quality > 0.3:
		return "fair"
	default:
		return "poor"
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
