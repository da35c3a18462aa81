// Package vitals turns the buffered rPPG signal into beat times and the
// reported metrics: heart rate, HRV, stress score, breathing rate, beat
// phase and signal quality.
package vitals

import "codeberg.org/mutker/camvitals/internal/window"

// Snapshot is the result of one metrics cycle. Nil fields mean there was
// not enough data; they are omitted when encoded. A Snapshot is never
// modified after Compute returns it.
type Snapshot struct {
	SessionID        string   `json:"sessionId,omitempty"`
	Timestamp        float64  `json:"timestamp"`
	HeartRate        *int     `json:"heartRate,omitempty"`
	StressScore      *int     `json:"stressScore,omitempty"`
	HRVMs            *int     `json:"hrvMs,omitempty"`
	BreathingRate    *int     `json:"breathingRate,omitempty"`
	BeatPhase        *float64 `json:"beatPhase,omitempty"`
	SignalQuality    float64  `json:"signalQuality"`
	SamplesCollected int      `json:"samplesCollected"`
}

// Capturing reports whether the snapshot reflects a settled pulse reading.
func (s *Snapshot) Capturing(beats int) bool {
	return s.HeartRate != nil && beats >= capturingPeakCount
}

// Compute derives a snapshot from the buffer and the tracker's retained
// beats. The tracker must already be updated for this cycle.
func Compute(buf *window.Buffer, tracker *Tracker) *Snapshot {
	now, _ := buf.Newest()
	snap := &Snapshot{
		Timestamp:        now,
		SignalQuality:    SignalQuality(buf.Cardiac()),
		SamplesCollected: buf.Len(),
	}

	ibis := tracker.IBIs()

	hr, hasHR := HeartRate(ibis)
	if hasHR {
		snap.HeartRate = &hr
	}

	if rmssd, ok := RMSSD(ibis); ok {
		hrv := roundInt(rmssd)
		stress := StressScore(rmssd)
		snap.HRVMs = &hrv
		snap.StressScore = &stress
	}

	if br, ok := BreathingRate(buf.Respiratory(), buf.Times()); ok {
		rate := roundInt(br)
		snap.BreathingRate = &rate
	}

	if last, ok := tracker.Last(); ok && hasHR {
		phase := BeatPhase(now, last, hr)
		snap.BeatPhase = &phase
	}

	return snap
}
