package sink

import (
	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"codeberg.org/mutker/camvitals/internal/session"
	"codeberg.org/mutker/camvitals/internal/vitals"
)

// Log writes statuses and snapshots to the structured log. Absent metrics
// are left out of the event rather than logged as zero.
type Log struct {
	log logger.Logger
}

func NewLog(log logger.Logger) *Log {
	if log == nil {
		log = logger.Default()
	}
	return &Log{log: log}
}

func (l *Log) Status(status session.Status) {
	l.log.Info().Str("status", string(status)).Msg("Session status")
}

func (l *Log) Metrics(s *vitals.Snapshot) {
	ev := l.log.Info().
		Float64("t", s.Timestamp).
		Int("samples", s.SamplesCollected).
		Float64("signal_quality", s.SignalQuality).
		Str("quality", vitals.QualityLevel(s.SignalQuality))

	if s.HeartRate != nil {
		ev.Int("heart_rate", *s.HeartRate)
	}
	if s.HRVMs != nil {
		ev.Int("hrv_ms", *s.HRVMs)
	}
	if s.StressScore != nil {
		ev.Int("stress", *s.StressScore).Str("stress_level", vitals.StressLevel(*s.StressScore))
	}
	if s.BreathingRate != nil {
		ev.Int("breathing_rate", *s.BreathingRate)
	}
	if s.BeatPhase != nil {
		ev.Float64("beat_phase", *s.BeatPhase)
	}

	ev.Msg("")
}

func (l *Log) Error(err errors.Error) {
	l.log.ErrorWithCode(err).Msg("Session error")
}
