// Package session runs the rPPG pipeline for one acquisition: extraction,
// filtering, buffering and the periodic metrics cycle, plus the Monitor
// that starts, stops and resets it.
package session

import (
	"time"

	"codeberg.org/mutker/camvitals/internal/capture"
	"codeberg.org/mutker/camvitals/internal/dsp"
	"codeberg.org/mutker/camvitals/internal/roi"
	"codeberg.org/mutker/camvitals/internal/vitals"
	"codeberg.org/mutker/camvitals/internal/window"
	"github.com/google/uuid"
)

const (
	DefaultMetricsInterval = 0.3
	MinMetricsInterval     = 0.25
	MaxMetricsInterval     = 0.3
)

// Config tunes a session. Zero values take the package defaults.
type Config struct {
	WindowSeconds     float64
	BeatHorizon       float64
	MetricsInterval   float64
	RespiratoryCutoff float64
	DisplayWidth      float64
	DisplayHeight     float64
}

func DefaultConfig() Config {
	return Config{
		WindowSeconds:     window.DefaultMaxSpan,
		BeatHorizon:       vitals.DefaultBeatHorizon,
		MetricsInterval:   DefaultMetricsInterval,
		RespiratoryCutoff: dsp.DefaultRespiratoryHz,
	}
}

// Session owns the filter pair, the sample buffer and the beat list of one
// acquisition. It is not safe for concurrent use.
type Session struct {
	ID  string
	cfg Config

	cardiac     dsp.Bandpass
	respiratory *dsp.Lowpass
	buffer      *window.Buffer
	tracker     *vitals.Tracker
	extractor   *roi.Extractor
	timing      capture.Timing

	origin          time.Time
	lastTime        float64
	hasSample       bool
	lastMetricsTime float64
	hasMetrics      bool
	capturing       bool
	skipped         uint64
}

func New(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = def.WindowSeconds
	}
	if cfg.BeatHorizon <= 0 {
		cfg.BeatHorizon = def.BeatHorizon
	}
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = def.MetricsInterval
	}
	if cfg.RespiratoryCutoff <= 0 {
		cfg.RespiratoryCutoff = def.RespiratoryCutoff
	}

	return &Session{
		ID:          uuid.New().String(),
		cfg:         cfg,
		respiratory: dsp.NewLowpass(cfg.RespiratoryCutoff),
		buffer:      window.New(cfg.WindowSeconds),
		tracker:     vitals.NewTracker(cfg.BeatHorizon),
		extractor:   roi.NewExtractor(cfg.DisplayWidth, cfg.DisplayHeight),
	}
}

// Process extracts, filters and buffers one frame. It returns the frame
// time in session seconds and false when the frame was skipped.
func (s *Session) Process(f *capture.Frame) (float64, bool) {
	s.timing.Observe(f.Timestamp)

	green, ok := s.extractor.Sample(f.Pix, f.Stride, f.Width, f.Height)
	if !ok {
		s.skipped++
		return 0, false
	}

	if s.origin.IsZero() {
		s.origin = f.Timestamp
	}
	t := f.Timestamp.Sub(s.origin).Seconds()
	s.Push(t, green)

	return t, true
}

// Push runs one green sample at t seconds through both filters and into
// the buffer. The first sample uses the default interval. A time earlier
// than the previous sample is clamped to it, matching the buffer.
func (s *Session) Push(t, green float64) {
	dt := dsp.DefaultDT
	if s.hasSample {
		t = max(t, s.lastTime)
		dt = dsp.SanitizeDT(t - s.lastTime)
	}
	s.lastTime = t
	s.hasSample = true

	s.buffer.Push(window.Sample{
		Time:        t,
		Raw:         green,
		Cardiac:     s.cardiac.Apply(green, dt),
		Respiratory: s.respiratory.Apply(green, dt),
	})
}

// Due reports whether a metrics cycle should run at session time t.
func (s *Session) Due(t float64) bool {
	return !s.hasMetrics || t-s.lastMetricsTime > s.cfg.MetricsInterval
}

// Metrics runs one metrics cycle: beat tracking over the buffered cardiac
// series, then the metrics engine.
func (s *Session) Metrics() *vitals.Snapshot {
	now, _ := s.buffer.Newest()
	s.tracker.Update(s.buffer.Cardiac(), s.buffer.Times(), now)

	snap := vitals.Compute(s.buffer, s.tracker)
	snap.SessionID = s.ID

	s.lastMetricsTime = now
	s.hasMetrics = true

	return snap
}

// Reset clears the filters, buffer, beat list and cadence together.
// Calling it repeatedly is the same as calling it once.
func (s *Session) Reset() {
	s.cardiac.Reset()
	s.respiratory.Reset()
	s.buffer.Reset()
	s.tracker.Reset()
	s.timing.Reset()

	s.origin = time.Time{}
	s.lastTime = 0
	s.hasSample = false
	s.lastMetricsTime = 0
	s.hasMetrics = false
	s.capturing = false
	s.skipped = 0
}

func (s *Session) Buffer() *window.Buffer   { return s.buffer }
func (s *Session) Tracker() *vitals.Tracker { return s.tracker }

// Health reports operational counters for the session.
func (s *Session) Health() Health {
	return Health{
		SessionID: s.ID,
		Buffered:  s.buffer.Len(),
		Beats:     s.tracker.Len(),
		Skipped:   s.skipped,
		Timing:    s.timing.Stats(),
	}
}

// Health is an operational view of a running session.
type Health struct {
	SessionID     string
	Timestamp     time.Time
	Buffered      int
	Beats         int
	Skipped       uint64
	Timing        capture.TimingStats
	CycleDuration time.Duration
}
