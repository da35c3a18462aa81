package session

import (
	"context"
	"time"

	"codeberg.org/mutker/camvitals/internal/capture"
	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"codeberg.org/mutker/camvitals/internal/vitals"
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithHealthObserver registers a callback invoked after every metrics
// cycle with the session's operational counters.
func WithHealthObserver(fn func(Health)) Option {
	return func(m *Monitor) {
		m.onHealth = fn
	}
}

// WithClock overrides the wall clock used to time metrics cycles.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// Monitor is the session control surface. It pulls one frame per Step and
// pushes statuses, snapshots and errors to its sink. A Monitor is driven by
// a single goroutine and is not safe for concurrent use.
type Monitor struct {
	source   capture.Source
	sink     Sink
	cfg      Config
	onHealth func(Health)
	now      func() time.Time

	session *Session
}

func NewMonitor(source capture.Source, sink Sink, cfg Config, opts ...Option) *Monitor {
	if sink == nil {
		sink = nopSink{}
	}
	m := &Monitor{
		source: source,
		sink:   sink,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Running() bool {
	return m.session != nil
}

// Session returns the active session, or nil.
func (m *Monitor) Session() *Session {
	return m.session
}

// Start opens the source and begins a fresh session. A running session is
// stopped first. If the source cannot be opened the error is reported to
// the sink and returned, and the monitor stays idle.
func (m *Monitor) Start(ctx context.Context, selector string) error {
	m.Stop()

	m.sink.Status(StatusRequesting)

	if err := m.source.Open(ctx, selector); err != nil {
		appErr := acquisitionError(err)
		logger.Debug().Err(err).Str("selector", selector).Msg("Failed to open frame source")
		m.sink.Error(appErr)
		m.sink.Status(StatusFailed)
		return appErr
	}

	m.session = New(m.cfg)
	logger.Debug().Str("session_id", m.session.ID).Str("selector", selector).Msg("Session started")
	m.sink.Status(StatusCalibrating)

	return nil
}

func acquisitionError(err error) errors.Error {
	var appErr errors.Error
	if errors.As(err, &appErr) && appErr.Code() == errors.ErrAcquisition {
		return appErr
	}
	return errors.New().Wrap(errors.ErrAcquisition, err)
}

// Stop closes the source and discards the session. It is a no-op when no
// session is active.
func (m *Monitor) Stop() {
	if m.session == nil {
		return
	}

	if err := m.source.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close frame source")
	}

	id := m.session.ID
	m.session.Reset()
	m.session = nil

	logger.Debug().Str("session_id", id).Msg("Session stopped")
	m.sink.Status(StatusStopped)
}

// Reset clears the active session's filters, buffer and beats without
// closing the source. It is a no-op when no session is active.
func (m *Monitor) Reset() {
	if m.session == nil {
		return
	}
	m.session.Reset()
	m.sink.Status(StatusCalibrating)
}

// Step processes one frame: read, extract, filter, buffer, and run a
// metrics cycle when one is due. The returned error carries
// errors.ErrSourceExhausted when a finite source ends.
func (m *Monitor) Step(ctx context.Context) error {
	if m.session == nil {
		return errors.New().New(errors.ErrNotRunning)
	}

	frame, err := m.source.Next(ctx)
	if err != nil {
		return err
	}

	t, ok := m.session.Process(frame)
	if !ok || !m.session.Due(t) {
		return nil
	}

	started := m.now()
	snap := m.session.Metrics()
	m.publish(snap)

	if m.onHealth != nil {
		health := m.session.Health()
		health.Timestamp = started
		health.CycleDuration = m.now().Sub(started)
		m.onHealth(health)
	}

	return nil
}

func (m *Monitor) publish(snap *vitals.Snapshot) {
	s := m.session
	if capturing := snap.Capturing(s.tracker.Len()); capturing != s.capturing {
		s.capturing = capturing
		if capturing {
			m.sink.Status(StatusCapturing)
		} else {
			m.sink.Status(StatusCalibrating)
		}
	}
	m.sink.Metrics(snap)
}

// Run steps until ctx is cancelled or the source is exhausted. Other
// errors are reported to the sink and returned.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := m.Step(ctx)
		switch {
		case err == nil:
			continue
		case ctx.Err() != nil:
			return nil
		case errors.HasCode(err, errors.ErrSourceExhausted):
			logger.Info().Msg("Frame source exhausted")
			return nil
		}

		appErr := errors.Coded(err, errors.ErrMainLoop)
		m.sink.Error(appErr)
		return appErr
	}
}
