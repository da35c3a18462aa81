package session_test

import (
	"context"
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/camvitals/internal/capture"
	"codeberg.org/mutker/camvitals/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	s := session.New(session.Config{})

	assert.NotEmpty(t, s.ID)
	assert.InDelta(t, 25.0, s.Buffer().MaxSpan(), 1e-12)
	assert.Zero(t, s.Buffer().Len())
	assert.Zero(t, s.Tracker().Len())
	assert.NotEqual(t, s.ID, session.New(session.Config{}).ID)
}

func TestDueCadence(t *testing.T) {
	s := session.New(session.DefaultConfig())

	s.Push(0, 128)
	require.True(t, s.Due(0), "first cycle is always due")

	s.Metrics()
	assert.False(t, s.Due(0.2))
	assert.False(t, s.Due(0.3))
	assert.True(t, s.Due(0.31))
}

func TestProcessSkipsEmptyFrame(t *testing.T) {
	s := session.New(session.DefaultConfig())

	_, ok := s.Process(&capture.Frame{Timestamp: time.Now()})
	assert.False(t, ok)
	assert.Zero(t, s.Buffer().Len())
	assert.Equal(t, uint64(1), s.Health().Skipped)
}

func TestProcessTimesFromFirstFrame(t *testing.T) {
	s := session.New(session.DefaultConfig())
	src := capture.NewSynthetic(capture.DefaultSyntheticConfig())
	require.NoError(t, src.Open(context.Background(), ""))

	var last float64
	for i := 0; i < 31; i++ {
		f, err := src.Next(context.Background())
		require.NoError(t, err)
		ts, ok := s.Process(f)
		require.True(t, ok)
		last = ts
	}

	assert.InDelta(t, 1.0, last, 1e-6)
	assert.Equal(t, 31, s.Buffer().Len())
	assert.InDelta(t, 0, s.Buffer().Times()[0], 1e-12)
}

func TestResetIdempotent(t *testing.T) {
	s := session.New(session.DefaultConfig())
	id := s.ID

	for i := 0; i < 90; i++ {
		s.Push(float64(i)/30, 128+float64(i%7))
	}
	s.Metrics()

	s.Reset()
	first := s.Health()
	s.Reset()
	second := s.Health()

	assert.Equal(t, first, second)
	assert.Zero(t, s.Buffer().Len())
	assert.Zero(t, s.Tracker().Len())
	assert.True(t, s.Due(0))
	assert.Equal(t, id, s.ID, "reset keeps the session")
}

func TestResetMatchesFreshSession(t *testing.T) {
	feed := func(s *session.Session) []float64 {
		for i := 0; i < 60; i++ {
			s.Push(float64(i)/30, 120+10*float64(i%15)/15)
		}
		return append([]float64(nil), s.Buffer().Cardiac()...)
	}

	fresh := session.New(session.DefaultConfig())
	want := feed(fresh)

	reused := session.New(session.DefaultConfig())
	feed(reused)
	reused.Metrics()
	reused.Reset()

	assert.Equal(t, want, feed(reused), "filters restart from zero state")
}

func TestPushIrregularIntervals(t *testing.T) {
	s := session.New(session.DefaultConfig())

	for _, ts := range []float64{0, 0.03, 0.03, 0.02, 0.1, 0.5} {
		s.Push(ts, 128)
	}

	times := s.Buffer().Times()
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i], times[i-1])
	}
	for _, v := range s.Buffer().Cardiac() {
		assert.False(t, math.IsNaN(v))
	}
}

func TestPushClockRegression(t *testing.T) {
	feed := func(times []float64) *session.Session {
		s := session.New(session.DefaultConfig())
		for i, ts := range times {
			s.Push(ts, 128+float64(i))
		}
		return s
	}

	regressed := feed([]float64{0, 1.0, 0.5, 1.0 + 1.0/30})
	steady := feed([]float64{0, 1.0, 1.0, 1.0 + 1.0/30})

	assert.Equal(t, steady.Buffer().Times(), regressed.Buffer().Times())
	assert.Equal(t, steady.Buffer().Cardiac(), regressed.Buffer().Cardiac(),
		"interval after a regression is measured from the clamped time")
	assert.Equal(t, steady.Buffer().Respiratory(), regressed.Buffer().Respiratory())
}
