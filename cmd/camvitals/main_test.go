package main

import (
	"testing"
	"time"

	"codeberg.org/mutker/camvitals/internal/capture"
	"codeberg.org/mutker/camvitals/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestHealthSnapshot(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h := session.Health{
		SessionID: "abc",
		Timestamp: ts,
		Buffered:  700,
		Beats:     20,
		Skipped:   3,
		Timing: capture.TimingStats{
			Frames:     900,
			FPSMean:    29.9,
			FPSStdDev:  0.4,
			JitterMean: 2 * time.Millisecond,
			JitterMax:  9 * time.Millisecond,
		},
		CycleDuration: 150 * time.Microsecond,
	}

	s := healthSnapshot(h)

	assert.Equal(t, ts, s.Timestamp)
	assert.Equal(t, "abc", s.SessionID)
	assert.Equal(t, uint64(900), s.Frames.Received)
	assert.Equal(t, uint64(3), s.Frames.Skipped)
	assert.InDelta(t, 29.9, s.Frames.FPSMean, 1e-9)
	assert.Equal(t, 9*time.Millisecond, s.Frames.JitterMax)
	assert.Equal(t, 700, s.Buffer.Samples)
	assert.Equal(t, 20, s.Buffer.Beats)
	assert.Equal(t, 150*time.Microsecond, s.CycleDuration)
}
