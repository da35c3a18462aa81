// Package telemetry records the daemon's operational health (frame rate,
// jitter, skipped frames, metrics cycle cost) to sqlite. Vitals are never
// stored.
package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for telemetry storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one metrics cycle's operational view.
type Snapshot struct {
	Timestamp     time.Time
	SessionID     string
	Frames        FrameMetrics
	Buffer        BufferMetrics
	CycleDuration time.Duration
}

type FrameMetrics struct {
	Received   uint64
	Skipped    uint64
	FPSMean    float64
	FPSStdDev  float64
	JitterMean time.Duration
	JitterMax  time.Duration
}

type BufferMetrics struct {
	Samples int
	Beats   int
}
