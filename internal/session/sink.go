package session

import (
	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/vitals"
)

// Status is a coarse lifecycle state reported to the sink.
type Status string

const (
	StatusRequesting  Status = "requesting"
	StatusCalibrating Status = "calibrating"
	StatusCapturing   Status = "capturing"
	StatusStopped     Status = "stopped"
	StatusFailed      Status = "failed"
)

// Sink receives everything the monitor reports. Calls come from the
// goroutine driving the monitor, in order: a status change is delivered
// before the snapshot that caused it.
type Sink interface {
	Status(status Status)
	Metrics(snapshot *vitals.Snapshot)
	Error(err errors.Error)
}

type nopSink struct{}

func (nopSink) Status(Status)            {}
func (nopSink) Metrics(*vitals.Snapshot) {}
func (nopSink) Error(errors.Error)       {}
