// Package sink delivers monitor output: structured logs and, optionally,
// JSON envelopes published to NATS, MQTT, Redis and WebSocket clients.
package sink

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"codeberg.org/mutker/camvitals/internal/session"
	"codeberg.org/mutker/camvitals/internal/vitals"
)

const (
	KindMetrics = "metrics"
	KindStatus  = "status"
	KindError   = "error"

	publishTimeout = 200 * time.Millisecond
)

// Publisher moves an encoded envelope to an external system.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, kind string, payload []byte) error
	Close() error
}

// Envelope is the wire form of everything a Bus publishes.
type Envelope struct {
	Type    string           `json:"type"`
	Time    time.Time        `json:"time"`
	Status  string           `json:"status,omitempty"`
	Metrics *vitals.Snapshot `json:"metrics,omitempty"`
	Error   *ErrorInfo       `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Bus adapts a Publisher to session.Sink. Publish failures are logged and
// never reach the pipeline.
type Bus struct {
	pub Publisher
	now func() time.Time
}

func NewBus(pub Publisher) *Bus {
	return &Bus{pub: pub, now: time.Now}
}

func (b *Bus) Status(status session.Status) {
	b.send(Envelope{Type: KindStatus, Status: string(status)})
}

func (b *Bus) Metrics(snapshot *vitals.Snapshot) {
	b.send(Envelope{Type: KindMetrics, Metrics: snapshot})
}

func (b *Bus) Error(err errors.Error) {
	b.send(Envelope{Type: KindError, Error: &ErrorInfo{
		Code:    string(err.Code()),
		Message: err.Error(),
	}})
}

func (b *Bus) send(env Envelope) {
	env.Time = b.now().UTC()

	payload, err := Encode(env)
	if err != nil {
		logger.Warn().Err(err).Str("sink", b.pub.Name()).Msg("Failed to encode envelope")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.pub.Publish(ctx, env.Type, payload); err != nil {
		logger.Warn().Err(err).Str("sink", b.pub.Name()).Str("type", env.Type).Msg("Failed to publish")
	}
}

func (b *Bus) Close() error {
	return b.pub.Close()
}

// Encode marshals an envelope.
func Encode(env Envelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrPublish, err)
	}
	return payload, nil
}

// Fanout forwards every call to each sink in order.
type Fanout []session.Sink

func (f Fanout) Status(status session.Status) {
	for _, s := range f {
		s.Status(status)
	}
}

func (f Fanout) Metrics(snapshot *vitals.Snapshot) {
	for _, s := range f {
		s.Metrics(snapshot)
	}
}

func (f Fanout) Error(err errors.Error) {
	for _, s := range f {
		s.Error(err)
	}
}
