package sink

import (
	"context"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"github.com/nats-io/nats.go"
)

const DefaultNATSSubject = "camvitals"

// NATS publishes envelopes on <subject>.<kind>.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS dials url with reconnects enabled.
func ConnectNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("camvitals"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrSinkInit, err)
	}

	if subject == "" {
		subject = DefaultNATSSubject
	}
	return &NATS{conn: conn, subject: subject}, nil
}

func (n *NATS) Name() string {
	return "nats"
}

// Subject returns the subject an envelope of kind is published on.
func (n *NATS) Subject(kind string) string {
	return n.subject + "." + kind
}

func (n *NATS) Publish(_ context.Context, kind string, payload []byte) error {
	if err := n.conn.Publish(n.Subject(kind), payload); err != nil {
		return errors.New().Wrap(errors.ErrPublish, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		return errors.New().Wrap(errors.ErrSinkClose, err)
	}
	return nil
}
