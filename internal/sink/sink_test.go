package sink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"codeberg.org/mutker/camvitals/internal/session"
	"codeberg.org/mutker/camvitals/internal/sink"
	"codeberg.org/mutker/camvitals/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	kind    string
	payload []byte
}

type fakePublisher struct {
	messages []message
	fail     bool
	closed   bool
}

func (*fakePublisher) Name() string { return "fake" }

func (p *fakePublisher) Publish(ctx context.Context, kind string, payload []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		return fmt.Errorf("publish without deadline")
	}
	if p.fail {
		return fmt.Errorf("broker down")
	}
	p.messages = append(p.messages, message{kind: kind, payload: payload})
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func decode(t *testing.T, m message) sink.Envelope {
	t.Helper()
	var env sink.Envelope
	require.NoError(t, json.Unmarshal(m.payload, &env))
	return env
}

func TestBus(t *testing.T) {
	pub := &fakePublisher{}
	bus := sink.NewBus(pub)

	hr := 64
	bus.Status(session.StatusCapturing)
	bus.Metrics(&vitals.Snapshot{Timestamp: 3.5, HeartRate: &hr, SignalQuality: 0.7, SamplesCollected: 105})
	bus.Error(errors.New().New(errors.ErrAcquisition))

	require.Len(t, pub.messages, 3)

	status := decode(t, pub.messages[0])
	assert.Equal(t, sink.KindStatus, pub.messages[0].kind)
	assert.Equal(t, sink.KindStatus, status.Type)
	assert.Equal(t, "capturing", status.Status)
	assert.False(t, status.Time.IsZero())
	assert.Nil(t, status.Metrics)

	metrics := decode(t, pub.messages[1])
	assert.Equal(t, sink.KindMetrics, metrics.Type)
	require.NotNil(t, metrics.Metrics)
	require.NotNil(t, metrics.Metrics.HeartRate)
	assert.Equal(t, 64, *metrics.Metrics.HeartRate)
	assert.Nil(t, metrics.Metrics.HRVMs)
	assert.Equal(t, 105, metrics.Metrics.SamplesCollected)

	failure := decode(t, pub.messages[2])
	assert.Equal(t, sink.KindError, failure.Type)
	require.NotNil(t, failure.Error)
	assert.Equal(t, "acquisition_failed", failure.Error.Code)
	assert.NotEmpty(t, failure.Error.Message)

	require.NoError(t, bus.Close())
	assert.True(t, pub.closed)
}

func TestBusSwallowsPublishErrors(t *testing.T) {
	pub := &fakePublisher{fail: true}
	bus := sink.NewBus(pub)

	assert.NotPanics(t, func() {
		bus.Status(session.StatusCalibrating)
		bus.Metrics(&vitals.Snapshot{})
	})
	assert.Empty(t, pub.messages)
}

type countingSink struct {
	name  string
	calls *[]string
}

func (s countingSink) Status(session.Status)    { *s.calls = append(*s.calls, s.name+":status") }
func (s countingSink) Metrics(*vitals.Snapshot) { *s.calls = append(*s.calls, s.name+":metrics") }
func (s countingSink) Error(errors.Error)       { *s.calls = append(*s.calls, s.name+":error") }

func TestFanout(t *testing.T) {
	var calls []string
	out := sink.Fanout{countingSink{"a", &calls}, countingSink{"b", &calls}}

	out.Status(session.StatusRequesting)
	out.Metrics(&vitals.Snapshot{})
	out.Error(errors.New().New(errors.ErrInternal))

	assert.Equal(t, []string{
		"a:status", "b:status",
		"a:metrics", "b:metrics",
		"a:error", "b:error",
	}, calls)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "debug", true)
	t.Cleanup(func() { logger.Init("info", true) })

	l := sink.NewLog(nil)

	l.Status(session.StatusCalibrating)
	assert.Contains(t, buf.String(), "calibrating")

	buf.Reset()
	hr, hrv, stress := 70, 42, 69
	l.Metrics(&vitals.Snapshot{HeartRate: &hr, HRVMs: &hrv, StressScore: &stress, SignalQuality: 0.5, SamplesCollected: 300})
	out := buf.String()
	assert.Contains(t, out, "heart_rate")
	assert.Contains(t, out, "70")
	assert.Contains(t, out, "hrv_ms")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "fair")
	assert.NotContains(t, out, "breathing_rate")
	assert.NotContains(t, out, "beat_phase")

	buf.Reset()
	l.Error(errors.New().New(errors.ErrSourceExhausted))
	assert.Contains(t, buf.String(), "Session error")
}

func TestEncodeOmitsEmptyParts(t *testing.T) {
	payload, err := sink.Encode(sink.Envelope{Type: sink.KindStatus, Status: "stopped"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, "status", fields["type"])
	assert.Equal(t, "stopped", fields["status"])
	assert.NotContains(t, fields, "metrics")
	assert.NotContains(t, fields, "error")
}

func TestConnectUnreachable(t *testing.T) {
	_, err := sink.ConnectNATS("nats://127.0.0.1:1", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrSinkInit))

	_, err = sink.ConnectMQTT("tcp://127.0.0.1:1", "camvitals-test", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrSinkInit))
}
