package sink

import (
	"context"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultMQTTTopic = "camvitals"

	mqttConnectTimeout = 5 * time.Second
	mqttQoS            = 0
)

// MQTT publishes envelopes on <topic>/<kind>. Status messages are retained
// so late subscribers see the current lifecycle state.
type MQTT struct {
	client mqtt.Client
	topic  string
}

func ConnectMQTT(broker, clientID, topic string) (*MQTT, error) {
	errFactory := errors.New()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(mqttConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, errFactory.WithMessage(errors.ErrSinkInit, "timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return nil, errFactory.Wrap(errors.ErrSinkInit, err)
	}

	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTT{client: client, topic: topic}, nil
}

func (m *MQTT) Name() string {
	return "mqtt"
}

func (m *MQTT) Topic(kind string) string {
	return m.topic + "/" + kind
}

func (m *MQTT) Publish(ctx context.Context, kind string, payload []byte) error {
	token := m.client.Publish(m.Topic(kind), mqttQoS, kind == KindStatus, payload)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return errors.New().Wrap(errors.ErrPublish, err)
		}
		return nil
	case <-ctx.Done():
		return errors.New().Wrap(errors.ErrTimeout, ctx.Err())
	}
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
