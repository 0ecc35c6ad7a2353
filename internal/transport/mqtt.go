package transport

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// publishTimeout bounds how long Send waits for the client to hand a
// frame to the network. QoS 0 never waits for the broker.
const publishTimeout = 50 * time.Millisecond

// publisher is the subset of mqtt.Client used by MQTT.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes every frame as one QoS 0 message on a fixed topic, for
// ground stations that relay telemetry through a broker.
type MQTT struct {
	mu     sync.Mutex
	client publisher
	topic  string
	closed bool
}

// DialMQTT connects to broker (e.g. "tcp://host:1883"). An empty clientID
// gets a random one.
func DialMQTT(broker, topic, clientID string) (*MQTT, error) {
	if topic == "" {
		return nil, fmt.Errorf("mqtt topic must not be empty")
	}
	if clientID == "" {
		clientID = "qgclink-" + uuid.NewString()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}
	return newMQTT(client, topic), nil
}

func newMQTT(client publisher, topic string) *MQTT {
	return &MQTT{client: client, topic: topic}
}

func (m *MQTT) Send(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	// paho keeps the payload slice until the publish completes
	payload := append([]byte(nil), frame...)
	token := m.client.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out", m.topic)
	}
	return token.Error()
}

func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.client.Disconnect(250)
	return nil
}
