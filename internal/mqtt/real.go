package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are held in a fixed-capacity buffer and
// replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics

	mu    sync.Mutex
	queue *replayQueue
}

const replayQueueLimit = 256

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker, clientID, topicBase string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = "lsh-panel"
	}
	p := &RealPublisher{
		topics: TopicsFor(topicBase),
		queue:  newReplayQueue(replayQueueLimit),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.replayBuffered() })

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// PublishClick sends a click event. QoS 0, not retained.
func (p *RealPublisher) PublishClick(event ClickEvent) error {
	payload, err := FormatClickPayload(event)
	if err != nil {
		return fmt.Errorf("format click payload: %w", err)
	}
	return p.publish(p.topics.Events, 0, false, payload)
}

// PublishState sends a state snapshot. QoS 0, retained so late subscribers
// see the current panel state.
func (p *RealPublisher) PublishState(event StateEvent) error {
	payload, err := FormatStatePayload(event)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return p.publish(p.topics.Events, 0, true, payload)
}

// PublishSystem sends a lifecycle event. QoS 1 (at-least-once) because
// shutdown and connectivity transitions must not be lost.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload := event.RawPayload
	if payload == nil {
		var err error
		payload, err = FormatSystemPayload(event)
		if err != nil {
			return fmt.Errorf("format system payload: %w", err)
		}
	}
	return p.publish(p.topics.System, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.queue.add(queuedEvent{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// replayBuffered flushes everything buffered while disconnected.
func (p *RealPublisher) replayBuffered() {
	p.mu.Lock()
	events := p.queue.drain()
	p.mu.Unlock()

	for _, ev := range events {
		p.client.Publish(ev.topic, ev.qos, ev.retained, ev.payload)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
