package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/led-replay/internal/logic"
)

const (
	clientID      = "led-replay"
	offlineQueue  = 100
	publishWait   = 5 * time.Second
	disconnectMs  = 1000
	retryInterval = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are queued and sent on reconnect.
type RealPublisher struct {
	client paho.Client

	mu        sync.Mutex
	queue     *queue
	connected bool // a connection has been established at least once
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. It does not wait for the connection.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{queue: newQueue(offlineQueue)}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// onConnect flushes the offline queue. It runs on a paho goroutine and must
// not wait on tokens.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.queue.drain()
	reconnect := p.connected
	p.connected = true
	p.mu.Unlock()

	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
	}
	log.Printf("mqtt: connected, flushed %d queued messages", len(pending))
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	// Check and push under the lock that onConnect drains under, so a message
	// queued just as the connection comes up is part of that flush.
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.queue.push(outbound{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a recorded press to the MQTT broker.
func (p *RealPublisher) Publish(press logic.Press) error {
	payload, err := FormatPayload(press)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - lifecycle events should be delivered
	if err := p.publish(TopicSystem, 1, event.Retained, payload); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(disconnectMs)
	return nil
}
