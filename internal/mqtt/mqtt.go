// Package mqtt publishes device telemetry to MQTT with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/led-replay/internal/logic"
)

// Topic is the MQTT topic for recorded button presses.
const Topic = "ledreplay/device/presses"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "ledreplay/device/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a recorded press to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(press logic.Press) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, replay, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "REPLAY", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a press.
type Payload struct {
	Press PressPayload `json:"press"`
}

// PressPayload contains the press details.
type PressPayload struct {
	Timestamp string `json:"timestamp"`
	Seq       int    `json:"seq"`
	Value     int    `json:"value"`
	Count     int    `json:"count"`
	Capacity  int    `json:"capacity"`
}

// FormatPayload creates the JSON payload for a recorded press.
func FormatPayload(press logic.Press) ([]byte, error) {
	payload := Payload{
		Press: PressPayload{
			Timestamp: press.Timestamp.UTC().Format(time.RFC3339),
			Seq:       press.Seq,
			Value:     press.Value,
			Count:     press.Count,
			Capacity:  logic.Capacity,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

// Publish discards the press.
func (NopPublisher) Publish(logic.Press) error { return nil }

// PublishSystem discards the event.
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }
