package mqtt

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sweeney/led-replay/internal/logic"
)

func testPress() logic.Press {
	return logic.Press{
		Timestamp: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Seq:       3,
		Value:     2,
		Count:     3,
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(testPress())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"press":{"timestamp":"2026-01-15T10:30:00Z","seq":3,"value":2,"count":3,"capacity":5}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	press := testPress()
	press.Timestamp = time.Date(2026, 1, 15, 5, 30, 0, 0, loc)

	payload, err := FormatPayload(press)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Press.Timestamp != "2026-01-15T10:30:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Press.Timestamp)
	}
}

func TestFormatPayloadZeroValue(t *testing.T) {
	// A press at startup records cursor value 0
	press := testPress()
	press.Seq, press.Value, press.Count = 1, 0, 1

	payload, err := FormatPayload(press)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if v, ok := raw["press"]["value"]; !ok || v != float64(0) {
		t.Errorf("value 0 must be present, got %v (present=%v)", v, ok)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "ledreplay/device/presses" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "ledreplay/device/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 22, 15, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T22:15:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadReconnected(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"REPLAY"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "REPLAY",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload to be returned as-is, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(testPress()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Presses) != 1 {
		t.Fatalf("expected 1 press, got %d", len(f.Presses))
	}
	if !reflect.DeepEqual(f.Presses[0], testPress()) {
		t.Errorf("press not preserved: %+v", f.Presses[0])
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(testPress()); err == nil {
		t.Error("expected error")
	}
	if len(f.Presses) != 0 {
		t.Errorf("failed publish should not be recorded, got %d", len(f.Presses))
	}
}

func TestFakePublisherSystemEvents(t *testing.T) {
	f := NewFakePublisher()

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "REPLAY"})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "SHUTDOWN", Reason: "SIGINT", Retained: true})

	want := []string{"STARTUP", "REPLAY", "SHUTDOWN"}
	if got := f.SystemEventNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !f.SystemEvents[0].Retained || f.SystemEvents[1].Retained {
		t.Error("retained flag not preserved")
	}
	if len(f.SystemPayloads) != 3 {
		t.Errorf("expected 3 payloads, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherSystemError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("broker down")

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 0 {
		t.Errorf("failed publish should not be recorded, got %d", len(f.SystemEvents))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(testPress())
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true
	f.PublishError = errors.New("x")

	f.Reset()

	if f.Presses != nil || f.Payloads != nil || f.SystemEvents != nil || f.SystemPayloads != nil {
		t.Error("Reset should clear recorded events")
	}
	if f.Closed || f.Connected || f.PublishError != nil {
		t.Error("Reset should clear flags and errors")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	if err := p.Publish(testPress()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("NopPublisher should never report connected")
	}
}
