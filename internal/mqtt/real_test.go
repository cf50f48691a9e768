package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// doneToken is an already completed paho token.
type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubClient records publishes. Methods the publisher does not use are left
// to the embedded nil interface and panic if called.
type stubClient struct {
	paho.Client

	mu      sync.Mutex
	open    bool
	sent    []outbound
	err     error
	onCheck func() // called from IsConnectionOpen, if set
}

func (c *stubClient) IsConnectionOpen() bool {
	if c.onCheck != nil {
		c.onCheck()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *stubClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return doneToken{err: c.err}
	}
	c.sent = append(c.sent, outbound{topic: topic, payload: payload.([]byte), qos: qos, retained: retained})
	return doneToken{}
}

func (c *stubClient) Disconnect(uint) {}

func (c *stubClient) published() []outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]outbound(nil), c.sent...)
}

func newStubPublisher(open bool) (*RealPublisher, *stubClient) {
	c := &stubClient{open: open}
	return &RealPublisher{client: c, queue: newQueue(offlineQueue)}, c
}

func systemEventName(t *testing.T, payload []byte) string {
	t.Helper()
	var sp SystemPayload
	if err := json.Unmarshal(payload, &sp); err != nil {
		t.Fatalf("invalid system payload %s: %v", payload, err)
	}
	return sp.System.Event
}

func TestRealPublishWhenConnected(t *testing.T) {
	p, c := newStubPublisher(true)

	if err := p.Publish(testPress()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}

	sent := c.published()
	if len(sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sent))
	}
	if sent[0].topic != Topic || sent[0].qos != 0 || sent[0].retained {
		t.Errorf("press: got topic=%s qos=%d retained=%v", sent[0].topic, sent[0].qos, sent[0].retained)
	}
	if sent[1].topic != TopicSystem || sent[1].qos != 1 || !sent[1].retained {
		t.Errorf("system: got topic=%s qos=%d retained=%v", sent[1].topic, sent[1].qos, sent[1].retained)
	}
	if p.queue.len() != 0 {
		t.Errorf("nothing should be queued while connected, got %d", p.queue.len())
	}
}

func TestRealPublishErrorIsWrapped(t *testing.T) {
	p, c := newStubPublisher(true)
	c.err = errors.New("not authorized")

	err := p.Publish(testPress())
	if !errors.Is(err, c.err) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestRealPublishQueuesWhileDisconnected(t *testing.T) {
	p, c := newStubPublisher(false)

	p.Publish(testPress())
	p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "REPLAY"})

	if len(c.published()) != 0 {
		t.Errorf("nothing should reach the client while disconnected, got %d", len(c.published()))
	}
	if p.queue.len() != 2 {
		t.Errorf("expected 2 queued messages, got %d", p.queue.len())
	}
}

func TestOnConnectFlushesOldestFirstWithoutReconnected(t *testing.T) {
	p, c := newStubPublisher(false)

	press := testPress()
	p.Publish(press)
	p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	press.Seq = 4
	p.Publish(press)

	c.setOpen(true)
	p.onConnect(c)

	sent := c.published()
	if len(sent) != 3 {
		t.Fatalf("expected 3 flushed messages, got %d", len(sent))
	}
	wantTopics := []string{Topic, TopicSystem, Topic}
	for i, want := range wantTopics {
		if sent[i].topic != want {
			t.Errorf("message %d: topic %s, want %s", i, sent[i].topic, want)
		}
	}
	var last Payload
	if err := json.Unmarshal(sent[2].payload, &last); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if last.Press.Seq != 4 {
		t.Errorf("last flushed press: seq %d, want 4", last.Press.Seq)
	}
	if !sent[1].retained || sent[1].qos != 1 {
		t.Error("queued system event lost its qos/retained flags")
	}
	if name := systemEventName(t, sent[1].payload); name == "RECONNECTED" {
		t.Error("first connect must not publish RECONNECTED")
	}
	if p.queue.len() != 0 {
		t.Errorf("queue should be empty after flush, got %d", p.queue.len())
	}
}

func TestOnReconnectPublishesReconnectedAfterQueue(t *testing.T) {
	p, c := newStubPublisher(true)
	p.onConnect(c)
	if len(c.published()) != 0 {
		t.Fatalf("first connect with empty queue should publish nothing, got %d", len(c.published()))
	}

	// Connection drops, a press is queued, then paho reconnects
	c.setOpen(false)
	p.Publish(testPress())
	c.setOpen(true)
	p.onConnect(c)

	sent := c.published()
	if len(sent) != 2 {
		t.Fatalf("expected queued press then RECONNECTED, got %d messages", len(sent))
	}
	if sent[0].topic != Topic {
		t.Errorf("first message: topic %s, want %s", sent[0].topic, Topic)
	}
	if sent[1].topic != TopicSystem || sent[1].qos != 1 || sent[1].retained {
		t.Errorf("RECONNECTED: topic=%s qos=%d retained=%v", sent[1].topic, sent[1].qos, sent[1].retained)
	}
	if name := systemEventName(t, sent[1].payload); name != "RECONNECTED" {
		t.Errorf("expected RECONNECTED, got %s", name)
	}
}

func TestPublishRacingConnectIsFlushed(t *testing.T) {
	p, c := newStubPublisher(false)

	// The connection comes up and paho runs onConnect right after the
	// publisher has seen it closed.
	flushed := make(chan struct{})
	c.onCheck = func() {
		c.onCheck = nil
		go func() {
			c.setOpen(true)
			p.onConnect(c)
			close(flushed)
		}()
	}

	if err := p.Publish(testPress()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("onConnect did not finish")
	}

	// Whichever side won, the press was either flushed by onConnect or
	// published directly; it must not be left in the queue.
	if p.queue.len() != 0 {
		t.Errorf("press stranded in the offline queue")
	}
	if n := len(c.published()); n != 1 {
		t.Errorf("expected the press to be sent once, got %d messages", n)
	}
}
