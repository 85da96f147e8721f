package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventTaskCreated)

	bus.Publish(NewEvent(EventTaskCreated, SourceGateway, "resp_1", nil))
	bus.Publish(NewEvent(EventTaskCompleted, SourceGateway, "resp_1", nil))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventTaskCreated {
		t.Errorf("expected task.created, got %s", received[0].Type)
	}
	if received[0].TaskID != "resp_1" {
		t.Errorf("expected task id resp_1, got %s", received[0].TaskID)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewEvent(EventTaskCreated, SourceGateway, "resp_1", nil))
	bus.Publish(NewEvent(EventWebhookReceived, SourceGateway, "resp_1", nil))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestBusHistoryLimit(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	for i := 0; i < 5; i++ {
		bus.Publish(NewEvent(EventTaskCreated, SourceGateway, "resp_1", map[string]any{"i": i}))
	}

	waitForHistory(bus, 5)

	if got := len(bus.History(3)); got != 3 {
		t.Errorf("expected 3 events, got %d", got)
	}
	if got := len(bus.History(100)); got != 5 {
		t.Errorf("expected 5 events, got %d", got)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := newRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.add(NewEvent(EventTaskCreated, SourceGateway, "resp_1", map[string]any{"i": i}))
	}

	events := rb.get(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// Oldest surviving entry is i=2.
	if events[0].Payload["i"] != 2 {
		t.Errorf("expected oldest entry i=2, got %v", events[0].Payload["i"])
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(8)
	bus.Close()

	// Must not panic.
	bus.Publish(NewEvent(EventTaskCreated, SourceGateway, "resp_1", nil))
}

func waitForHistory(bus *Bus, n int) {
	for i := 0; i < 200; i++ {
		if len(bus.History(100)) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
