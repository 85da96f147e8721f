// Package events provides an in-memory event bus recording task lifecycle
// activity for the /api/events endpoint and log subscribers.
package events

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Task lifecycle
	EventTaskCreated   EventType = "task.created"
	EventTaskCompleted EventType = "task.completed"
	EventTaskFailed    EventType = "task.failed"

	// Webhook boundary
	EventWebhookReceived EventType = "webhook.received"
	EventWebhookRejected EventType = "webhook.rejected"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceGateway  EventSource = "gateway"
	SourceUpstream EventSource = "upstream"
)

// Event is one entry in the lifecycle history.
type Event struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload,omitempty"`
}

var eventIDCounter uint64

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, source EventSource, taskID string, payload map[string]any) Event {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return Event{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq),
		TaskID:    taskID,
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}
