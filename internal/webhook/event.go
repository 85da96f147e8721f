// Package webhook implements signed completion callbacks: signature
// verification with replay protection on the receiving side, and matching
// header generation on the sending side.
package webhook

import "encoding/json"

// Header names carried by every delivery.
const (
	HeaderSignature = "X-Promptq-Signature"
	HeaderTimestamp = "X-Promptq-Timestamp"
)

// Event types reported by the upstream provider.
const (
	EventCompleted = "response.completed"
	EventFailed    = "response.failed"
)

// Event is the provider's callback payload.
type Event struct {
	ID     string       `json:"id"`
	Type   string       `json:"type"`
	Output *EventOutput `json:"output,omitempty"`
	Error  *EventError  `json:"error,omitempty"`
}

// EventOutput carries the completion result.
type EventOutput struct {
	Text string `json:"text"`
}

// EventError carries the failure reason.
type EventError struct {
	Message string `json:"message"`
}

// ResultText returns the completion text, if any.
func (e *Event) ResultText() string {
	if e.Output == nil {
		return ""
	}
	return e.Output.Text
}

// ErrorMessage returns the failure message, defaulting when the provider
// omitted it.
func (e *Event) ErrorMessage() string {
	if e.Error == nil || e.Error.Message == "" {
		return "unknown error"
	}
	return e.Error.Message
}

// NewCompletedEvent builds a completion event payload.
func NewCompletedEvent(taskID, text string) ([]byte, error) {
	return json.Marshal(Event{
		ID:     taskID,
		Type:   EventCompleted,
		Output: &EventOutput{Text: text},
	})
}

// NewFailedEvent builds a failure event payload.
func NewFailedEvent(taskID, message string) ([]byte, error) {
	return json.Marshal(Event{
		ID:    taskID,
		Type:  EventFailed,
		Error: &EventError{Message: message},
	})
}
