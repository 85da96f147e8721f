// Package tasks tracks submitted prompts through their webhook-driven lifecycle.
package tasks

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one submitted prompt tracked by identifier and status.
// Status only moves forward: pending → completed or pending → failed.
type Task struct {
	ID          string     `json:"id"`
	Prompt      string     `json:"prompt"`
	Status      Status     `json:"status"`
	Result      string     `json:"result,omitempty"` // set only when completed
	Error       string     `json:"error,omitempty"`  // set only when failed
	Model       string     `json:"model,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// GenerateTaskID creates a unique task identifier.
func GenerateTaskID() string {
	u := uuid.New().String()
	return "resp_" + strings.ReplaceAll(u[:13], "-", "")
}
