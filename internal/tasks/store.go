package tasks

import "errors"

var (
	// ErrNotFound is returned when a task identifier was never issued.
	ErrNotFound = errors.New("task not found")
	// ErrExists is returned when creating a task whose ID is already registered.
	ErrExists = errors.New("task already exists")
)

// Store defines the registry interface for tasks. The process ships an
// in-memory implementation; the interface exists so a persistent backing
// store can be swapped in without touching the handlers.
type Store interface {
	Create(t *Task) error
	Get(id string) (*Task, error)
	List() []*Task
	Resolve(id string, status Status, resultOrError string) (*Task, error)
}
