package tasks

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory task registry. It is constructed at process start
// and passed by reference to each handler; tasks live for the lifetime of
// the process and are never deleted.
type MemStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[string]*Task)}
}

// Create inserts a new pending record.
func (s *MemStore) Create(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = GenerateTaskID()
	}
	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, t.ID)
	}

	now := time.Now()
	t.Status = StatusPending
	t.CreatedAt = now
	t.UpdatedAt = now

	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

// Get returns a copy of the task record, or ErrNotFound.
func (s *MemStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

// List returns all tasks sorted by UpdatedAt descending.
func (s *MemStore) List() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Resolve applies a terminal transition to a pending task. Resolving an
// already-terminal task is a logged no-op returning the unchanged record,
// so duplicate webhook deliveries never crash the handler.
func (s *MemStore) Resolve(id string, status Status, resultOrError string) (*Task, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("resolve to non-terminal status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if t.Status.Terminal() {
		slog.Warn("duplicate terminal update ignored", "task_id", id, "status", t.Status, "requested", status)
		cp := *t
		return &cp, nil
	}

	now := time.Now()
	t.Status = status
	t.UpdatedAt = now
	t.CompletedAt = &now
	switch status {
	case StatusCompleted:
		t.Result = resultOrError
	case StatusFailed:
		t.Error = resultOrError
	}

	cp := *t
	return &cp, nil
}

var _ Store = (*MemStore)(nil)
