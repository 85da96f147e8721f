package tasks

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateThenGet(t *testing.T) {
	s := NewMemStore()

	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}
	if task.ID == "" {
		t.Fatal("expected generated ID")
	}
	if !strings.HasPrefix(task.ID, "resp_") {
		t.Errorf("expected resp_ prefix, got %s", task.ID)
	}

	got, err := s.Get(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
	if got.Result != "" || got.Error != "" {
		t.Errorf("pending record must have empty result/error, got %q / %q", got.Result, got.Error)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestGetUnknownID(t *testing.T) {
	s := NewMemStore()

	_, err := s.Get("resp_neverissued")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDuplicateID(t *testing.T) {
	s := NewMemStore()

	if err := s.Create(&Task{ID: "resp_dup", Prompt: "a"}); err != nil {
		t.Fatal(err)
	}
	err := s.Create(&Task{ID: "resp_dup", Prompt: "b"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestResolveCompleted(t *testing.T) {
	s := NewMemStore()
	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	got, err := s.Resolve(task.ID, StatusCompleted, "Hi!")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.Result != "Hi!" {
		t.Errorf("expected result Hi!, got %q", got.Result)
	}
	if got.Error != "" {
		t.Errorf("completed record must have empty error, got %q", got.Error)
	}
	if got.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestResolveFailed(t *testing.T) {
	s := NewMemStore()
	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	got, err := s.Resolve(task.ID, StatusFailed, "upstream exploded")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Error != "upstream exploded" {
		t.Errorf("expected error message, got %q", got.Error)
	}
	if got.Result != "" {
		t.Errorf("failed record must have empty result, got %q", got.Result)
	}
}

func TestResolveIdempotent(t *testing.T) {
	s := NewMemStore()
	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	first, err := s.Resolve(task.ID, StatusCompleted, "Hi!")
	if err != nil {
		t.Fatal(err)
	}

	// A second terminal update must leave the record unchanged.
	second, err := s.Resolve(task.ID, StatusFailed, "late failure")
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != first.Status {
		t.Errorf("status changed on duplicate update: %s → %s", first.Status, second.Status)
	}
	if second.Result != first.Result {
		t.Errorf("result changed on duplicate update: %q → %q", first.Result, second.Result)
	}
	if second.Error != "" {
		t.Errorf("error set on duplicate update: %q", second.Error)
	}
}

func TestResolveUnknownID(t *testing.T) {
	s := NewMemStore()

	_, err := s.Resolve("resp_missing", StatusCompleted, "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveNonTerminalStatus(t *testing.T) {
	s := NewMemStore()
	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Resolve(task.ID, StatusPending, ""); err == nil {
		t.Fatal("expected error resolving to pending")
	}
}

func TestListSorted(t *testing.T) {
	s := NewMemStore()

	for _, p := range []string{"first", "second", "third"} {
		if err := s.Create(&Task{Prompt: p}); err != nil {
			t.Fatal(err)
		}
	}

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].UpdatedAt.After(list[i-1].UpdatedAt) {
			t.Error("expected UpdatedAt descending order")
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemStore()
	task := &Task{Prompt: "Hello world"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(task.ID)
	got.Status = StatusFailed

	again, _ := s.Get(task.ID)
	if again.Status != StatusPending {
		t.Error("mutating a returned record leaked into the store")
	}
}
