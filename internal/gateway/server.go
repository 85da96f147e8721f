// Package gateway exposes the promptq HTTP API: queue a prompt, receive the
// provider's signed webhook, and poll task status.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmercier/promptq/internal/events"
	"github.com/dmercier/promptq/internal/tasks"
	"github.com/dmercier/promptq/internal/upstream"
	"github.com/dmercier/promptq/internal/webhook"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// Server is the promptq HTTP server. All dependencies are injected at
// construction; the server owns no global state.
type Server struct {
	httpServer  *http.Server
	store       tasks.Store
	verifier    *webhook.Verifier
	upstream    upstream.Client
	bus         *events.Bus
	callbackURL string
	started     time.Time
}

// NewServer creates a server listening on host:port. callbackURL overrides
// the webhook address handed to the provider; empty means derive it from the
// incoming request's host.
func NewServer(store tasks.Store, verifier *webhook.Verifier, up upstream.Client, bus *events.Bus, host string, port int, callbackURL string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		store:       store,
		verifier:    verifier,
		upstream:    up,
		bus:         bus,
		callbackURL: callbackURL,
		started:     time.Now(),
	}

	// Routes
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/api/queue", s.handleQueue)
	r.Post("/api/webhook", s.handleWebhook)
	r.Get("/api/status/{id}", s.handleStatus)
	r.Get("/api/tasks", s.handleTasks)
	r.Get("/api/events", s.handleEvents)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("promptq listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Truncate(time.Second).String(),
	})
}

// handleQueue registers a pending task and hands the prompt to the upstream
// provider. The response carries the identifier the browser polls with.
func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	taskID, err := s.upstream.Submit(r.Context(), prompt, s.webhookURL(r))
	if err != nil {
		slog.Error("upstream submission failed", "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("failed to queue task: %v", err))
		return
	}

	t := &tasks.Task{ID: taskID, Prompt: prompt}
	if err := s.store.Create(t); err != nil {
		slog.Error("register task failed", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register task")
		return
	}

	s.publish(events.EventTaskCreated, taskID, map[string]any{"prompt": prompt})
	slog.Info("task queued", "task_id", taskID)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  string(tasks.StatusPending),
	})
}

// handleWebhook verifies the provider callback and applies the terminal
// transition. Verification failure never mutates the registry.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ev, err := s.verifier.Verify(body, r.Header.Get(webhook.HeaderSignature), r.Header.Get(webhook.HeaderTimestamp))
	if err != nil {
		slog.Warn("webhook rejected", "error", err)
		s.publish(events.EventWebhookRejected, "", map[string]any{"reason": err.Error()})

		if errors.Is(err, webhook.ErrBadPayload) {
			writeError(w, http.StatusBadRequest, "invalid payload format")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	s.publish(events.EventWebhookReceived, ev.ID, map[string]any{"type": ev.Type})

	var (
		t        *tasks.Task
		resolved events.EventType
	)
	switch ev.Type {
	case webhook.EventCompleted:
		t, err = s.store.Resolve(ev.ID, tasks.StatusCompleted, ev.ResultText())
		resolved = events.EventTaskCompleted
	case webhook.EventFailed:
		t, err = s.store.Resolve(ev.ID, tasks.StatusFailed, ev.ErrorMessage())
		resolved = events.EventTaskFailed
	default:
		// Unknown event types are acknowledged so the provider stops
		// resending them.
		slog.Debug("ignoring webhook event type", "type", ev.Type)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		slog.Error("webhook update failed", "task_id", ev.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	s.publish(resolved, t.ID, map[string]any{"status": t.Status})
	slog.Info("task resolved", "task_id", t.ID, "status", t.Status)

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:     t.ID,
		Status: t.Status,
		Result: t.Result,
		Error:  t.Error,
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	history := s.bus.History(limit)
	if history == nil {
		history = []events.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

// statusResponse is the polling payload.
type statusResponse struct {
	ID     string       `json:"id"`
	Status tasks.Status `json:"status"`
	Result string       `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// webhookURL returns the callback address handed to the provider.
func (s *Server) webhookURL(r *http.Request) string {
	if s.callbackURL != "" {
		return s.callbackURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/webhook", scheme, r.Host)
}

func (s *Server) publish(t events.EventType, taskID string, payload map[string]any) {
	s.bus.Publish(events.NewEvent(t, events.SourceGateway, taskID, payload))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
