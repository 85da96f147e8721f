package upstream

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmercier/promptq/internal/webhook"
)

// Deliverer signs event payloads and POSTs them to a webhook URL.
type Deliverer struct {
	signer *webhook.Signer
	client *http.Client
}

// NewDeliverer creates a deliverer signing with the shared secret.
func NewDeliverer(signer *webhook.Signer) *Deliverer {
	return &Deliverer{
		signer: signer,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// DeliverCompleted sends a response.completed event.
func (d *Deliverer) DeliverCompleted(ctx context.Context, url, taskID, text string) {
	body, err := webhook.NewCompletedEvent(taskID, text)
	if err != nil {
		slog.Error("encode completion event", "task_id", taskID, "error", err)
		return
	}
	d.post(ctx, url, taskID, body)
}

// DeliverFailed sends a response.failed event.
func (d *Deliverer) DeliverFailed(ctx context.Context, url, taskID, message string) {
	body, err := webhook.NewFailedEvent(taskID, message)
	if err != nil {
		slog.Error("encode failure event", "task_id", taskID, "error", err)
		return
	}
	d.post(ctx, url, taskID, body)
}

// post performs a single signed delivery. Failures are logged, not retried.
func (d *Deliverer) post(ctx context.Context, url, taskID string, body []byte) {
	signature, timestamp := d.signer.Sign(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("build webhook request", "task_id", taskID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.HeaderSignature, signature)
	req.Header.Set(webhook.HeaderTimestamp, timestamp)

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Error("webhook delivery failed", "task_id", taskID, "url", url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("webhook delivery rejected", "task_id", taskID, "url", url, "status", resp.StatusCode)
		return
	}
	slog.Debug("webhook delivered", "task_id", taskID, "url", url)
}
