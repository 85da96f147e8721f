package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmercier/promptq/internal/tasks"
)

// Simulator is the demo provider: it accepts every submission and, after a
// short delay, delivers a canned completion through the same signed webhook
// path the real providers use. The webhook contract stays authoritative;
// only the completion itself is faked.
type Simulator struct {
	deliverer *Deliverer
	delay     time.Duration

	// FailWith, when set, makes every task fail with this message instead
	// of completing.
	FailWith string
}

// NewSimulator creates a simulated provider.
func NewSimulator(deliverer *Deliverer, delay time.Duration) *Simulator {
	if delay <= 0 {
		delay = 4 * time.Second
	}
	return &Simulator{deliverer: deliverer, delay: delay}
}

// Submit accepts the prompt and schedules the simulated delivery.
func (s *Simulator) Submit(ctx context.Context, prompt, webhookURL string) (string, error) {
	taskID := tasks.GenerateTaskID()
	slog.Info("simulated submission accepted", "task_id", taskID, "delay", s.delay)

	go func() {
		time.Sleep(s.delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if s.FailWith != "" {
			s.deliverer.DeliverFailed(ctx, webhookURL, taskID, s.FailWith)
			return
		}
		s.deliverer.DeliverCompleted(ctx, webhookURL, taskID, simulatedReply(prompt))
	}()

	return taskID, nil
}

func simulatedReply(prompt string) string {
	return fmt.Sprintf("Simulated completion for: %q\n\nConfigure a real provider (openai or anthropic) to get actual model output.", prompt)
}

var _ Client = (*Simulator)(nil)
