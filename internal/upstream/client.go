// Package upstream submits prompts to a completion provider that reports the
// outcome through a signed webhook delivery.
package upstream

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dmercier/promptq/internal/tasks"
)

const defaultSystemPrompt = "You are a helpful assistant that provides detailed, thoughtful responses."

// Client registers a prompt with the completion service. Submit returns as
// soon as the work is accepted; the outcome arrives later as a webhook POST
// to webhookURL. No retries: delivery happens at most once per task.
type Client interface {
	Submit(ctx context.Context, prompt, webhookURL string) (taskID string, err error)
}

// ChatModel is the narrow slice of eino's chat model surface this package
// needs. Both the eino-ext OpenAI model and the local Anthropic adapter
// satisfy it.
type ChatModel interface {
	Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatClient runs completions against a chat model in the background and
// delivers the result as a signed webhook.
type ChatClient struct {
	model     ChatModel
	modelName string
	deliverer *Deliverer
	timeout   time.Duration
}

// NewChatClient creates a client around an initialized chat model.
func NewChatClient(m ChatModel, modelName string, deliverer *Deliverer, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ChatClient{
		model:     m,
		modelName: modelName,
		deliverer: deliverer,
		timeout:   timeout,
	}
}

// Submit accepts the prompt and starts the completion in the background.
func (c *ChatClient) Submit(ctx context.Context, prompt, webhookURL string) (string, error) {
	taskID := tasks.GenerateTaskID()
	go c.run(taskID, prompt, webhookURL)
	return taskID, nil
}

func (c *ChatClient) run(taskID, prompt, webhookURL string) {
	// Detached from the submitting request: the completion outlives it.
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(defaultSystemPrompt),
		schema.UserMessage(prompt),
	}

	out, err := c.model.Generate(ctx, messages)
	if err != nil {
		err = HandleError(err)
		slog.Error("completion failed", "task_id", taskID, "model", c.modelName, "error", err)
		c.deliverer.DeliverFailed(ctx, webhookURL, taskID, err.Error())
		return
	}

	slog.Debug("completion finished", "task_id", taskID, "model", c.modelName)
	c.deliverer.DeliverCompleted(ctx, webhookURL, taskID, out.Content)
}

var _ Client = (*ChatClient)(nil)
