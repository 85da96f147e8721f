package upstream

import (
	"context"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/dmercier/promptq/internal/config"
)

const defaultOpenAIModel = "gpt-4o"

// newOpenAI creates an OpenAI ChatModel from the upstream config.
func newOpenAI(ctx context.Context, cfg config.UpstreamConfig) (ChatModel, error) {
	modelConfig := &einoopenai.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}
	if modelConfig.Model == "" {
		modelConfig.Model = defaultOpenAIModel
	}

	if cfg.BaseURL != "" {
		modelConfig.BaseURL = cfg.BaseURL
	}

	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}

	if cfg.Timeout.Duration() > 0 {
		modelConfig.Timeout = cfg.Timeout.Duration()
	} else {
		modelConfig.Timeout = 60 * time.Second
	}

	return einoopenai.NewChatModel(ctx, modelConfig)
}
