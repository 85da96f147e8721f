package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmercier/promptq/internal/config"
)

// New creates the provider named by the config. The deliverer carries the
// webhook signer shared with the gateway's verifier.
func New(ctx context.Context, cfg config.UpstreamConfig, deliverer *Deliverer) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "simulated":
		return NewSimulator(deliverer, cfg.SimulateDelay.Duration()), nil

	case "openai":
		m, err := newOpenAI(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init openai model: %w", err)
		}
		return NewChatClient(m, cfg.Model, deliverer, cfg.Timeout.Duration()), nil

	case "anthropic":
		m, err := newAnthropic(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init anthropic model: %w", err)
		}
		return NewChatClient(m, cfg.Model, deliverer, cfg.Timeout.Duration()), nil

	default:
		return nil, fmt.Errorf("unknown upstream provider %q", cfg.Provider)
	}
}
