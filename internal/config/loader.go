package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/marcozac/go-jsonc"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, expands ${{ .Env.VAR }} templates,
// unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variable templates before stripping comments,
	// since templates live inside string values.
	expanded := expandEnvTemplates(string(data))

	var cfg Config
	if err := jsonc.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Upstream.Provider == "" {
		cfg.Upstream.Provider = "simulated"
	}
	if cfg.Upstream.SimulateDelay == 0 {
		cfg.Upstream.SimulateDelay = Duration(4 * time.Second)
	}
	if cfg.Webhook.Freshness == 0 {
		cfg.Webhook.Freshness = Duration(5 * time.Minute)
	}
	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = os.Getenv("PROMPTQ_WEBHOOK_SECRET")
	}
	if cfg.Upstream.APIKey == "" {
		cfg.Upstream.APIKey = defaultAPIKey(cfg.Upstream.Provider)
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 256
	}
}

// defaultAPIKey resolves the conventional env var for a provider.
func defaultAPIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}

// Validate enforces the credentials required at process start. Absence fails
// here, at startup, rather than per-request.
func (c *Config) Validate() error {
	if c.Webhook.Secret == "" {
		return errors.New("webhook secret is required (set webhook.secret or PROMPTQ_WEBHOOK_SECRET)")
	}
	if strings.ToLower(c.Upstream.Provider) != "simulated" && c.Upstream.APIKey == "" {
		return fmt.Errorf("api key for provider %q is required at startup", c.Upstream.Provider)
	}
	return nil
}
