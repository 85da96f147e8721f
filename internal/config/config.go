package config

import "time"

// Config is the root configuration for promptq.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Upstream UpstreamConfig `json:"upstream"`
	Webhook  WebhookConfig  `json:"webhook"`
	Events   EventsConfig   `json:"events"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// UpstreamConfig configures the completion provider.
type UpstreamConfig struct {
	Provider  string   `json:"provider"` // "openai", "anthropic", "simulated"
	Model     string   `json:"model"`
	BaseURL   string   `json:"base_url,omitempty"`
	APIKey    string   `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
	// SimulateDelay is how long the simulated provider waits before
	// delivering its webhook.
	SimulateDelay Duration `json:"simulate_delay,omitempty"`
}

// WebhookConfig configures inbound webhook verification and the callback URL
// handed to the upstream provider.
type WebhookConfig struct {
	Secret string `json:"secret,omitempty"` // direct secret or ${{ .Env.VAR }} template
	// Freshness is the maximum allowed age of a webhook timestamp before
	// it is rejected as a potential replay.
	Freshness Duration `json:"freshness,omitempty"`
	// CallbackURL overrides where the provider delivers results. Empty means
	// the server's own /api/webhook endpoint.
	CallbackURL string `json:"callback_url,omitempty"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
