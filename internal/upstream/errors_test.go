package upstream

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmercier/promptq/internal/config"
	"github.com/dmercier/promptq/internal/webhook"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want string
	}{
		{"auth", "401 unauthorized", "authentication failed"},
		{"rate limit", "429 too many requests", "rate limited"},
		{"token limit", "context length exceeded", "prompt too long"},
		{"not found", "model not found", "model not found"},
		{"connection", "dial tcp: connection refused", "connection error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(errors.New(tt.err))
			if !strings.Contains(got.Error(), tt.want) {
				t.Errorf("HandleError(%q) = %q, want substring %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleErrorPassthrough(t *testing.T) {
	orig := errors.New("something else entirely")
	if got := HandleError(orig); got != orig {
		t.Errorf("unclassified error was wrapped: %v", got)
	}
	if HandleError(nil) != nil {
		t.Error("nil error must stay nil")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	deliverer := NewDeliverer(webhook.NewSigner(testSecret))

	cfg := config.UpstreamConfig{Provider: "carrier-pigeon"}
	if _, err := New(context.Background(), cfg, deliverer); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewSimulatedProvider(t *testing.T) {
	deliverer := NewDeliverer(webhook.NewSigner(testSecret))

	cfg := config.UpstreamConfig{Provider: "simulated"}
	client, err := New(context.Background(), cfg, deliverer)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := client.(*Simulator); !ok {
		t.Errorf("expected *Simulator, got %T", client)
	}
}
