package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dmercier/promptq/internal/config"
	"github.com/dmercier/promptq/internal/events"
	"github.com/dmercier/promptq/internal/gateway"
	"github.com/dmercier/promptq/internal/heartbeat"
	"github.com/dmercier/promptq/internal/tasks"
	"github.com/dmercier/promptq/internal/upstream"
	"github.com/dmercier/promptq/internal/webhook"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the promptq server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}

	// Required credentials are checked here, at startup, never per-request.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Event bus
	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	unsub := bus.Subscribe(func(e events.Event) {
		slog.Debug("event", "type", e.Type, "task_id", e.TaskID)
	})
	defer unsub()

	// Webhook crypto: provider signs, gateway verifies, same shared secret.
	signer := webhook.NewSigner(cfg.Webhook.Secret)
	verifier := webhook.NewVerifier(cfg.Webhook.Secret, cfg.Webhook.Freshness.Duration())

	// Upstream provider
	provider, err := upstream.New(ctx, cfg.Upstream, upstream.NewDeliverer(signer))
	if err != nil {
		return fmt.Errorf("init upstream provider: %w", err)
	}
	slog.Info("upstream provider ready", "provider", cfg.Upstream.Provider, "model", cfg.Upstream.Model)

	// Task registry, injected into the handlers
	store := tasks.NewMemStore()

	server := gateway.NewServer(store, verifier, provider, bus,
		cfg.Server.Host, cfg.Server.Port, cfg.Webhook.CallbackURL)

	// Heartbeat file for the status command
	hb := heartbeat.NewWriter(config.HeartbeatPath(), server.Addr())
	if err := os.MkdirAll(config.BasePath(), 0o755); err == nil {
		hb.Start()
		defer hb.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
