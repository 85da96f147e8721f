package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dmercier/promptq/internal/config"
	"github.com/dmercier/promptq/internal/heartbeat"
)

// NewSubmitCommand returns the submit subcommand.
func NewSubmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Queue a prompt on a running server and wait for the result",
		ArgsUsage: "<prompt>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Server base URL (default: from heartbeat file)",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "Poll until the task reaches a terminal state",
				Value: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up waiting after this long",
				Value: 5 * time.Minute,
			},
		},
		Action: runSubmit,
	}
}

func runSubmit(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: promptq submit <prompt>")
	}

	base, err := serverURL(cmd.String("server"))
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 15 * time.Second}

	taskID, err := queuePrompt(ctx, client, base, prompt)
	if err != nil {
		return err
	}
	fmt.Printf("Queued: %s\n", taskID)

	if !cmd.Bool("wait") {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	return pollStatus(waitCtx, client, base, taskID)
}

// serverURL resolves the target server: explicit flag first, then the
// heartbeat file of a locally running instance.
func serverURL(flag string) (string, error) {
	if flag != "" {
		return strings.TrimRight(flag, "/"), nil
	}

	status, hb, err := heartbeat.Check(config.HeartbeatPath(), 2*time.Minute)
	if err == nil && status == heartbeat.StatusAlive && hb.Addr != "" {
		return "http://" + hb.Addr, nil
	}
	return "", fmt.Errorf("no running server found; pass --server")
}

func queuePrompt(ctx context.Context, client *http.Client, base, prompt string) (string, error) {
	form := url.Values{"prompt": {prompt}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/queue", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("queue request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		TaskID string `json:"task_id"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode queue response: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("queue failed (%d): %s", resp.StatusCode, body.Error)
	}
	return body.TaskID, nil
}

func pollStatus(ctx context.Context, client *http.Client, base, taskID string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/status/"+taskID, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("status request: %w", err)
		}

		var body struct {
			Status string `json:"status"`
			Result string `json:"result"`
			Error  string `json:"error"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode status response: %w", err)
		}

		switch body.Status {
		case "pending":
			continue
		case "completed":
			fmt.Println(body.Result)
			return nil
		case "failed":
			return fmt.Errorf("task failed: %s", body.Error)
		default:
			return fmt.Errorf("unexpected status %q", body.Status)
		}
	}
}
