package config

import (
	"os"
	"path/filepath"
)

// BasePath returns the root directory for promptq data.
// It uses $PROMPTQ_PATH if set, otherwise defaults to ~/.promptq.
func BasePath() string {
	if v := os.Getenv("PROMPTQ_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".promptq")
	}
	return filepath.Join(home, ".promptq")
}

// ConfigPath returns the path to the promptq config file.
func ConfigPath() string {
	return filepath.Join(BasePath(), "config.jsonc")
}

// DotenvPath returns the path to the promptq .env file.
func DotenvPath() string {
	return filepath.Join(BasePath(), ".env")
}

// HeartbeatPath returns the path to the server heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(BasePath(), "heartbeat.json")
}
