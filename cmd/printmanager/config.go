// cmd/printmanager/config.go
package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/printmanager/internal/approval"
	"github.com/tendant/printmanager/internal/backend"
	"github.com/tendant/printmanager/internal/bus"
)

const (
	defaultEnvFile = "/etc/printmanager/printmanager.env"
	defaultLogFile = "/tmp/printmanager.log"
)

type config struct {
	APIEndpoint  string
	APIToken     string
	APITimeout   time.Duration
	BackendDir   string
	TempDir      string
	DenyAction   backend.ExitStatus
	LogFile      string
	LogLevel     slog.Level
	NATSURL      string
	EventSubject string
}

func LoadConfig(env backend.Environ) (config, error) {
	cfg := config{
		APIEndpoint:  env.Get("PRINTMANAGER_API_ENDPOINT", ""),
		APIToken:     env.Get("PRINTMANAGER_API_TOKEN", ""),
		BackendDir:   env.Get("PRINTMANAGER_BACKEND_DIR", backend.DefaultDir),
		TempDir:      env.Get("PRINTMANAGER_TMPDIR", env.Get("TMPDIR", "")),
		LogFile:      env.Get("PRINTMANAGER_LOG_FILE", defaultLogFile),
		NATSURL:      env.Get("NATS_URL", ""),
		EventSubject: env.Get("PRINTMANAGER_EVENT_SUBJECT", bus.DefaultSubject),
	}

	timeout, err := parsePositiveDuration(env.Get("PRINTMANAGER_API_TIMEOUT", approval.DefaultTimeout.String()), "PRINTMANAGER_API_TIMEOUT")
	if err != nil {
		return config{}, err
	}
	cfg.APITimeout = timeout

	deny, err := parseDenyAction(env.Get("PRINTMANAGER_DENY_ACTION", "cancel"))
	if err != nil {
		return config{}, err
	}
	cfg.DenyAction = deny

	level, err := parseLevel(env.Get("PRINTMANAGER_LOG_LEVEL", "info"))
	if err != nil {
		return config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parsePositiveDuration(value, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %s)", name, d)
	}
	return d, nil
}

func parseDenyAction(value string) (backend.ExitStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cancel":
		return backend.StatusCancel, nil
	case "retry":
		return backend.StatusRetry, nil
	default:
		return 0, fmt.Errorf("invalid PRINTMANAGER_DENY_ACTION %q, expected 'cancel' or 'retry'", value)
	}
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("invalid PRINTMANAGER_LOG_LEVEL: %w", err)
	}
	return level, nil
}
