// cmd/printmanager/main.go
package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tendant/printmanager/internal/adapter"
	"github.com/tendant/printmanager/internal/approval"
	"github.com/tendant/printmanager/internal/backend"
	"github.com/tendant/printmanager/internal/bus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	inv, err := backend.ParseArgs(args)
	if err == nil && inv.Discovery() {
		return int(backend.StatusOK)
	}

	loadEnvFile()

	env := backend.Environ(os.Environ())
	cfg, cfgErr := LoadConfig(env)

	logger, closeLog := newLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	if cfgErr != nil {
		logger.Error("load config", "err", cfgErr)
		return int(backend.StatusRetry)
	}
	logger.Debug("printmanager starting",
		"api_endpoint", cfg.APIEndpoint,
		"api_timeout", cfg.APITimeout,
		"backend_dir", cfg.BackendDir,
		"deny_action", cfg.DenyAction.String(),
		"nats_enabled", cfg.NATSURL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	approver := approval.NewClient(cfg.APIEndpoint,
		approval.WithToken(cfg.APIToken),
		approval.WithTimeout(cfg.APITimeout),
		approval.WithLogger(logger),
	)

	var events adapter.EventPublisher
	if cfg.NATSURL != "" {
		events = bus.NewPublisher(cfg.NATSURL, cfg.EventSubject, 0)
	}

	a := adapter.New(adapter.Config{
		BackendDir: cfg.BackendDir,
		TempDir:    cfg.TempDir,
		DenyAction: cfg.DenyAction,
	}, approver, events, logger)

	res := a.Run(ctx, args, env, backend.Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	return int(res.Status)
}

// loadEnvFile seeds the environment from the env file. Variables already set
// by the scheduler take precedence.
func loadEnvFile() {
	path := os.Getenv("PRINTMANAGER_ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load env file", "path", path, "err", err)
	}
}

func newLogger(path string, level slog.Level) (*slog.Logger, func()) {
	var out io.Writer = os.Stderr
	closer := func() {}
	if path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			out = f
			closer = func() { _ = f.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer
}
