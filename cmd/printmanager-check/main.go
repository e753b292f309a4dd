// cmd/printmanager-check verifies a printmanager queue setup without going
// through the scheduler: it resolves the device URI to a backend and asks the
// approval service about a synthetic job.
//
// Usage:
//
//	./printmanager-check -uri printmanager:socket://10.0.0.5:9100
//	./printmanager-check -uri printmanager:ipp://printer/ipp -endpoint http://approve.local/jobs
//	./printmanager-check -uri printmanager:socket://h -file sample.pdf -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tendant/printmanager/internal/approval"
	"github.com/tendant/printmanager/internal/backend"
	"github.com/tendant/printmanager/pkg/schema"
)

type options struct {
	URI        string
	Endpoint   string
	Token      string
	BackendDir string
	Timeout    time.Duration
	User       string
	Printer    string
	File       string
	Verbose    bool
}

func main() {
	_ = godotenv.Load(getenv("PRINTMANAGER_ENV_FILE", "/etc/printmanager/printmanager.env"))

	var opts options
	flag.StringVar(&opts.URI, "uri", os.Getenv("DEVICE_URI"), "Wrapped device URI, e.g. printmanager:socket://host:9100 (required)")
	flag.StringVar(&opts.Endpoint, "endpoint", os.Getenv("PRINTMANAGER_API_ENDPOINT"), "Approval endpoint (empty = pass-through)")
	flag.StringVar(&opts.Token, "token", os.Getenv("PRINTMANAGER_API_TOKEN"), "Bearer token for the approval endpoint")
	flag.StringVar(&opts.BackendDir, "backend-dir", getenv("PRINTMANAGER_BACKEND_DIR", backend.DefaultDir), "Directory holding the real backends")
	flag.DurationVar(&opts.Timeout, "timeout", approval.DefaultTimeout, "Approval request timeout")
	flag.StringVar(&opts.User, "user", getenv("USER", "printmanager-check"), "User reported to the approval service")
	flag.StringVar(&opts.Printer, "printer", getenv("PRINTER", "unknown"), "Printer name reported to the approval service")
	flag.StringVar(&opts.File, "file", "", "Optional sample job file to inspect")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose output")
	flag.Parse()

	if opts.URI == "" {
		fmt.Println("Error: -uri flag is required")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := check(context.Background(), opts, os.Stdout, logger); err != nil {
		fmt.Printf("\nFAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nOK")
}

func check(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	uri, err := backend.ResolveDeviceURI(opts.URI)
	if err != nil {
		return fmt.Errorf("resolve device uri: %w", err)
	}
	fmt.Fprintf(out, "Device URI:   %s\n", uri.RealURI)
	fmt.Fprintf(out, "Scheme:       %s\n", uri.Scheme)

	path, err := backend.NewDelegate(opts.BackendDir, logger).Locate(uri.Scheme)
	if err != nil {
		return fmt.Errorf("locate backend: %w", err)
	}
	fmt.Fprintf(out, "Backend:      %s\n", path)

	if opts.File != "" {
		info, err := os.Stat(opts.File)
		if err != nil {
			return fmt.Errorf("sample file: %w", err)
		}
		mimeType, err := detectMIMEType(opts.File)
		if err != nil {
			return fmt.Errorf("sample file: %w", err)
		}
		fmt.Fprintf(out, "Sample file:  %s (%s, %s)\n", opts.File, mimeType, formatBytes(info.Size()))
	}

	client := approval.NewClient(opts.Endpoint,
		approval.WithToken(opts.Token),
		approval.WithTimeout(opts.Timeout),
		approval.WithLogger(logger),
	)
	if !client.Enabled() {
		fmt.Fprintln(out, "Approval:     pass-through (no endpoint configured)")
		return nil
	}

	requestID := uuid.NewString()
	start := time.Now()
	decision, err := client.Decide(ctx, requestID, schema.ApprovalRequest{
		JobID:   "check-" + requestID[:8],
		User:    opts.User,
		Title:   "printmanager-check",
		Printer: opts.Printer,
		Copies:  "1",
	})
	fmt.Fprintf(out, "Approval:     %s from %s in %v\n", decision, client.Endpoint(), time.Since(start).Round(time.Millisecond))

	var denied *approval.DeniedError
	switch {
	case errors.As(err, &denied):
		// A denial still proves the service is reachable and answering.
		fmt.Fprintf(out, "              status %d: %s\n", denied.StatusCode, strings.TrimSpace(denied.Body))
		return nil
	case err != nil:
		return fmt.Errorf("approval: %w", err)
	}
	return nil
}

// detectMIMEType sniffs the first 512 bytes of path.
func detectMIMEType(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 && err != io.EOF {
		return "", err
	}

	switch {
	case n >= 4 && string(buffer[:4]) == "%PDF":
		return "application/pdf", nil
	case n >= 2 && string(buffer[:2]) == "%!":
		return "application/postscript", nil
	}
	return http.DetectContentType(buffer[:n]), nil
}

// formatBytes formats bytes into human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
