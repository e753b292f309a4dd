package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backendDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("backend stubs are shell scripts")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "socket"), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return dir
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckPassThrough(t *testing.T) {
	var out bytes.Buffer
	err := check(context.Background(), options{
		URI:        "printmanager:socket://10.0.0.5:9100",
		BackendDir: backendDir(t),
		Timeout:    time.Second,
	}, &out, quietLogger())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Scheme:       socket")
	assert.Contains(t, out.String(), "pass-through")
}

func TestCheckApprovalDeniedIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("not on the allow list"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := check(context.Background(), options{
		URI:        "printmanager:socket://h",
		Endpoint:   srv.URL,
		BackendDir: backendDir(t),
		Timeout:    time.Second,
		User:       "ops",
		Printer:    "lobby",
	}, &out, quietLogger())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "denied")
	assert.Contains(t, out.String(), "not on the allow list")
}

func TestCheckUnreachableEndpointFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := check(context.Background(), options{
		URI:        "printmanager:socket://h",
		Endpoint:   url,
		BackendDir: backendDir(t),
		Timeout:    time.Second,
	}, io.Discard, quietLogger())
	assert.Error(t, err)
}

func TestCheckMissingBackendFails(t *testing.T) {
	err := check(context.Background(), options{
		URI:        "printmanager:usb://Vendor/Model",
		BackendDir: backendDir(t),
	}, io.Discard, quietLogger())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "locate backend"))
}

func TestDetectMIMEType(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"doc.pdf": "%PDF-1.4\n",
		"doc.ps":  "%!PS-Adobe-3.0\n",
		"doc.txt": "hello printer\n",
	}
	want := map[string]string{
		"doc.pdf": "application/pdf",
		"doc.ps":  "application/postscript",
		"doc.txt": "text/plain; charset=utf-8",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		got, err := detectMIMEType(path)
		require.NoError(t, err)
		assert.Equal(t, want[name], got, name)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
