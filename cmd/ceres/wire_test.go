package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/types"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Log.ContextFile = filepath.Join(dir, "context.log")
	cfg.Execution.WorkDir = dir
	cfg.Execution.TempDir = dir
	path := filepath.Join(dir, "config.yaml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })

	a, err := newApp(context.Background())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewAppWithoutCredentials(t *testing.T) {
	a := newTestApp(t)
	if a.gemini != nil {
		t.Error("gemini client should be nil without a key")
	}

	env := a.agent.Execute(context.Background(), "help")
	got := strings.Join(env.Texts(), "\n")
	for _, name := range []string{"help", "test", "info", "screenshot", "notify", "tasks"} {
		if !strings.Contains(got, name) {
			t.Errorf("help output missing %q:\n%s", name, got)
		}
	}

	if first := a.agent.Execute(context.Background(), "list my files").First(); !strings.HasPrefix(first, "Configuration error") {
		t.Errorf("generation without a key = %q", first)
	}
	if first := a.agent.Execute(context.Background(), "self-test").First(); !strings.HasPrefix(first, "Configuration error") {
		t.Errorf("self-test without a key = %q", first)
	}
}

func TestNewAppDispatchesWithoutModel(t *testing.T) {
	a := newTestApp(t)
	res := a.agent.Dispatch(context.Background(), "echo wired", "")
	if res.Envelope.First() != "wired" {
		t.Errorf("Dispatch envelope = %q", res.Envelope.Texts())
	}
}

func TestPrinterEnvelope(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter()
	p.w, p.styled = &buf, false

	if p.Envelope(types.Lines("a.txt", "b.txt")) {
		t.Error("plain output reported as failure")
	}
	if !p.Envelope(types.Success("Security: Dangerous pattern detected")) {
		t.Error("security rejection not reported as failure")
	}
	want := "a.txt\nb.txt\nSecurity: Dangerous pattern detected\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	got, err := initConfig(path, false)
	if err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	if got != path {
		t.Errorf("initConfig() path = %q, want %q", got, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Execution.Timeout != config.Default().Execution.Timeout {
		t.Errorf("Timeout = %s, want default", cfg.Execution.Timeout)
	}

	if _, err := initConfig(path, false); err == nil {
		t.Error("second initConfig() without force should fail")
	}
	if _, err := initConfig(path, true); err != nil {
		t.Errorf("initConfig() with force error = %v", err)
	}
}
