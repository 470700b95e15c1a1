package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Execution.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Execution.Timeout)
	}
	if cfg.LLM.ModelName != "gemini-2.0-flash" {
		t.Errorf("ModelName = %q, want gemini-2.0-flash", cfg.LLM.ModelName)
	}
	if cfg.Execution.AppleScriptInterpreter != "osascript" {
		t.Errorf("AppleScriptInterpreter = %q, want osascript", cfg.Execution.AppleScriptInterpreter)
	}
	if len(cfg.Security.DangerousPatterns) == 0 {
		t.Error("expected default dangerous patterns")
	}
	if cfg.Apps["chrome"] != "com.google.Chrome" {
		t.Errorf("Apps[chrome] = %q, want com.google.Chrome", cfg.Apps["chrome"])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  api_key: abc123
  model_name: gemini-1.5-pro
execution:
  timeout: 5s
  shell: /bin/bash
security:
  destructive_verbs: [rm]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.APIKey != "abc123" {
		t.Errorf("APIKey = %q, want abc123", cfg.LLM.APIKey)
	}
	if cfg.LLM.ModelName != "gemini-1.5-pro" {
		t.Errorf("ModelName = %q, want gemini-1.5-pro", cfg.LLM.ModelName)
	}
	if cfg.Execution.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Execution.Timeout)
	}
	if cfg.Execution.Shell != "/bin/bash" {
		t.Errorf("Shell = %q, want /bin/bash", cfg.Execution.Shell)
	}
	if len(cfg.Security.DestructiveVerbs) != 1 || cfg.Security.DestructiveVerbs[0] != "rm" {
		t.Errorf("DestructiveVerbs = %v, want [rm]", cfg.Security.DestructiveVerbs)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != "127.0.0.1:8000" {
		t.Errorf("Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  model_name: x\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	key, err := cfg.APIKey()
	if err != nil {
		t.Fatalf("APIKey() error = %v", err)
	}
	if key != "from-env" {
		t.Errorf("APIKey() = %q, want from-env", key)
	}
}

func TestAPIKeyMissing(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = ""

	_, err := cfg.APIKey()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("APIKey() error = %v, want ErrMissingAPIKey", err)
	}

	cfg.LLM.UseADC = true
	if _, err := cfg.APIKey(); err != nil {
		t.Errorf("APIKey() with ADC error = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.Execution.Timeout = -time.Second }},
		{"empty interpreter", func(c *Config) { c.Execution.AppleScriptInterpreter = "" }},
		{"empty shell", func(c *Config) { c.Execution.Shell = "" }},
		{"unknown voice backend", func(c *Config) { c.Voice.Backend = "siri" }},
		{"zero sample rate", func(c *Config) { c.Voice.SampleRate = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.LLM.APIKey = "k"
	cfg.Execution.Timeout = 12 * time.Second

	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Execution.Timeout != 12*time.Second {
		t.Errorf("Timeout = %s, want 12s", loaded.Execution.Timeout)
	}
	if len(loaded.Security.DangerousPatterns) != len(cfg.Security.DangerousPatterns) {
		t.Errorf("DangerousPatterns len = %d, want %d", len(loaded.Security.DangerousPatterns), len(cfg.Security.DangerousPatterns))
	}
}

func TestHomeDirOverride(t *testing.T) {
	cfg := Default()
	cfg.Execution.WorkDir = "/tmp/work"
	if got := cfg.HomeDir(); got != "/tmp/work" {
		t.Errorf("HomeDir() = %q, want /tmp/work", got)
	}
}
