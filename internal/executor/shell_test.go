package executor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/security"
	"github.com/rafabd1/ceres/internal/types"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Execution.WorkDir = t.TempDir()
	cfg.Execution.TempDir = t.TempDir()
	cfg.Execution.Timeout = 5 * time.Second
	return cfg
}

func newShell(cfg *config.Config) *ShellExecutor {
	return NewShellExecutor(cfg, security.NewValidator(cfg))
}

func TestUsesShell(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"ls -la", false},
		{`mkdir -p "/tmp/My Files"`, false},
		{"echo hi | wc -c", true},
		{"make && make install", true},
		{"a || b", true},
		{"a; b", true},
		{"echo hi > out.txt", true},
		{"wc -l < in.txt", true},
		{"echo `date`", true},
		{"echo $(date)", true},
		{"echo $HOME", false},
		{"echo ${X:-y}", true},
	}
	for _, tt := range tests {
		if got := usesShell(tt.command); got != tt.want {
			t.Errorf("usesShell(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestExpandCommand(t *testing.T) {
	t.Setenv("CERES_TEST_VAR", "value")

	tests := []struct {
		in, want string
	}{
		{"ls ~/Desktop", "ls /home/u/Desktop"},
		{"cd ~", "cd /home/u"},
		{`open "~/Documents"`, `open "/home/u/Documents"`},
		{"echo a~b", "echo a~b"},
		{"echo $CERES_TEST_VAR", "echo value"},
		{"echo ${CERES_TEST_VAR}/x", "echo value/x"},
		{"echo $CERES_SURELY_UNSET_VAR", "echo $CERES_SURELY_UNSET_VAR"},
		{"echo $(date)", "echo $(date)"},
		{"echo ${CERES_SURELY_UNSET_VAR}", "echo ${CERES_SURELY_UNSET_VAR}"},
		{"echo ${CERES_SURELY_UNSET_VAR:-fallback}", "echo ${CERES_SURELY_UNSET_VAR:-fallback}"},
		{"echo ${CERES_TEST_VAR:-x}", "echo ${CERES_TEST_VAR:-x}"},
		{"echo ${#CERES_TEST_VAR}", "echo ${#CERES_TEST_VAR}"},
		{"echo ${CERES_TEST_VAR", "echo ${CERES_TEST_VAR"},
		{"echo $CERES_TEST_VAR-$CERES_TEST_VAR", "echo value-value"},
	}
	for _, tt := range tests {
		if got := expandCommand(tt.in, "/home/u"); got != tt.want {
			t.Errorf("expandCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShellRunParameterDefault(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), "echo ${CERES_SURELY_UNSET_VAR:-fallback}")
	if out.Status != StatusOK || out.Message != "fallback" {
		t.Errorf("got %s %q, want ok fallback", out.Status, out.Message)
	}
}

func TestShellRunArgvMode(t *testing.T) {
	cfg := newTestConfig(t)
	out := newShell(cfg).Run(context.Background(), "ls -la")

	if out.Status != StatusOK {
		t.Fatalf("Status = %s, message %q", out.Status, out.Message)
	}
	if out.Kind != types.Shell {
		t.Errorf("Kind = %s, want shell", out.Kind)
	}
	if !strings.Contains(out.Message, ".") {
		t.Errorf("expected directory listing, got %q", out.Message)
	}
}

func TestShellRunPipeline(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), "echo hello | tr a-z A-Z")
	if out.Status != StatusOK || out.Message != "HELLO" {
		t.Errorf("got %s %q, want ok HELLO", out.Status, out.Message)
	}
}

func TestShellRunSilentSuccess(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), "true")
	if out.Message != "Command executed successfully" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestShellRunNonZero(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), "ls /ceres-definitely-missing-path")
	if out.Status != StatusFailed {
		t.Fatalf("Status = %s, want non-zero", out.Status)
	}
	if out.ExitCode == 0 {
		t.Error("ExitCode should be non-zero")
	}
	if !strings.HasPrefix(out.Message, "Command failed (exit ") {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestShellCheck(t *testing.T) {
	t.Setenv("CERES_TEST_TARGET", "/")
	sh := newShell(newTestConfig(t))

	if err := sh.Check("ls -la"); err != nil {
		t.Errorf("Check(ls -la) = %v", err)
	}
	if err := sh.Check("rm -rf $CERES_TEST_TARGET"); !security.IsRejection(err) {
		t.Errorf("Check after expansion = %v, want rejection", err)
	}
}

func TestShellRunMissingWorkDir(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Execution.WorkDir = filepath.Join(cfg.Execution.WorkDir, "gone")
	out := newShell(cfg).Run(context.Background(), "ls")
	if out.Status != StatusError {
		t.Fatalf("Status = %s, want exception (%q)", out.Status, out.Message)
	}
	if !strings.Contains(out.Message, "working directory") {
		t.Errorf("Message = %q, want working directory error", out.Message)
	}
}

func TestShellRunNotFound(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), "ceres-no-such-binary --flag")
	if out.Status != StatusNotFound {
		t.Fatalf("Status = %s, want not-found (%v)", out.Status, out.Err)
	}
	if out.Message != "Command not found: ceres-no-such-binary" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestShellRunRejected(t *testing.T) {
	cfg := newTestConfig(t)
	marker := cfg.Execution.WorkDir + "/marker"
	out := newShell(cfg).Run(context.Background(), "touch "+marker+"; sudo rm -rf /")

	if out.Status != StatusRejected {
		t.Fatalf("Status = %s, want security-rejected", out.Status)
	}
	if !strings.HasPrefix(out.Message, "Security: ") {
		t.Errorf("Message = %q", out.Message)
	}
	if !security.IsRejection(out.Err) {
		t.Errorf("Err = %v, want rejection", out.Err)
	}
	if fileExists(marker) {
		t.Error("rejected command must not spawn a process")
	}
}

func TestShellRunRejectsAfterExpansion(t *testing.T) {
	t.Setenv("CERES_TEST_PAYLOAD", "rm -rf /")
	out := newShell(newTestConfig(t)).Run(context.Background(), "sudo $CERES_TEST_PAYLOAD")
	if out.Status != StatusRejected {
		t.Errorf("Status = %s, want security-rejected", out.Status)
	}
}

func TestShellRunTimeoutKillsGroup(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Execution.Timeout = 200 * time.Millisecond

	start := time.Now()
	out := newShell(cfg).Run(context.Background(), "sleep 10 | cat")
	elapsed := time.Since(start)

	if out.Status != StatusTimeout {
		t.Fatalf("Status = %s, want timeout", out.Status)
	}
	if out.Message != "Command timed out (200ms limit)" {
		t.Errorf("Message = %q", out.Message)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %s, process group was not killed", elapsed)
	}
}

func TestShellRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	out := newShell(newTestConfig(t)).Run(ctx, "sleep 10")
	if out.Status != StatusCancelled {
		t.Errorf("Status = %s, want cancelled", out.Status)
	}
}

func TestShellRunUnbalancedQuotes(t *testing.T) {
	out := newShell(newTestConfig(t)).Run(context.Background(), `echo "unterminated`)
	if out.Status != StatusError {
		t.Errorf("Status = %s, want exception", out.Status)
	}
	if !strings.HasPrefix(out.Message, "Execution failed: ") {
		t.Errorf("Message = %q", out.Message)
	}
}
