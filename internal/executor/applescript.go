package executor

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/normalize"
	"github.com/rafabd1/ceres/internal/types"
)

// AppleScriptExecutor writes each script to a temporary file and runs the
// configured interpreter on it. Scripts are only checked for plausible syntax;
// the shell deny-list does not apply to them.
type AppleScriptExecutor struct {
	interpreter string
	tempDir     string
	timeout     time.Duration
	dir         string
}

// NewAppleScriptExecutor builds an AppleScriptExecutor from cfg.
func NewAppleScriptExecutor(cfg *config.Config) *AppleScriptExecutor {
	return &AppleScriptExecutor{
		interpreter: cfg.Execution.AppleScriptInterpreter,
		tempDir:     cfg.Execution.TempDir,
		timeout:     cfg.Execution.Timeout,
		dir:         cfg.HomeDir(),
	}
}

// Run executes script. The temporary file is removed on every path out.
func (e *AppleScriptExecutor) Run(ctx context.Context, script string) Outcome {
	out := Outcome{Kind: types.AppleScript}

	if strings.TrimSpace(script) == "" {
		out.Status = StatusInvalidSyntax
		out.Message = "Empty AppleScript provided"
		return out
	}
	if !normalize.LooksPlausible(script) {
		out.Status = StatusInvalidSyntax
		out.Message = "Invalid AppleScript syntax"
		return out
	}

	path, err := writeScript(e.tempDir, script)
	if err != nil {
		out.Status = StatusError
		out.Err = err
		out.Message = "AppleScript execution failed: " + err.Error()
		return out
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] [Executor] Could not remove temp script %s: %v", path, err)
		}
	}()

	res := runProcess(ctx, e.timeout, e.dir, []string{e.interpreter, path})
	out.Status = res.status
	out.ExitCode = res.exitCode
	out.Stdout = res.stdout
	out.Stderr = res.stderr
	out.Err = res.err
	out.Duration = res.duration

	switch res.status {
	case StatusOK:
		out.Message = res.stdout
		if out.Message == "" {
			out.Message = "AppleScript executed successfully"
		}
	case StatusFailed:
		out.Failure, out.Message = classifyScriptError(res.stderr)
	case StatusTimeout:
		out.Message = fmt.Sprintf("AppleScript timed out (%s limit)", e.timeout)
	case StatusNotFound:
		out.Message = "AppleScript interpreter not found: " + e.interpreter
	case StatusCancelled:
		out.Message = "AppleScript cancelled"
	default:
		out.Message = "AppleScript execution failed: " + errorText(res.err)
	}
	return out
}

func writeScript(dir, script string) (string, error) {
	f, err := os.CreateTemp(dir, "ceres-*.scpt")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp script")
	}
	path := f.Name()
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write temp script")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to close temp script")
	}
	return path, nil
}

// classifyScriptError maps interpreter stderr to a failure kind and message.
func classifyScriptError(stderr string) (ScriptFailure, string) {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "execution error"):
		return FailureExecution, "AppleScript Error: " + stderr
	case strings.Contains(lower, "application isn't running"), strings.Contains(lower, "application isn’t running"):
		return FailureAppNotRunning, "Target application is not running"
	case strings.Contains(lower, "can't get"), strings.Contains(lower, "can’t get"):
		return FailureElementAccess, "AppleScript couldn't access the requested element"
	default:
		return FailureGeneric, "Script failed: " + stderr
	}
}
