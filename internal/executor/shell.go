package executor

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/security"
	"github.com/rafabd1/ceres/internal/types"
	"github.com/rafabd1/ceres/pkg/utils"
)

// shellMetachars send a command through the shell instead of direct exec.
// "${" covers parameter expansions left after expandCommand, such as ${X:-default}.
var shellMetachars = []string{"|", "&&", "||", ";", ">", "<", "`", "$(", "${"}

// homeRef matches a ~ that starts a word.
var homeRef = regexp.MustCompile(`(^|[\s="':])~(/|\s|$|["'])`)

// envRef matches $NAME and ${NAME}; other $ forms are not variable references.
var envRef = regexp.MustCompile(`\$(\w+|\{\w+\})`)

// ShellExecutor runs shell commands after they pass the safety validator.
type ShellExecutor struct {
	validator *security.Validator
	shell     string
	timeout   time.Duration
	dir       string
	home      string
}

// NewShellExecutor builds a ShellExecutor from the execution section of cfg.
func NewShellExecutor(cfg *config.Config, validator *security.Validator) *ShellExecutor {
	home, err := os.UserHomeDir()
	if err != nil {
		home = cfg.HomeDir()
	}
	return &ShellExecutor{
		validator: validator,
		shell:     cfg.Execution.Shell,
		timeout:   cfg.Execution.Timeout,
		dir:       cfg.HomeDir(),
		home:      home,
	}
}

var _ Checker = (*ShellExecutor)(nil)

// Check validates command as written and after expansion, returning the
// validator's rejection.
func (e *ShellExecutor) Check(command string) error {
	for _, candidate := range []string{command, expandCommand(command, e.home)} {
		if err := e.validator.Validate(candidate); err != nil {
			return err
		}
	}
	return nil
}

// Run expands, validates and executes command. Rejected commands never spawn a process.
func (e *ShellExecutor) Run(ctx context.Context, command string) Outcome {
	if err := e.Check(command); err != nil {
		log.Printf("[WARN] [Executor] Rejected shell command %q: %v", utils.Truncate(command, 120), err)
		return Rejected(types.Shell, err)
	}
	out := Outcome{Kind: types.Shell}
	expanded := expandCommand(command, e.home)

	var argv []string
	if usesShell(expanded) {
		argv = []string{e.shell, "-c", expanded}
	} else {
		words, err := shellquote.Split(expanded)
		if err != nil {
			out.Status = StatusError
			out.Err = errors.Wrap(err, "failed to split command")
			out.Message = "Execution failed: " + err.Error()
			return out
		}
		argv = words
	}

	res := runProcess(ctx, e.timeout, e.dir, argv)
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
			out.Message = "Command executed successfully"
		}
	case StatusFailed:
		out.Message = fmt.Sprintf("Command failed (exit %d): %s", res.exitCode, res.stderr)
	case StatusTimeout:
		out.Message = fmt.Sprintf("Command timed out (%s limit)", e.timeout)
	case StatusNotFound:
		out.Message = "Command not found: " + argv[0]
	case StatusCancelled:
		out.Message = "Command cancelled"
	default:
		out.Message = "Execution failed: " + errorText(res.err)
	}
	return out
}

// usesShell reports whether command needs shell syntax to run.
func usesShell(command string) bool {
	for _, m := range shellMetachars {
		if strings.Contains(command, m) {
			return true
		}
	}
	return false
}

// expandCommand replaces word-leading ~ with home and $VAR / ${VAR} with the
// environment. Unset variables and other parameter forms are left as written.
func expandCommand(command, home string) string {
	if home != "" {
		command = homeRef.ReplaceAllStringFunc(command, func(m string) string {
			return strings.Replace(m, "~", home, 1)
		})
	}
	return envRef.ReplaceAllStringFunc(command, func(ref string) string {
		name := strings.Trim(ref[1:], "{}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return ref
	})
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
