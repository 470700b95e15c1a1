// Package agent turns requests into executed commands: special commands first,
// then prompt, generation and the dispatch pipeline.
package agent

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/classify"
	"github.com/rafabd1/ceres/internal/commands"
	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/executor"
	"github.com/rafabd1/ceres/internal/llm"
	"github.com/rafabd1/ceres/internal/security"
	"github.com/rafabd1/ceres/internal/task"
	"github.com/rafabd1/ceres/internal/types"
	"github.com/rafabd1/ceres/pkg/utils"
)

// Response texts for requests that never reach an executor.
const (
	MsgEmptyRequest     = "Command Empty !"
	MsgBackendFailure   = "AI service error"
	MsgNoCommand        = "No Command Generated from AI"
	MsgInvalidCommand   = "Invalid command generated"
	MsgUnexpectedError  = "Unexpected Error while Executing"
	MsgExecutionFailure = "Execution Failed"
)

// Agent owns the dispatch pipeline and the collaborators it needs.
type Agent struct {
	cfg         *config.Config
	generator   llm.Generator // nil when running without a model
	cmdRegistry *commands.Registry
	classifier  *classify.Classifier
	shell       executor.Runner
	script      executor.Runner
	execManager task.ExecutionManager

	contextLogger *log.Logger
	logFile       io.Closer
}

// Option customizes an Agent.
type Option func(*Agent)

// WithRunners replaces the shell and AppleScript executors.
func WithRunners(shell, script executor.Runner) Option {
	return func(a *Agent) {
		a.shell = shell
		a.script = script
	}
}

// WithContextLogger sends the dispatch trail to l instead of the context log file.
func WithContextLogger(l *log.Logger) Option {
	return func(a *Agent) { a.contextLogger = l }
}

// WithExecutionManager replaces the task manager.
func WithExecutionManager(m task.ExecutionManager) Option {
	return func(a *Agent) { a.execManager = m }
}

// New creates an agent. gen may be nil, in which case only special commands
// and Dispatch work.
func New(cfg *config.Config, gen llm.Generator, registry *commands.Registry, opts ...Option) *Agent {
	a := &Agent{
		cfg:         cfg,
		generator:   gen,
		cmdRegistry: registry,
		classifier:  classify.NewClassifier(cfg),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.shell == nil {
		a.shell = executor.NewShellExecutor(cfg, security.NewValidator(cfg))
	}
	if a.script == nil {
		a.script = executor.NewAppleScriptExecutor(cfg)
	}
	if a.execManager == nil {
		a.execManager = task.NewManager(0)
	}
	if a.cmdRegistry == nil {
		a.cmdRegistry = commands.NewRegistry()
	}
	if a.contextLogger == nil {
		a.contextLogger, a.logFile = openContextLogger(cfg.Log.ContextFile)
	}
	return a
}

func openContextLogger(path string) (*log.Logger, io.Closer) {
	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[WARN] [Agent] Could not open context log file %s: %v", path, err)
		log.Println("[WARN] [Agent] Context logging falling back to standard error.")
		return log.New(os.Stderr, "CONTEXT_ERR: ", log.LstdFlags|log.Lmsgprefix), nil
	}
	log.Printf("[DEBUG] [Agent] Context logging initialized to file: %s", path)
	return log.New(logFile, "CONTEXT: ", log.LstdFlags|log.Lmsgprefix), logFile
}

// GetExecutionManager returns the execution manager instance.
// Necessary to inject dependency into internal commands.
func (a *Agent) GetExecutionManager() task.ExecutionManager {
	return a.execManager
}

// ShellRunner returns the validated shell executor.
func (a *Agent) ShellRunner() executor.Runner {
	return a.shell
}

// ScriptRunner returns the AppleScript executor.
func (a *Agent) ScriptRunner() executor.Runner {
	return a.script
}

// Stop cancels in-flight requests and closes the context log.
func (a *Agent) Stop() {
	log.Println("[DEBUG] [Agent] Stop requested.")
	if err := a.execManager.Stop(); err != nil {
		log.Printf("[ERROR] [Agent] Error stopping execution manager: %v", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// Handle runs Execute as a tracked task. source is "text" or "voice".
func (a *Agent) Handle(ctx context.Context, source, request string) (types.Envelope, error) {
	t, err := a.execManager.Run(ctx, source, request, func(ctx context.Context) (types.Envelope, error) {
		env := a.Execute(ctx, request)
		return env, ctx.Err()
	})
	if err != nil {
		return types.Success(MsgExecutionFailure), err
	}
	return t.Result, t.Error
}

// Execute answers one request with exactly one envelope. It never panics.
func (a *Agent) Execute(ctx context.Context, request string) (env types.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] [Agent] Recovered from panic: %v\n%s", r, debug.Stack())
			a.contextLogger.Printf("[Error] Panic while executing %q: %v", utils.Truncate(request, 200), r)
			env = types.Success(MsgUnexpectedError)
		}
	}()

	request = utils.SanitizeUTF8(request)
	if strings.TrimSpace(request) == "" {
		return types.Success(MsgEmptyRequest)
	}

	if cmd, args, ok := a.cmdRegistry.Lookup(request); ok {
		a.contextLogger.Printf("[Action] Executing Special Command: %s %v", cmd.Name(), args)
		return a.runCommand(ctx, cmd, args)
	}

	if a.generator == nil {
		return types.Error("Configuration error", config.ErrMissingAPIKey)
	}

	raw, err := a.generator.Generate(ctx, llm.CommandPrompt(request, a.cfg.Apps))
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		return types.Success(MsgNoCommand)
	case llm.IsBackendError(err):
		log.Printf("[ERROR] [Agent] Generation failed for %q: %v", utils.Truncate(request, 80), err)
		a.contextLogger.Printf("[Error] LLM Call Failed: %v", err)
		return types.Success(MsgBackendFailure)
	case err != nil:
		log.Printf("[WARN] [Agent] Generation aborted for %q: %v", utils.Truncate(request, 80), err)
		a.contextLogger.Printf("[Error] LLM Call Aborted: %v", err)
		return types.Success(MsgUnexpectedError)
	case strings.TrimSpace(raw) == "":
		return types.Success(MsgNoCommand)
	}

	return a.Dispatch(ctx, raw, request).Envelope
}

// runCommand executes a special command and turns its output into an envelope.
func (a *Agent) runCommand(ctx context.Context, cmd commands.Command, args []string) types.Envelope {
	var out bytes.Buffer
	if err := cmd.Execute(ctx, args, &out); err != nil {
		a.contextLogger.Printf("[Error] Special command %s failed: %v. Output: %q", cmd.Name(), err, utils.Truncate(out.String(), 200))
		if errors.Is(err, config.ErrMissingAPIKey) {
			return types.Error("Configuration error", err)
		}
		return types.Error("Command failed", err)
	}
	env := types.Lines(utils.NonBlankLines(out.String())...)
	if len(env.Messages) == 0 {
		return types.Success("Done")
	}
	return env
}
