package agent

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/rafabd1/ceres/internal/executor"
	"github.com/rafabd1/ceres/internal/normalize"
	"github.com/rafabd1/ceres/internal/types"
	"github.com/rafabd1/ceres/pkg/utils"
)

// Stage is a step of the dispatch pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageNormalized Stage = "normalized"
	StageClassified Stage = "classified"
	StageEnhanced   Stage = "enhanced"
	StageValidated  Stage = "validated"
	StageExecuted   Stage = "executed"
	StageReported   Stage = "reported"
)

// Result records one pass through the pipeline.
type Result struct {
	ID       string
	Stages   []Stage
	Command  string // the command as handed to the executor
	Kind     types.CommandType
	Outcome  executor.Outcome
	Envelope types.Envelope
}

func (r *Result) enter(s Stage) { r.Stages = append(r.Stages, s) }

// Reached reports whether the pipeline passed through s.
func (r Result) Reached(s Stage) bool {
	for _, st := range r.Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Dispatch runs raw model output through normalize, classify, enhance,
// validate and execute. There are no retries; every failure goes straight
// to Reported with a single envelope.
func (a *Agent) Dispatch(ctx context.Context, raw, request string) (res Result) {
	res.ID = uuid.New().String()
	a.contextLogger.Printf("--- Dispatch Start (%s) ---", res.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] [Agent] Recovered from panic in dispatch %s: %v\n%s", res.ID, r, debug.Stack())
			a.contextLogger.Printf("[Error] Panic: %v", r)
			res.Envelope = types.Success(MsgUnexpectedError)
		}
		res.enter(StageReported)
		a.contextLogger.Printf("[Reported] %q", utils.Truncate(res.Envelope.First(), 300))
		a.contextLogger.Printf("--- Dispatch End (%s) ---", res.ID)
	}()

	res.enter(StageReceived)
	a.contextLogger.Printf("[Received] Request: %q Raw: %q", utils.Truncate(request, 200), utils.Truncate(raw, 500))

	command := normalize.Sanitize(raw)
	if command == "" {
		a.contextLogger.Printf("[Normalized] Nothing executable left")
		res.Envelope = types.Success(MsgInvalidCommand)
		return res
	}
	res.enter(StageNormalized)
	a.contextLogger.Printf("[Normalized] %q", utils.Truncate(command, 500))

	kind, why := a.classifier.Explain(command, request)
	res.Kind = kind
	res.enter(StageClassified)
	a.contextLogger.Printf("[Classified] %s (%s)", kind, why)

	runner := a.shell
	if kind == types.AppleScript {
		runner = a.script
		command = normalize.EnhanceForGUI(command, request)
		res.enter(StageEnhanced)
		a.contextLogger.Printf("[Enhanced] %q", utils.Truncate(command, 500))
	}
	res.Command = command

	if kind == types.Shell {
		// Runners without Check validate inside Run.
		if checker, ok := runner.(executor.Checker); ok {
			if err := checker.Check(command); err != nil {
				a.contextLogger.Printf("[Rejected] %v", err)
				res.Outcome = executor.Rejected(kind, err)
				res.Envelope = res.Outcome.Envelope()
				return res
			}
		}
		res.enter(StageValidated)
		a.contextLogger.Printf("[Validated] %q", utils.Truncate(command, 200))
	}

	res.Outcome = runner.Run(ctx, command)
	if spawned(res.Outcome.Status) {
		res.enter(StageExecuted)
	}
	a.contextLogger.Printf("[Executed] status=%s exit=%d duration=%s", res.Outcome.Status, res.Outcome.ExitCode, res.Outcome.Duration)
	if res.Outcome.Stderr != "" {
		a.contextLogger.Printf("[Stderr] %q", utils.Truncate(res.Outcome.Stderr, 500))
	}
	if !res.Outcome.OK() {
		log.Printf("[DEBUG] [Agent] %s command finished with %s: %s", kind, res.Outcome.Status, utils.Truncate(res.Outcome.Message, 120))
	}

	res.Envelope = res.Outcome.Envelope()
	return res
}

// DispatchEnvelope is Dispatch reduced to its envelope.
func (a *Agent) DispatchEnvelope(ctx context.Context, raw, request string) types.Envelope {
	return a.Dispatch(ctx, raw, request).Envelope
}

// spawned reports whether the executor got past its own checks and tried to run the command.
func spawned(s executor.Status) bool {
	switch s {
	case executor.StatusRejected, executor.StatusInvalidSyntax:
		return false
	}
	return true
}
