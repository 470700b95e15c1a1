// Package executor runs normalized commands as child processes with a bounded
// lifetime and reports every result as an Outcome.
package executor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/security"
	"github.com/rafabd1/ceres/internal/types"
)

// Status is the result class of one execution.
type Status int

const (
	StatusOK Status = iota
	StatusFailed        // non-zero exit
	StatusTimeout       // killed after the configured timeout
	StatusNotFound      // the program does not exist
	StatusRejected      // blocked by the safety validator, nothing spawned
	StatusInvalidSyntax // AppleScript failed the plausibility check, nothing spawned
	StatusError         // anything else
	StatusCancelled     // the caller went away
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "non-zero"
	case StatusTimeout:
		return "timeout"
	case StatusNotFound:
		return "not-found"
	case StatusRejected:
		return "security-rejected"
	case StatusInvalidSyntax:
		return "invalid-syntax"
	case StatusError:
		return "exception"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ScriptFailure classifies the stderr of a failed AppleScript run.
type ScriptFailure int

const (
	FailureNone ScriptFailure = iota
	FailureExecution
	FailureAppNotRunning
	FailureElementAccess
	FailureGeneric
)

// Outcome is the result of one execution.
type Outcome struct {
	Kind     types.CommandType
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Message  string // the user-facing text
	Failure  ScriptFailure
	Err      error
	Duration time.Duration
}

// OK reports whether the command ran and exited zero.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Envelope renders the outcome as a single-message response.
func (o Outcome) Envelope() types.Envelope {
	return types.Success(o.Message)
}

// Runner executes a command of one kind.
type Runner interface {
	Run(ctx context.Context, command string) Outcome
}

// Checker is a Runner that can screen a command without running it.
type Checker interface {
	Check(command string) error
}

// Rejected is the outcome of a command the safety validator refused.
func Rejected(kind types.CommandType, err error) Outcome {
	out := Outcome{Kind: kind, Status: StatusRejected, Err: err, Message: "Security: " + err.Error()}
	var rej *security.RejectionError
	if errors.As(err, &rej) {
		out.Message = "Security: " + rej.Reason
	}
	return out
}
