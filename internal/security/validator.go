// Package security screens shell commands against a deny-list of dangerous operations.
//
// This is a deny-list, not an allow-list: anything that does not match a known
// dangerous shape passes. Only the shell path is screened here; AppleScript is
// checked by normalize.LooksPlausible alone, which is a deliberate scope limit.
package security

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/patterns"
)

// ErrRejected is the kind shared by every RejectionError.
var ErrRejected = errors.New("command rejected for safety")

// RejectionError reports why a command was blocked.
type RejectionError struct {
	Command string
	Reason  string
}

func (e *RejectionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Command)
}

func (e *RejectionError) Unwrap() error { return ErrRejected }

// Validator holds the compiled deny-list. It is immutable after construction
// and safe for concurrent use.
type Validator struct {
	dangerous   *patterns.RegexSet
	systemPaths *patterns.PhraseSet
	verbs       *patterns.WordSet
}

// NewValidator compiles the security section of cfg.
func NewValidator(cfg *config.Config) *Validator {
	rules := make([]patterns.Rule, 0, len(cfg.Security.DangerousPatterns))
	for _, p := range cfg.Security.DangerousPatterns {
		rules = append(rules, patterns.Rule{Pattern: p.Pattern, Description: p.Description})
	}
	return &Validator{
		dangerous:   patterns.NewRegexSet(rules),
		systemPaths: patterns.NewPhraseSet(cfg.Security.SystemPaths),
		verbs:       patterns.NewWordSet(cfg.Security.DestructiveVerbs),
	}
}

// Validate returns a *RejectionError when command matches a dangerous pattern,
// or touches a sensitive system path together with a destructive verb.
func (v *Validator) Validate(command string) error {
	if m, ok := v.dangerous.Match(command); ok {
		return &RejectionError{
			Command: command,
			Reason:  "Potentially dangerous command detected (" + m.Description + ")",
		}
	}

	if path, ok := v.systemPaths.Match(command); ok {
		if verb, ok := v.verbs.Match(command); ok {
			return &RejectionError{
				Command: command,
				Reason:  fmt.Sprintf("Attempt to modify system files detected (%s on %s)", strings.ToLower(verb.Pattern), path.Pattern),
			}
		}
	}
	return nil
}

// IsRejection reports whether err came from Validate.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}
