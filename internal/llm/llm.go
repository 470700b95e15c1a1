// Package llm turns prompts into command text using a remote generative model.
package llm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyPrompt is returned before any network call when the prompt is blank.
	ErrEmptyPrompt = errors.New("empty prompt provided")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from AI service")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendError wraps a transport or API failure of the generative service.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("AI service %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendError reports whether err is a *BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// ModelInfo describes the configured backend.
type ModelInfo struct {
	ModelName        string `json:"model_name"`
	Provider         string `json:"provider"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Connected        bool   `json:"connection_status"`
}
