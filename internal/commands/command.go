// Package commands holds the special commands answered without the generative model.
package commands

import (
	"context"
	"io"
)

// Command defines the interface for special commands.
type Command interface {
	Name() string        // Returns the command name (e.g., "help")
	Aliases() []string   // Alternative spellings, e.g. "--help"
	Description() string // Returns a brief description
	// Executes the command, writing one response line per output line.
	Execute(ctx context.Context, args []string, output io.Writer) error
}
