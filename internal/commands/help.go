package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// HelpCmd implements the help command.
type HelpCmd struct {
	Registry *Registry // Needs access to the registry to list commands
}

func (c *HelpCmd) Name() string        { return "help" }
func (c *HelpCmd) Aliases() []string   { return []string{"--help", "-h"} }
func (c *HelpCmd) Description() string { return "Shows available commands and descriptions." }
func (c *HelpCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	fmt.Fprintln(output, "Available commands:")
	for _, cmd := range c.Registry.GetAll() {
		line := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(output, "%s: %s\n", line, cmd.Description())
	}
	fmt.Fprintln(output, "Anything else is sent to the assistant as a request.")
	return nil
}
