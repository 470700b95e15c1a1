package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/executor"
	"github.com/rafabd1/ceres/internal/security"
)

// NotifyCmd posts a macOS notification with the given text.
type NotifyCmd struct {
	Script executor.Runner
}

func (c *NotifyCmd) Name() string        { return "notify" }
func (c *NotifyCmd) Aliases() []string   { return []string{"show-notification"} }
func (c *NotifyCmd) Description() string { return "Shows a notification: /notify <text>." }
func (c *NotifyCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("nothing to show, usage: /notify <text>")
	}
	script := fmt.Sprintf(`display notification %s with title "Ceres"`, security.EscapeAppleScriptString(text))
	out := c.Script.Run(ctx, script)
	if !out.OK() {
		return errors.New(out.Message)
	}
	fmt.Fprintln(output, "Notification shown")
	return nil
}
