package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/executor"
	"github.com/rafabd1/ceres/internal/security"
)

// ScreenshotCmd captures the screen to the desktop through the shell executor,
// so it passes the same validation as any generated command.
type ScreenshotCmd struct {
	Shell executor.Runner
	Dir   string           // defaults to ~/Desktop
	Now   func() time.Time // defaults to time.Now
}

func (c *ScreenshotCmd) Name() string        { return "screenshot" }
func (c *ScreenshotCmd) Aliases() []string   { return []string{"take-screenshot", "capture"} }
func (c *ScreenshotCmd) Description() string {
	return "Saves a screenshot to the desktop, or to a folder: /screenshot <dir>."
}
func (c *ScreenshotCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	dir, now := c.Dir, time.Now
	if len(args) > 0 {
		dir = strings.Join(args, " ")
	}
	if dir == "" {
		dir = "~/Desktop"
	}
	if !security.IsSafePath(dir) {
		return errors.Errorf("refusing to write a screenshot under %s", dir)
	}
	if c.Now != nil {
		now = c.Now
	}
	path := fmt.Sprintf("%s/ceres-%s.png", dir, now().Format("20060102-150405"))
	if dir != "~/Desktop" {
		path = security.EscapeShellArgument(path)
	}

	out := c.Shell.Run(ctx, "screencapture -x "+path)
	if !out.OK() {
		return errors.New(out.Message)
	}
	fmt.Fprintf(output, "Screenshot saved to %s\n", path)
	return nil
}
