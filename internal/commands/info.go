package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/llm"
)

// InfoCmd reports the backend and execution settings.
type InfoCmd struct {
	Config *config.Config
	// ModelInfo queries the backend; nil when running without one.
	ModelInfo func(ctx context.Context) llm.ModelInfo
}

func (c *InfoCmd) Name() string        { return "info" }
func (c *InfoCmd) Aliases() []string   { return []string{"--info", "system-info"} }
func (c *InfoCmd) Description() string { return "Shows model, connection and execution settings." }
func (c *InfoCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	if c.ModelInfo != nil {
		info := c.ModelInfo(ctx)
		fmt.Fprintf(output, "Model: %s (%s)\n", info.ModelName, info.Provider)
		fmt.Fprintf(output, "API key configured: %s\n", yesNo(info.APIKeyConfigured))
		fmt.Fprintf(output, "Connection: %s\n", okFailed(info.Connected))
	} else {
		fmt.Fprintf(output, "Model: %s (not connected)\n", c.Config.LLM.ModelName)
	}
	fmt.Fprintf(output, "Timeout: %s\n", c.Config.Execution.Timeout)
	fmt.Fprintf(output, "AppleScript interpreter: %s\n", c.Config.Execution.AppleScriptInterpreter)
	fmt.Fprintf(output, "Shell: %s\n", c.Config.Execution.Shell)
	fmt.Fprintf(output, "Voice backend: %s\n", c.Config.Voice.Backend)
	host, _ := os.Hostname()
	fmt.Fprintf(output, "Platform: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, host)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func okFailed(b bool) string {
	if b {
		return "ok"
	}
	return "failed"
}
