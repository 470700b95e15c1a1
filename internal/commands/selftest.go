package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/llm"
	"github.com/rafabd1/ceres/internal/types"
)

// DispatchFunc runs already generated command text through the pipeline.
type DispatchFunc func(ctx context.Context, raw, request string) types.Envelope

// SelfTestCmd asks the model for a harmless command and dispatches it.
type SelfTestCmd struct {
	Generator llm.Generator
	Dispatch  DispatchFunc
}

func (c *SelfTestCmd) Name() string        { return "test" }
func (c *SelfTestCmd) Aliases() []string   { return []string{"--test", "self-test"} }
func (c *SelfTestCmd) Description() string { return "Generates and runs a harmless command end to end." }
func (c *SelfTestCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	if c.Generator == nil {
		return errors.Wrap(config.ErrMissingAPIKey, "self-test needs the generative backend")
	}
	raw, err := c.Generator.Generate(ctx, llm.SelfTestPrompt())
	if err != nil {
		return errors.Wrap(err, "self-test generation failed")
	}
	env := c.Dispatch(ctx, raw, "self-test")
	for _, text := range env.Texts() {
		fmt.Fprintln(output, text)
	}
	return nil
}
