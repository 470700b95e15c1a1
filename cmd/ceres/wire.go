package main

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/agent"
	"github.com/rafabd1/ceres/internal/commands"
	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/llm"
	"github.com/rafabd1/ceres/internal/task"
	"github.com/rafabd1/ceres/pkg/utils"
)

// app is everything a subcommand needs, built once from the config.
type app struct {
	cfg    *config.Config
	agent  *agent.Agent
	gemini *llm.Gemini // nil without credentials
}

func (a *app) Close() {
	a.agent.Stop()
	if a.gemini != nil {
		a.gemini.Close()
	}
}

// newApp loads the config and wires the agent. A missing API key is not fatal:
// special commands and dispatch still work without the model.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	log.SetOutput(utils.NewLogFilter(cfg.Log.Level, log.Writer()))

	var gen llm.Generator
	gemini, err := llm.NewGemini(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrMissingAPIKey):
		log.Printf("[WARN] %v", err)
	case err != nil:
		return nil, errors.Wrap(err, "failed to create Gemini client")
	default:
		gen = gemini
	}

	registry := commands.NewRegistry()
	a := agent.New(cfg, gen, registry)

	selfTest := &commands.SelfTestCmd{Generator: gen, Dispatch: a.DispatchEnvelope}
	info := &commands.InfoCmd{Config: cfg}
	if gemini != nil {
		info.ModelInfo = gemini.ModelInfo
	}
	cmds := []commands.Command{
		&commands.HelpCmd{Registry: registry},
		selfTest,
		info,
		&commands.ScreenshotCmd{Shell: a.ShellRunner()},
		&commands.NotifyCmd{Script: a.ScriptRunner()},
		&commands.TaskCmd{ExecManagerProvider: func() task.ExecutionManager { return a.GetExecutionManager() }},
	}
	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			a.Stop()
			return nil, errors.Wrapf(err, "failed to register command %s", cmd.Name())
		}
	}

	return &app{cfg: cfg, agent: a, gemini: gemini}, nil
}
