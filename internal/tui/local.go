package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rafabd1/ceres/internal/server"
	"github.com/rafabd1/ceres/pkg/events"
)

// LocalController answers requests in process, emitting the same frames the
// server would.
type LocalController struct {
	handler server.Handler
	ctx     context.Context
	cancel  context.CancelFunc
	send    func(tea.Msg)
	stop    func()
}

// NewLocalController wraps h. onStop runs once when the user quits.
func NewLocalController(h server.Handler, onStop func()) *LocalController {
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalController{handler: h, ctx: ctx, cancel: cancel, stop: onStop}
}

func (c *LocalController) SetProgram(p *tea.Program) {
	c.send = p.Send
}

func (c *LocalController) ProcessUserInput(input string) {
	c.send(events.FrameMsg{Text: server.FrameReceived})
	c.send(events.FrameMsg{Text: server.FrameExecuting})
	env, _ := c.handler.Handle(c.ctx, "text", input)
	if c.ctx.Err() != nil {
		return
	}
	for _, text := range env.Texts() {
		if strings.TrimSpace(text) != "" {
			c.send(events.FrameMsg{Text: text})
		}
	}
	c.send(events.FrameMsg{Text: server.FrameFinished})
}

func (c *LocalController) Stop() {
	c.cancel()
	if c.stop != nil {
		c.stop()
	}
}
