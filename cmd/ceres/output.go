package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rafabd1/ceres/internal/tui"
	"github.com/rafabd1/ceres/internal/types"
)

// printer writes reply lines, colouring failures when stdout is a terminal.
type printer struct {
	w       io.Writer
	styled  bool
	failure lipgloss.Style
	header  lipgloss.Style
}

func newPrinter() *printer {
	return &printer{
		w:       os.Stdout,
		styled:  term.IsTerminal(int(os.Stdout.Fd())),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		header:  lipgloss.NewStyle().Faint(true),
	}
}

func (p *printer) Header(text string) {
	if p.styled {
		text = p.header.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

func (p *printer) Line(text string) {
	if p.styled && tui.IsFailure(text) {
		text = p.failure.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// Envelope prints every message and reports whether any of them was a failure.
func (p *printer) Envelope(env types.Envelope) (failed bool) {
	for _, text := range env.Texts() {
		p.Line(text)
		failed = failed || tui.IsFailure(text)
	}
	return failed
}
