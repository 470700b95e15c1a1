// Package events holds the tea.Msg types exchanged between chat controllers and the TUI.
package events

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rafabd1/ceres/internal/task"
)

// FrameMsg carries one response line, as the server would send it.
type FrameMsg struct {
	Text string
}

// TaskTuiMsg forwards a task manager event to the TUI.
type TaskTuiMsg struct {
	Event task.TaskEvent
}

// DisconnectedMsg reports that the connection to the server is gone.
type DisconnectedMsg struct {
	Err error
}

// ExitTUIMsg asks the TUI to quit.
type ExitTUIMsg struct{}

var (
	_ tea.Msg = FrameMsg{}
	_ tea.Msg = TaskTuiMsg{}
	_ tea.Msg = DisconnectedMsg{}
	_ tea.Msg = ExitTUIMsg{}
)
