// Package tui is the interactive chat client for the dispatcher.
package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rafabd1/ceres/internal/task"
	"github.com/rafabd1/ceres/pkg/events"
)

// AgentController is what the TUI needs from whoever answers requests.
type AgentController interface {
	// ProcessUserInput submits one line; replies arrive later as events.FrameMsg.
	ProcessUserInput(input string)
	Stop()
	SetProgram(p *tea.Program)
}

// Model is the TUI state.
type Model struct {
	viewport    viewport.Model
	textarea    textarea.Model
	messages    []string
	agent       AgentController
	title       string
	senderStyle lipgloss.Style
	agentStyle  lipgloss.Style
	errorStyle  lipgloss.Style
	statusStyle lipgloss.Style
	taskStyle   lipgloss.Style
	ready       bool
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles key presses, resizes and controller messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		vpCmd tea.Cmd
		taCmd tea.Cmd
	)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.textarea, taCmd = m.textarea.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.agent.Stop()
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input != "" {
				m.appendLine(m.senderStyle.Render("You: ") + input)
				go m.agent.ProcessUserInput(input)
				m.textarea.Reset()
			}
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(strings.Join(m.messages, "\n"))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}
		m.textarea.SetWidth(msg.Width)

	case events.FrameMsg:
		m.appendLine(m.styleFor(msg.Text).Render(msg.Text))
		return m, nil

	case events.TaskTuiMsg:
		m.appendLine(m.taskStyle.Render(formatTaskEvent(msg.Event)))
		return m, nil

	case events.DisconnectedMsg:
		text := "Disconnected from server."
		if msg.Err != nil {
			text = fmt.Sprintf("Disconnected from server: %v", msg.Err)
		}
		m.appendLine(m.errorStyle.Render(text))
		return m, nil

	case events.ExitTUIMsg:
		return m, tea.Quit
	}

	return m, tea.Batch(vpCmd, taCmd)
}

func (m *Model) appendLine(line string) {
	m.messages = append(m.messages, line)
	m.viewport.SetContent(strings.Join(m.messages, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) styleFor(text string) lipgloss.Style {
	switch classifyFrame(text) {
	case frameStatus:
		return m.statusStyle
	case frameFailure:
		return m.errorStyle
	default:
		return m.agentStyle
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m *Model) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.title)
	line := strings.Repeat("─", m.viewport.Width)
	return lipgloss.JoinVertical(lipgloss.Left, title, line)
}

func (m *Model) footerView() string {
	return m.textarea.View()
}

// New initializes a TUI model. title is shown in the header.
func New(agent AgentController, title string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask for something or type help..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &Model{
		textarea:    ta,
		messages:    []string{"Welcome to Ceres! Type help for commands."},
		agent:       agent,
		title:       title,
		senderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		agentStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		statusStyle: lipgloss.NewStyle().Faint(true),
		taskStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// StartTUI runs the program until the user quits. Task events are shown when
// taskManager is non-nil.
func StartTUI(agent AgentController, taskManager task.ExecutionManager, title string) error {
	p := tea.NewProgram(New(agent, title), tea.WithAltScreen(), tea.WithMouseCellMotion())
	agent.SetProgram(p)

	if taskManager != nil {
		go func() {
			for event := range taskManager.Events() {
				p.Send(events.TaskTuiMsg{Event: event})
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		log.Printf("[ERROR] [TUI] Program exited with error: %v", err)
		return err
	}
	return nil
}

func formatTaskEvent(event task.TaskEvent) string {
	id := shortID(event.TaskID)
	switch event.EventType {
	case "started":
		return fmt.Sprintf("[Task Started: %s]", id)
	case "completed":
		if event.Error != nil {
			return fmt.Sprintf("[Task %s: %s (%v)]", event.Status, id, event.Error)
		}
		return fmt.Sprintf("[Task %s: %s]", event.Status, id)
	default:
		return fmt.Sprintf("[Task Event: %s (%s)]", id, event.EventType)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
