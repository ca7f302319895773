// Package tui implements an interactive queue dashboard on Bubble Tea.
// It shows the queue in execution order with the current parallel plan
// summary, and supports adding and cancelling tasks without leaving the
// view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#1F2937"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// refreshMsg carries a fresh queue snapshot into the model.
type refreshMsg struct {
	list   queue.ListResult
	plan   queue.PlanResult
	status queue.StatusResult
	err    error
}

// actionMsg reports the outcome of an add or cancel.
type actionMsg struct {
	notice string
	err    error
}

// Model is the Bubble Tea model for the queue dashboard.
type Model struct {
	manager *queue.Manager

	list   queue.ListResult
	plan   queue.PlanResult
	status queue.StatusResult

	cursor int
	adding bool
	input  textinput.Model
	notice string
	err    error

	width  int
	height int
}

// NewModel creates the dashboard model.
func NewModel(manager *queue.Manager) Model {
	input := textinput.New()
	input.Placeholder = "task command..."
	input.CharLimit = 500
	input.Width = 60

	return Model{
		manager: manager,
		input:   input,
	}
}

// Init loads the first queue snapshot.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		var msg refreshMsg
		var err error
		if msg.list, err = m.manager.List(""); err != nil {
			msg.err = err
			return msg
		}
		if msg.plan, err = m.manager.ParallelPlan(); err != nil {
			msg.err = err
			return msg
		}
		if msg.status, err = m.manager.Status(); err != nil {
			msg.err = err
		}
		return msg
	}
}

func (m Model) addTask(command string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.manager.Add(command, task.Options{Priority: task.PriorityNormal})
		if err != nil {
			return actionMsg{err: err}
		}
		if result.ActionRequired {
			return actionMsg{notice: fmt.Sprintf("conflicts with %d task(s), not enqueued", len(result.Conflicts))}
		}
		return actionMsg{notice: "added " + result.Task.ID}
	}
}

func (m Model) cancelSelected() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.list.Tasks) {
		return nil
	}
	id := m.list.Tasks[m.cursor].ID
	return func() tea.Msg {
		if _, err := m.manager.Cancel(id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: "cancelled " + id}
	}
}

// Update handles messages and keyboard input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.list = msg.list
			m.plan = msg.plan
			m.status = msg.status
			if m.cursor >= len(m.list.Tasks) {
				m.cursor = len(m.list.Tasks) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		return m, nil

	case actionMsg:
		m.err = msg.err
		m.notice = msg.notice
		return m, m.refresh()

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		command := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		if command == "" {
			return m, nil
		}
		return m, m.addTask(command)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list.Tasks)-1 {
			m.cursor++
		}
	case "a":
		m.adding = true
		m.notice = ""
		m.input.Focus()
		return m, textinput.Blink
	case "c":
		return m, m.cancelSelected()
	case "r":
		m.notice = ""
		return m, m.refresh()
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("qflow"))
	fmt.Fprintf(&b, "  %s\n\n", mutedStyle.Render(fmt.Sprintf(
		"queued %d  running %d  today ✅ %d ❌ %d",
		m.status.Queued, m.status.Running, m.status.CompletedToday, m.status.FailedToday)))

	if len(m.list.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("  queue is empty") + "\n")
	}
	for i, t := range m.list.Tasks {
		command := t.Command
		if len(command) > 50 {
			command = command[:47] + "..."
		}
		line := fmt.Sprintf("  %-10s %-10s %-8s %s", t.ID, t.Status, t.Priority, command)
		if i == m.cursor {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	summary := m.plan.ParallelPlan
	if summary.TotalGroups > 0 {
		fmt.Fprintf(&b, "  plan: %d group(s), max parallelism %d, savings %.1f%%\n",
			summary.TotalGroups, summary.MaxParallelism, summary.TimeSavingsPercent)
		if summary.CycleWarning {
			b.WriteString(warningStyle.Render("  ⚠ dependency cycle, some tasks ungrouped") + "\n")
		}
	}

	if m.adding {
		b.WriteString("\n  add task: " + m.input.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + successStyle.Render("  "+m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  a add · c cancel · r refresh · j/k move · q quit") + "\n")
	return b.String()
}
