package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smkim/qflow/internal/queue"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
}

// New creates a new TUI application
func New(manager *queue.Manager) *App {
	return &App{model: NewModel(manager)}
}

// Run starts the TUI application
func (a *App) Run() error {
	a.program = tea.NewProgram(a.model, tea.WithAltScreen())
	_, err := a.program.Run()
	return err
}
