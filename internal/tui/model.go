// Package tui renders live run progress in the terminal. It is a thin
// presentation layer over the engine's snapshot API: a ticker polls
// Run.Snapshot at its own cadence and the model never reaches into the
// engine's internals.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/stresscli/internal/engine"
)

// pollInterval is how often the view refreshes from the run snapshot.
const pollInterval = 100 * time.Millisecond

// tickMsg triggers a snapshot poll.
type tickMsg time.Time

// Model is the bubbletea model for a live run.
type Model struct {
	run      *engine.Run
	bar      progress.Model
	snap     engine.Snapshot
	width    int
	stopping bool
}

// NewModel creates a progress model for the given run.
func NewModel(run *engine.Run) Model {
	return Model{
		run:  run,
		bar:  progress.New(progress.WithDefaultGradient()),
		snap: run.Snapshot(),
	}
}

// Run blocks until the run finishes or the user stops it, rendering progress
// the whole time.
func Run(run *engine.Run) error {
	p := tea.NewProgram(NewModel(run))
	_, err := p.Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles ticks, resizes, and cancellation keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 10
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// First press cancels the run; the model quits once the engine
			// reports a terminal snapshot so partial results stay intact.
			if !m.stopping {
				m.stopping = true
				m.run.Cancel()
			}
			return m, nil
		}
		return m, nil

	case tickMsg:
		m.snap = m.run.Snapshot()
		if m.snap.Status.Terminal() {
			return m, tea.Quit
		}
		return m, tick()
	}

	return m, nil
}
