package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/phasepower/internal/storage"
)

// Source provides the solution set to browse. *storage.Storage satisfies it.
type Source interface {
	LoadSolutions() (*storage.SolutionSet, error)
}

type solutionsMsg struct {
	set *storage.SolutionSet
	err error
}

type tickMsg time.Time

func loadSolutions(src Source) tea.Cmd {
	return func() tea.Msg {
		set, err := src.LoadSolutions()
		return solutionsMsg{set: set, err: err}
	}
}

// tick schedules a reload; a zero interval disables it.
func tick(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
