package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrNoSource = errors.New("no solution source")

// Run starts the TUI application
func Run(cfg Config) error {
	if cfg.Source == nil {
		return ErrNoSource
	}

	model := NewModel(cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
