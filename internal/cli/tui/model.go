package tui

import (
	"time"

	"github.com/haskel/phasepower/internal/selection"
	"github.com/haskel/phasepower/internal/storage"
)

// Config holds TUI configuration
type Config struct {
	Source Source

	// RefreshInterval reloads the solution file; 0 disables reloading.
	RefreshInterval time.Duration

	// PhaseLabel maps phase names to display labels.
	PhaseLabel func(phase string) string
}

// Model represents the TUI state
type Model struct {
	config Config

	set  *storage.SolutionSet
	sols []selection.SiteSolution

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time

	// Selected site
	cursor int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	if cfg.PhaseLabel == nil {
		cfg.PhaseLabel = func(p string) string { return p }
	}
	return Model{
		config:  cfg,
		loading: true,
	}
}

// Selected returns the solution under the cursor.
func (m Model) Selected() (selection.SiteSolution, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sols) {
		return selection.SiteSolution{}, false
	}
	return m.sols[m.cursor], true
}
