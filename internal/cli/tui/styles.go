package tui

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/phasepower/internal/selection"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	// Title bar
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Help text
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Section headers
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Site list
	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	listStyle = lipgloss.NewStyle().
			PaddingRight(2).
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorSecondary)

	detailStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// Table
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorSecondary)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Values
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Error
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)
)

func statusColor(s selection.Status) lipgloss.Color {
	switch s {
	case selection.StatusOptimal:
		return colorSuccess
	case selection.StatusRelaxed:
		return colorWarning
	default:
		return colorDanger
	}
}

// ratioColor marks savings green and regressions orange.
func ratioColor(r float64) lipgloss.Color {
	switch {
	case math.IsNaN(r):
		return colorMuted
	case r <= 1:
		return colorSuccess
	default:
		return colorWarning
	}
}
