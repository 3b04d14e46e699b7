package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/phasepower/internal/report"
	"github.com/haskel/phasepower/internal/selection"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Main content
	if len(m.sols) > 0 {
		body := lipgloss.JoinHorizontal(lipgloss.Top,
			listStyle.Render(m.renderSiteList()),
			detailStyle.Render(m.renderDetail()),
		)
		sections = append(sections, body)
	} else if m.set != nil {
		sections = append(sections, helpStyle.Render("  No sites in the solution set."))
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("PHASEPOWER SOLUTIONS")

	reloadInfo := "manual reload"
	if m.config.RefreshInterval > 0 {
		reloadInfo = fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	}
	if m.loading {
		reloadInfo = "↻ loading..."
	}

	help := "q:quit r:reload ↑↓:site"

	// Calculate spacing
	rightPart := fmt.Sprintf("%s | %s", reloadInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderSiteList() string {
	lines := []string{sectionHeaderStyle.Render("Sites")}
	for i, s := range m.sols {
		marker := "  "
		name := fmt.Sprintf("%-12s", s.Site)
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			name = cursorStyle.Render(name)
		}
		status := lipgloss.NewStyle().Foreground(statusColor(s.Status)).Render(string(s.Status))
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, name, status))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}

	var lines []string
	lines = append(lines, sectionHeaderStyle.Render(fmt.Sprintf("%s, governor %s", s.Site, s.Governor)))

	if !s.Status.Solved() {
		msg := s.Error
		if msg == "" {
			msg = "no assignment"
		}
		lines = append(lines, errorStyle.Render(msg))
		return strings.Join(lines, "\n")
	}

	header := fmt.Sprintf("%-22s │ %-8s │ %10s │ %11s", "Phase", "Config", "Time (ms)", "Energy (mJ)")
	lines = append(lines, tableHeaderStyle.Render(header))
	for _, c := range s.Choices {
		phase := m.config.PhaseLabel(c.Phase)
		if len(phase) > 22 {
			phase = phase[:19] + "..."
		}
		row := fmt.Sprintf("%-22s │ %-8s │ %10s │ %11s", phase, c.Config, report.Number(c.Time), report.Number(c.Energy))
		lines = append(lines, tableCellStyle.Render(row))
	}

	lines = append(lines, "")
	lines = append(lines, m.renderTotals(s)...)
	return strings.Join(lines, "\n")
}

func (m Model) renderTotals(s selection.SiteSolution) []string {
	field := func(label, value string) string {
		return fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-16s", label)), valueStyle.Render(value))
	}
	ratio := func(r float64) string {
		return lipgloss.NewStyle().Foreground(ratioColor(r)).Render(report.Number(r))
	}

	lines := []string{
		field("Total time", report.Number(s.Time)+" ms"),
		field("Total energy", report.Number(s.Energy)+" mJ"),
		field("Baseline", fmt.Sprintf("%s ms, %s mJ", report.Number(s.BaselineTime), report.Number(s.BaselineEnergy))),
		fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-16s", "Energy ratio")), ratio(s.EnergyRatio())),
		fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-16s", "Time ratio")), ratio(s.TimeRatio())),
	}
	if s.Status == selection.StatusRelaxed {
		lines = append(lines, field("Deadline excess", report.Number(s.Violation)+" ms"))
	}
	lines = append(lines, field("Solve", fmt.Sprintf("%s (%d nodes), built in %s", s.SolveTime, s.Nodes, s.ConstructTime)))
	return lines
}

func (m Model) renderFooter() string {
	if m.set == nil {
		return ""
	}

	window := fmt.Sprintf("iterations %d..", m.set.Window.Start)
	if m.set.Window.Stop > 0 {
		window = fmt.Sprintf("iterations %d..%d", m.set.Window.Start, m.set.Window.Stop)
	}
	if m.set.Iteration != nil {
		window = fmt.Sprintf("iteration %d", *m.set.Iteration)
	}

	return helpStyle.Render(fmt.Sprintf(
		"  Deadline: %s ms │ %s │ Solved: %s │ Loaded: %s",
		report.Number(m.set.Deadline),
		window,
		m.set.UpdatedAt.Format("2006-01-02 15:04:05"),
		m.lastUpdated.Format("15:04:05"),
	))
}
