// Package report renders solutions and processing statistics for people:
// terminal tables, JSON documents and LaTeX timing tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/haskel/phasepower/internal/pipeline"
	"github.com/haskel/phasepower/internal/selection"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// LabelFunc maps a phase name to its display label.
type LabelFunc func(phase string) string

func identity(s string) string { return s }

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// Summary writes one row per site with totals and baseline ratios.
func Summary(w io.Writer, sols []selection.SiteSolution) error {
	t := newTable("Site", "Status", "Time (ms)", "Energy (mJ)", "Baseline (mJ)", "Energy ratio", "Time ratio", "Nodes")
	for _, s := range sols {
		t.Row(
			s.Site,
			string(s.Status),
			solvedNumber(s, s.Time),
			solvedNumber(s, s.Energy),
			Number(s.BaselineEnergy),
			Number(s.EnergyRatio()),
			Number(s.TimeRatio()),
			strconv.Itoa(s.Nodes),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Assignments writes the chosen configuration of every phase, one block
// per solved site. Unsolved sites list their error.
func Assignments(w io.Writer, sols []selection.SiteSolution, label LabelFunc) error {
	if label == nil {
		label = identity
	}

	for _, s := range sols {
		heading := fmt.Sprintf("%s (%s)", s.Site, s.Status)
		if s.Status == selection.StatusRelaxed {
			heading += fmt.Sprintf(", deadline exceeded by %s ms", Number(s.Violation))
		}
		if _, err := fmt.Fprintln(w, titleStyle.Render(heading)); err != nil {
			return err
		}

		if !s.Status.Solved() {
			msg := s.Error
			if msg == "" {
				msg = "no assignment"
			}
			if _, err := fmt.Fprintf(w, "  %s\n\n", msg); err != nil {
				return err
			}
			continue
		}

		t := newTable("Phase", "Config", "Time (ms)", "Energy (mJ)")
		for _, c := range s.Choices {
			t.Row(label(c.Phase), c.Config, Number(c.Time), Number(c.Energy))
		}
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}
	return nil
}

// Stats writes the processing counters.
func Stats(w io.Writer, st pipeline.Stats) error {
	t := newTable("Counter", "Value")
	rows := []struct {
		name  string
		value int
	}{
		{"runs", st.Runs},
		{"failed runs", st.FailedRuns},
		{"observations", st.Observations},
		{"integrated", st.Integrated},
		{"approximated", st.Approximated},
		{"edge", st.Edge},
		{"zero duration", st.ZeroDuration},
		{"unresolvable", st.Unresolvable},
		{"near zero", st.NearZero},
		{"reconciled", st.Reconciled},
		{"missing sites", st.MissingSites},
		{"missing checkpoints", st.MissingCheckpoints},
		{"out of order", st.OutOfOrder},
	}
	for _, r := range rows {
		t.Row(r.name, strconv.Itoa(r.value))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Number formats v with two decimals, "n/a" for NaN and infinities.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func solvedNumber(s selection.SiteSolution, v float64) string {
	if !s.Status.Solved() {
		return "n/a"
	}
	return Number(v)
}
