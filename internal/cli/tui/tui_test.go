package tui

import (
	"errors"
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haskel/phasepower/internal/selection"
	"github.com/haskel/phasepower/internal/storage"
)

type fakeSource struct {
	set *storage.SolutionSet
	err error
}

func (f *fakeSource) LoadSolutions() (*storage.SolutionSet, error) {
	return f.set, f.err
}

func testSet() *storage.SolutionSet {
	sols := []selection.SiteSolution{
		{
			Site:     "bbc",
			Governor: "ii",
			Status:   selection.StatusOptimal,
			Choices: []selection.PhaseChoice{
				{Phase: "navigationStart", Config: "4l-0b", Time: 120, Energy: 10},
				{Phase: "requestStart", Config: "0l-4b", Time: 40, Energy: 15},
			},
			Time:           160,
			Energy:         25,
			BaselineTime:   200,
			BaselineEnergy: 20,
			SolveTime:      time.Millisecond,
			Nodes:          3,
		},
		{
			Site:           "cnn",
			Governor:       "ii",
			Status:         selection.StatusUnsolved,
			Time:           math.NaN(),
			Energy:         math.NaN(),
			BaselineTime:   math.NaN(),
			BaselineEnergy: math.NaN(),
			Error:          "phase requestStart has no measurements",
		},
	}
	return &storage.SolutionSet{
		Governor:  "ii",
		Deadline:  3000,
		Phases:    []string{"navigationStart", "requestStart"},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Sites:     storage.Records(sols),
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, src Source) Model {
	t.Helper()
	m := NewModel(Config{Source: src, PhaseLabel: func(p string) string {
		if p == "navigationStart" {
			return "Setup Connection"
		}
		return p
	}})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, m, loadSolutions(src)())
}

func TestViewBeforeSize(t *testing.T) {
	m := NewModel(Config{Source: &fakeSource{set: testSet()}})
	assert.Equal(t, "Loading...", m.View())
}

func TestLoadAndRender(t *testing.T) {
	m := loaded(t, &fakeSource{set: testSet()})

	assert.False(t, m.loading)
	require.Len(t, m.sols, 2)

	view := m.View()
	assert.Contains(t, view, "PHASEPOWER SOLUTIONS")
	assert.Contains(t, view, "bbc")
	assert.Contains(t, view, "Setup Connection")
	assert.Contains(t, view, "0l-4b")
	assert.Contains(t, view, "1.25")
	assert.Contains(t, view, "Deadline: 3000.00 ms")
}

func TestCursorMovement(t *testing.T) {
	m := loaded(t, &fakeSource{set: testSet()})

	m = update(t, m, key("k"))
	assert.Equal(t, 0, m.cursor)

	m = update(t, m, key("j"))
	assert.Equal(t, 1, m.cursor)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor, "cursor stays on the last site")

	s, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "cnn", s.Site)
	assert.Contains(t, m.View(), "phase requestStart has no measurements")

	m = update(t, m, key("g"))
	assert.Equal(t, 0, m.cursor)
	m = update(t, m, key("G"))
	assert.Equal(t, 1, m.cursor)
}

func TestLoadError(t *testing.T) {
	m := loaded(t, &fakeSource{err: errors.New("boom")})

	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error: boom")

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestReloadShrinksCursor(t *testing.T) {
	src := &fakeSource{set: testSet()}
	m := loaded(t, src)
	m = update(t, m, key("j"))
	require.Equal(t, 1, m.cursor)

	smaller := testSet()
	smaller.Sites = smaller.Sites[:1]
	m = update(t, m, solutionsMsg{set: smaller})
	assert.Equal(t, 0, m.cursor)
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeSource{set: testSet()})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRunWithoutSource(t *testing.T) {
	assert.ErrorIs(t, Run(Config{}), ErrNoSource)
}

func TestTickDisabled(t *testing.T) {
	assert.Nil(t, tick(0))
	assert.NotNil(t, tick(time.Second))
}
