package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haskel/phasepower/internal/pipeline"
	"github.com/haskel/phasepower/internal/selection"
)

func solutions() []selection.SiteSolution {
	return []selection.SiteSolution{
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
			ConstructTime:  1500 * time.Microsecond,
			SolveTime:      12345678 * time.Nanosecond,
			Nodes:          7,
		},
		{
			Site:           "my_site",
			Governor:       "ii",
			Status:         selection.StatusRelaxed,
			Choices:        []selection.PhaseChoice{{Phase: "navigationStart", Config: "4l-4b", Time: 140, Energy: 30}},
			Time:           140,
			Energy:         30,
			Violation:      40,
			BaselineTime:   140,
			BaselineEnergy: 30,
			ConstructTime:  time.Millisecond,
			SolveTime:      2 * time.Millisecond,
		},
		{
			Site:           "cnn",
			Governor:       "ii",
			Status:         selection.StatusUnsolved,
			Time:           math.NaN(),
			Energy:         math.NaN(),
			BaselineTime:   math.NaN(),
			BaselineEnergy: math.NaN(),
			Error:          "phase domLoading has no measurements",
		},
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1.25", Number(1.25))
	assert.Equal(t, "0.00", Number(0))
	assert.Equal(t, "n/a", Number(math.NaN()))
	assert.Equal(t, "n/a", Number(math.Inf(1)))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, solutions()))

	out := buf.String()
	assert.Contains(t, out, "bbc")
	assert.Contains(t, out, "optimal")
	assert.Contains(t, out, "1.25")
	assert.Contains(t, out, "0.80")
	assert.Contains(t, out, "unsolved")
	assert.Contains(t, out, "n/a")
}

func TestAssignments(t *testing.T) {
	label := func(p string) string {
		if p == "navigationStart" {
			return "Setup Connection"
		}
		return p
	}

	var buf bytes.Buffer
	require.NoError(t, Assignments(&buf, solutions(), label))

	out := buf.String()
	assert.Contains(t, out, "Setup Connection")
	assert.Contains(t, out, "requestStart")
	assert.Contains(t, out, "0l-4b")
	assert.Contains(t, out, "deadline exceeded by 40.00 ms")
	assert.Contains(t, out, "phase domLoading has no measurements")
}

func TestAssignmentsDefaultLabel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Assignments(&buf, solutions()[:1], nil))
	assert.Contains(t, buf.String(), "navigationStart")
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, pipeline.Stats{Runs: 12, OutOfOrder: 3}))

	out := buf.String()
	assert.Contains(t, out, "runs")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "out of order")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"sites": 3}))
	assert.Equal(t, "{\n  \"sites\": 3\n}\n", buf.String())

	assert.Error(t, JSON(&buf, math.NaN()))
}

func TestLatexOptimize(t *testing.T) {
	out, err := Latex(solutions(), TimingOptimize)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "\\begin{table}\n\\begin{center}\n\\begin{tabular}{| c | c |}\n\\hline\n"))
	assert.Contains(t, out, "bbc & 12.346ms \\\\\n\\hline\n")
	assert.Contains(t, out, "my\\_site & 2ms \\\\\n\\hline\n")
	assert.NotContains(t, out, "cnn")
	assert.Contains(t, out, "\\caption{Site Model Optimization Times}\\label{table:model-optimize-time}")
}

func TestLatexConstruct(t *testing.T) {
	out, err := Latex(solutions(), TimingConstruct)
	require.NoError(t, err)

	assert.Contains(t, out, "bbc & 1.5ms")
	assert.Contains(t, out, "\\caption{Site Model Construction Times}\\label{table:model-construct-time}")
}

func TestLatexInvalidTiming(t *testing.T) {
	_, err := Latex(solutions(), Timing("wall"))
	assert.Error(t, err)
}

func TestWriteLatex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")

	paths, err := WriteLatex(dir, solutions())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "model-optimizetable.txt"), paths[0])
	assert.Equal(t, filepath.Join(dir, "model-constructtable.txt"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Construction")
}
