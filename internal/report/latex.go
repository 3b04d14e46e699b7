package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/haskel/phasepower/internal/selection"
)

// Timing selects which per-site duration a LaTeX table reports.
type Timing string

const (
	TimingOptimize  Timing = "optimize"
	TimingConstruct Timing = "construct"
)

var Timings = []Timing{TimingOptimize, TimingConstruct}

func (t Timing) IsValid() bool {
	return t == TimingOptimize || t == TimingConstruct
}

func (t Timing) caption() string {
	if t == TimingConstruct {
		return "Site Model Construction Times"
	}
	return "Site Model Optimization Times"
}

func (t Timing) of(s selection.SiteSolution) time.Duration {
	if t == TimingConstruct {
		return s.ConstructTime
	}
	return s.SolveTime
}

// FileName is the name WriteLatex uses for t.
func (t Timing) FileName() string {
	return "model-" + string(t) + "table.txt"
}

// Latex renders a two column table of per-site model times in
// milliseconds. Sites without an assignment are left out.
func Latex(sols []selection.SiteSolution, t Timing) (string, error) {
	if !t.IsValid() {
		return "", fmt.Errorf("invalid timing %q: either optimize or construct", t)
	}

	var b strings.Builder
	b.WriteString("\\begin{table}\n\\begin{center}\n\\begin{tabular}{| c | c |}\n\\hline\n")
	for _, s := range sols {
		if !s.Status.Solved() {
			continue
		}
		fmt.Fprintf(&b, "%s & %sms \\\\\n\\hline\n", latexEscape(s.Site), millis(t.of(s)))
	}
	b.WriteString("\\end{tabular}\n\\end{center}\n")
	fmt.Fprintf(&b, "\\caption{%s}\\label{table:model-%s-time}\n\\end{table}\n", t.caption(), t)
	return b.String(), nil
}

// WriteLatex writes both timing tables into dir and returns their paths.
func WriteLatex(dir string, sols []selection.SiteSolution) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create table directory: %w", err)
	}

	paths := make([]string, 0, len(Timings))
	for _, t := range Timings {
		content, err := Latex(sols, t)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, t.FileName())
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// millis rounds d to three decimals of a millisecond.
func millis(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return strconv.FormatFloat(math.Round(ms*1000)/1000, 'f', -1, 64)
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
)

func latexEscape(s string) string {
	return latexReplacer.Replace(s)
}
