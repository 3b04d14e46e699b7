// Package pipeline turns raw power traces and page-load event files into a
// populated measurement table.
package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Layout describes where runs live on disk. A run with id N for
// configuration C and governor G is the trace file
// <TraceDir>/<Prefix>C-G-N paired with <EventsDir>/<Prefix>C-G-N.json.
type Layout struct {
	Prefix    string
	TraceDir  string
	EventsDir string
}

// Run is one trace/event file pair.
type Run struct {
	Config     string
	Governor   string
	ID         string
	Iteration  int
	TracePath  string
	EventsPath string
}

// Dataset is the result of discovery.
type Dataset struct {
	Runs []Run

	// KnownConfigs lists, in domain order, the configurations with at least
	// one run on disk.
	KnownConfigs []string

	// MaxIterations is the largest run count kept for any (config, governor).
	MaxIterations int

	// Truncated is set when some (config, governor) had more runs than the
	// table can hold.
	Truncated bool
}

// Discover lists the runs for every configuration and governor. At most
// iterations runs are kept per pair, in id order; the overflow is logged
// once.
func Discover(layout Layout, configs, governors []string, iterations int, log *slog.Logger) (*Dataset, error) {
	ds := &Dataset{}

	for _, config := range configs {
		found := false
		for _, gov := range governors {
			stem := layout.Prefix + config + "-" + gov + "-"
			matches, err := filepath.Glob(filepath.Join(layout.TraceDir, globEscape(stem)+"*"))
			if err != nil {
				return nil, fmt.Errorf("failed to list traces for %s/%s: %w", config, gov, err)
			}

			ids := runIDs(matches, stem)
			if len(ids) == 0 {
				continue
			}
			found = true

			if len(ids) > iterations {
				if !ds.Truncated {
					log.Warn("additional iteration data found, skipping",
						"config", config,
						"governor", gov,
						"runs", len(ids),
						"iterations", iterations,
					)
				}
				ds.Truncated = true
				ids = ids[:iterations]
			}

			for i, id := range ids {
				ds.Runs = append(ds.Runs, Run{
					Config:     config,
					Governor:   gov,
					ID:         id,
					Iteration:  i,
					TracePath:  filepath.Join(layout.TraceDir, stem+id),
					EventsPath: filepath.Join(layout.EventsDir, stem+id+".json"),
				})
			}
			if len(ids) > ds.MaxIterations {
				ds.MaxIterations = len(ids)
			}
		}
		if found {
			ds.KnownConfigs = append(ds.KnownConfigs, config)
		}
	}

	log.Debug("dataset discovered",
		"runs", len(ds.Runs),
		"known_configs", ds.KnownConfigs,
		"max_iterations", ds.MaxIterations,
	)
	return ds, nil
}

// runIDs extracts the ids following stem, skipping event files that share
// the trace directory and ids that contain a further dash (those belong to
// a longer configuration name). Numeric ids sort numerically.
func runIDs(paths []string, stem string) []string {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		if strings.HasSuffix(base, ".json") {
			continue
		}
		id := strings.TrimPrefix(base, stem)
		if id == "" || strings.Contains(id, "-") {
			continue
		}
		ids = append(ids, id)
	}

	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
