package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haskel/phasepower/internal/energy"
	"github.com/haskel/phasepower/internal/events"
	"github.com/haskel/phasepower/internal/measure"
	"github.com/haskel/phasepower/internal/trace"
)

// Stats counts what happened to the windows of ingested runs.
type Stats struct {
	Runs         int `json:"runs"`
	FailedRuns   int `json:"failed_runs"`
	Observations int `json:"observations"`

	Integrated   int `json:"integrated"`
	Approximated int `json:"approximated"`
	Edge         int `json:"edge"`
	ZeroDuration int `json:"zero_duration"`
	Unresolvable int `json:"unresolvable"`
	NearZero     int `json:"near_zero"`
	Reconciled   int `json:"reconciled"`

	MissingSites       int `json:"missing_sites"`
	MissingCheckpoints int `json:"missing_checkpoints"`
	OutOfOrder         int `json:"out_of_order"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Runs += o.Runs
	s.FailedRuns += o.FailedRuns
	s.Observations += o.Observations
	s.Integrated += o.Integrated
	s.Approximated += o.Approximated
	s.Edge += o.Edge
	s.ZeroDuration += o.ZeroDuration
	s.Unresolvable += o.Unresolvable
	s.NearZero += o.NearZero
	s.Reconciled += o.Reconciled
	s.MissingSites += o.MissingSites
	s.MissingCheckpoints += o.MissingCheckpoints
	s.OutOfOrder += o.OutOfOrder
}

func (s *Stats) count(est energy.Estimate) {
	switch est.Method {
	case energy.MethodIntegrated:
		s.Integrated++
	case energy.MethodApproximated:
		s.Approximated++
	case energy.MethodEdge:
		s.Edge++
	case energy.MethodZeroDuration:
		s.ZeroDuration++
	case energy.MethodUnresolvable:
		s.Unresolvable++
	}
	if est.NearZero {
		s.NearZero++
	}
	if est.Reconciled {
		s.Reconciled++
	}
}

// Ingester records window loadtimes and energies into a measurement table.
type Ingester struct {
	integrator  *energy.Integrator
	checkpoints []string
	readOpts    trace.ReadOptions
	log         *slog.Logger
}

// NewIngester creates an ingester. checkpoints must be ordered; phase i of
// the table is the window from checkpoints[i] to checkpoints[i+1].
func NewIngester(integrator *energy.Integrator, checkpoints []string, readOpts trace.ReadOptions, log *slog.Logger) *Ingester {
	return &Ingester{
		integrator:  integrator,
		checkpoints: checkpoints,
		readOpts:    readOpts,
		log:         log,
	}
}

// NewTable allocates a table whose phases follow the ingester's checkpoints.
func (in *Ingester) NewTable(configs, governors, sites []string, baseline string, iterations int) (*measure.Table, error) {
	domain := measure.Domain{
		Configurations: configs,
		Governors:      governors,
		Sites:          sites,
		Phases:         events.Phases(in.checkpoints),
		Baseline:       baseline,
	}
	return measure.NewTable(domain, iterations, in.integrator.Config().InvalidSentinel)
}

// IngestRun records every site and phase of one run. Windows whose interval
// cannot be resolved leave the cell at its sentinel default.
func (in *Ingester) IngestRun(tbl *measure.Table, config, governor string, iteration int, tr *trace.PowerTrace, ef *events.File) (Stats, error) {
	stats := Stats{Runs: 1}
	domain := tbl.Domain()

	for _, site := range domain.Sites {
		ev, ok := ef.Event(site, iteration)
		if !ok {
			stats.MissingSites++
			in.log.Debug("site missing from events", "site", site, "config", config, "iteration", iteration)
			continue
		}

		windows, err := ev.Windows(in.checkpoints)
		if err != nil {
			in.log.Debug("event checkpoints incomplete", "site", site, "config", config, "error", err)
		}

		for _, w := range windows {
			if w.Missing {
				stats.MissingCheckpoints++
				continue
			}
			if w.Reversed() {
				stats.OutOfOrder++
			}

			key, err := domain.Resolve(config, governor, site, w.Phase)
			if err != nil {
				return stats, err
			}

			loadtime := w.Duration()
			est := in.integrator.Measure(tr, w.Start, w.End, loadtime)
			stats.count(est)
			if !est.Resolved() {
				in.log.Debug("window unresolvable",
					"site", site,
					"phase", w.Phase,
					"start", w.Start,
					"end", w.End,
				)
				continue
			}

			if err := tbl.Set(key, measure.Loadtime, iteration, loadtime); err != nil {
				return stats, err
			}
			if err := tbl.Set(key, measure.Energy, iteration, est.Energy); err != nil {
				return stats, err
			}
			stats.Observations++
		}
	}

	return stats, nil
}

// Process reads and ingests every run of the dataset. A run whose files
// cannot be read is logged and skipped.
func (in *Ingester) Process(ctx context.Context, ds *Dataset, tbl *measure.Table) (Stats, error) {
	var total Stats

	for _, run := range ds.Runs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		stats, err := in.processRun(tbl, run)
		if err != nil {
			var tableErr *tableError
			if errors.As(err, &tableErr) {
				return total, tableErr.err
			}
			in.log.Warn("skipping run", "trace", run.TracePath, "error", err)
			total.FailedRuns++
			continue
		}
		total.Add(stats)
	}

	in.log.Info("dataset processed",
		"runs", total.Runs,
		"failed", total.FailedRuns,
		"observations", total.Observations,
		"approximated", total.Approximated,
		"edge", total.Edge,
		"unresolvable", total.Unresolvable,
	)
	return total, nil
}

type tableError struct{ err error }

func (e *tableError) Error() string { return e.err.Error() }
func (e *tableError) Unwrap() error { return e.err }

func (in *Ingester) processRun(tbl *measure.Table, run Run) (Stats, error) {
	tr, err := trace.ReadFile(run.TracePath, in.readOpts)
	if err != nil {
		return Stats{}, err
	}

	ef, err := events.ReadFile(run.EventsPath)
	if err != nil {
		return Stats{}, err
	}

	in.log.Debug("ingesting run",
		"config", run.Config,
		"governor", run.Governor,
		"id", run.ID,
		"iteration", run.Iteration,
		"samples", tr.Len(),
	)

	stats, err := in.IngestRun(tbl, run.Config, run.Governor, run.Iteration, tr, ef)
	if err != nil {
		return stats, &tableError{err: err}
	}
	return stats, nil
}
