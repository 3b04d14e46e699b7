package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/haskel/phasepower/internal/config"
	"github.com/haskel/phasepower/internal/energy"
	"github.com/haskel/phasepower/internal/logger"
	"github.com/haskel/phasepower/internal/measure"
	"github.com/haskel/phasepower/internal/monitor"
	"github.com/haskel/phasepower/internal/optimizer"
	"github.com/haskel/phasepower/internal/pipeline"
	"github.com/haskel/phasepower/internal/selection"
	"github.com/haskel/phasepower/internal/storage"
	"github.com/haskel/phasepower/internal/trace"
)

// app holds what every data command needs: configuration, logging and the
// on-disk cache.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	warn  *logger.Throttle
	store *storage.Storage
}

// loadConfig returns the defaults without --config. An explicit file must
// load and validate.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format)

	return &app{
		cfg:   cfg,
		log:   log,
		warn:  logger.NewThrottle(log, cfg.Logging.WarningsPerSecond, cfg.Logging.WarningBurst),
		store: storage.New(cfg.Persistence.DataDir, log),
	}, nil
}

func (a *app) close() {
	a.warn.Flush()
}

func (a *app) energyConfig() energy.Config {
	return energy.Config{
		SamplingPeriod:    a.cfg.Energy.SamplingPeriodMS,
		NearZeroThreshold: a.cfg.Energy.NearZeroThreshold,
		InvalidSentinel:   a.cfg.Energy.InvalidSentinel,
		LoadtimeTolerance: a.cfg.Energy.LoadtimeToleranceMS,
	}
}

func (a *app) readOptions() trace.ReadOptions {
	return trace.ReadOptions{
		TimeColumn: a.cfg.Trace.TimeColumn,
		Channels:   a.cfg.Trace.Channels,
		Delimiter:  a.cfg.Trace.DelimiterRune(),
	}
}

func (a *app) domain() measure.Domain {
	d := a.cfg.Domain
	return measure.Domain{
		Configurations: d.Configurations,
		Governors:      d.Governors,
		Sites:          d.Sites,
		Phases:         d.Phases(),
		Baseline:       d.Baseline,
	}
}

func (a *app) window() measure.Window {
	return measure.Window{
		Start: a.cfg.Cleaning.IterationStart,
		Stop:  a.cfg.Cleaning.IterationStop,
	}
}

// process discovers the dataset, integrates every run and caches the
// resulting table.
func (a *app) process(ctx context.Context) (*storage.Dataset, error) {
	d := a.cfg.Domain
	ds, err := pipeline.Discover(pipeline.Layout{
		Prefix:    a.cfg.Dataset.Prefix,
		TraceDir:  a.cfg.Dataset.TraceDir,
		EventsDir: a.cfg.Dataset.EventsDir,
	}, d.Configurations, d.Governors, a.cfg.Dataset.Iterations, a.log)
	if err != nil {
		return nil, err
	}

	in := pipeline.NewIngester(energy.New(a.energyConfig(), a.warn), d.Checkpoints, a.readOptions(), a.log)
	tbl, err := in.NewTable(d.Configurations, d.Governors, d.Sites, d.Baseline, a.cfg.Dataset.Iterations)
	if err != nil {
		return nil, err
	}

	stats, err := in.Process(ctx, ds, tbl)
	if err != nil {
		return nil, err
	}
	a.log.Info("dataset processed",
		"runs", stats.Runs,
		"failed", stats.FailedRuns,
		"observations", stats.Observations,
		"known_configs", ds.KnownConfigs,
		"max_iterations", ds.MaxIterations,
	)

	host, err := monitor.Snapshot(monitor.Default()...)
	if err != nil {
		a.log.Debug("host snapshot incomplete", "error", err)
	}

	data := storage.NewDataset(tbl, ds, stats, host)
	if err := a.store.SaveDataset(data); err != nil {
		return nil, err
	}
	return data, nil
}

// dataset returns the cached table when it matches the configured domain,
// processing the raw data otherwise.
func (a *app) dataset(ctx context.Context, refresh bool) (*storage.Dataset, error) {
	if !refresh {
		data, err := a.store.LoadDataset()
		switch {
		case err == nil && a.matches(data):
			a.log.Debug("using processed data", "dir", a.store.Dir(), "updated_at", data.UpdatedAt)
			return data, nil
		case err == nil:
			a.log.Info("processed data does not match configuration, reprocessing")
		case errors.Is(err, storage.ErrNotFound):
			a.log.Info("no processed data, processing dataset")
		default:
			a.log.Warn("failed to load processed data, reprocessing", "error", err)
		}
	}
	return a.process(ctx)
}

func (a *app) matches(data *storage.Dataset) bool {
	want := a.domain()
	got := data.Domain
	return data.Iterations == a.cfg.Dataset.Iterations &&
		data.Sentinel == a.cfg.Energy.InvalidSentinel &&
		got.Baseline == want.Baseline &&
		slices.Equal(got.Configurations, want.Configurations) &&
		slices.Equal(got.Governors, want.Governors) &&
		slices.Equal(got.Sites, want.Sites) &&
		slices.Equal(got.Phases, want.Phases)
}

func (a *app) optimizer() (optimizer.Optimizer, error) {
	oc := optimizer.DefaultConfig()
	oc.Method = optimizer.Method(a.cfg.Solver.Method)
	oc.MaxNodes = a.cfg.Solver.MaxNodes
	oc.LPBound = a.cfg.Solver.LPBound
	return optimizer.New(oc)
}

func (a *app) solverConfig() selection.Config {
	return selection.Config{
		Deadline:  a.cfg.Solver.DeadlineMS,
		Tolerance: a.cfg.Solver.SelectionTolerance,
		Governor:  a.cfg.Solver.Governor,
		Workers:   monitor.NewCPUMonitor().Workers(a.cfg.Solver.Workers),
	}
}

// solve cleans the table, aggregates the configured iteration window and
// solves every site.
func (a *app) solve(ctx context.Context, tbl *measure.Table) ([]selection.SiteSolution, *measure.Aggregate, error) {
	tbl.Clean(a.cfg.Cleaning.MaxStdDevs)

	agg, err := tbl.Aggregate(a.window())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate: %w", err)
	}
	if missing := agg.Missing(); len(missing) > 0 {
		a.log.Debug("cells without valid measurements", "count", len(missing))
	}

	opt, err := a.optimizer()
	if err != nil {
		return nil, nil, err
	}

	sc := a.solverConfig()
	a.log.Debug("solving", "optimizer", opt.Name(), "governor", sc.Governor, "deadline", sc.Deadline, "workers", sc.Workers)

	sols, err := selection.New(opt, sc, a.log).Solve(ctx, agg)
	if err != nil {
		return nil, nil, err
	}
	return sols, agg, nil
}
