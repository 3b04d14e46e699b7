package config

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Domain.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("domain: %w", err))
	}

	if err := c.Dataset.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dataset: %w", err))
	}

	if err := c.Trace.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("trace: %w", err))
	}

	if err := c.Energy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("energy: %w", err))
	}

	if err := c.Cleaning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cleaning: %w", err))
	}

	if err := c.Solver.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("solver: %w", err))
	} else if !slices.Contains(c.Domain.Governors, c.Solver.Governor) {
		errs = append(errs, fmt.Errorf("solver: governor %q is not in domain.governors", c.Solver.Governor))
	}

	if err := c.Persistence.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("persistence: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (d *DomainConfig) Validate() error {
	var errs []error

	lists := []struct {
		name   string
		values []string
	}{
		{"configurations", d.Configurations},
		{"governors", d.Governors},
		{"sites", d.Sites},
		{"checkpoints", d.Checkpoints},
	}
	for _, l := range lists {
		if len(l.values) == 0 {
			errs = append(errs, fmt.Errorf("%s cannot be empty", l.name))
			continue
		}
		if dup, ok := duplicate(l.values); ok {
			errs = append(errs, fmt.Errorf("%s: duplicate entry %q", l.name, dup))
		}
	}

	if len(d.Checkpoints) == 1 {
		errs = append(errs, fmt.Errorf("checkpoints needs at least 2 entries"))
	}

	if d.Baseline != "" && !slices.Contains(d.Configurations, d.Baseline) {
		errs = append(errs, fmt.Errorf("baseline %q is not in configurations", d.Baseline))
	}

	if len(d.PhaseLabels) > 0 && len(d.PhaseLabels) != len(d.Phases()) {
		errs = append(errs, fmt.Errorf("phase_labels needs %d entries, got %d", len(d.Phases()), len(d.PhaseLabels)))
	}

	return errors.Join(errs...)
}

func (d *DatasetConfig) Validate() error {
	var errs []error

	if d.TraceDir == "" {
		errs = append(errs, fmt.Errorf("trace_dir cannot be empty"))
	}

	if d.EventsDir == "" {
		errs = append(errs, fmt.Errorf("events_dir cannot be empty"))
	}

	if d.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be at least 1, got %d", d.Iterations))
	}

	return errors.Join(errs...)
}

func (t *TraceConfig) Validate() error {
	var errs []error

	if t.TimeColumn == "" {
		errs = append(errs, fmt.Errorf("time_column cannot be empty"))
	}

	if len(t.Channels) == 0 {
		errs = append(errs, fmt.Errorf("channels cannot be empty"))
	}

	if utf8.RuneCountInString(t.Delimiter) > 1 {
		errs = append(errs, fmt.Errorf("delimiter must be a single character, got %q", t.Delimiter))
	}

	return errors.Join(errs...)
}

func (e *EnergyConfig) Validate() error {
	var errs []error

	if e.SamplingPeriodMS < 0 {
		errs = append(errs, fmt.Errorf("sampling_period_ms must be non-negative"))
	}

	if e.NearZeroThreshold < 0 {
		errs = append(errs, fmt.Errorf("near_zero_threshold must be non-negative"))
	}

	if e.InvalidSentinel >= 0 {
		errs = append(errs, fmt.Errorf("invalid_sentinel must be negative, got %g", e.InvalidSentinel))
	}

	if e.LoadtimeToleranceMS < 0 {
		errs = append(errs, fmt.Errorf("loadtime_tolerance_ms must be non-negative"))
	}

	return errors.Join(errs...)
}

func (c *CleaningConfig) Validate() error {
	var errs []error

	if c.MaxStdDevs < 0 {
		errs = append(errs, fmt.Errorf("max_std_devs must be non-negative"))
	}

	if c.IterationStart < 0 {
		errs = append(errs, fmt.Errorf("iteration_start must be non-negative"))
	}

	if c.IterationStop != 0 && c.IterationStop <= c.IterationStart {
		errs = append(errs, fmt.Errorf("iteration_stop must be 0 or greater than iteration_start"))
	}

	return errors.Join(errs...)
}

func (s *SolverConfig) Validate() error {
	var errs []error

	if s.DeadlineMS <= 0 {
		errs = append(errs, fmt.Errorf("deadline_ms must be positive"))
	}

	if s.SelectionTolerance <= 0 || s.SelectionTolerance > 1 {
		errs = append(errs, fmt.Errorf("selection_tolerance must be in (0, 1]"))
	}

	if s.Governor == "" {
		errs = append(errs, fmt.Errorf("governor cannot be empty"))
	}

	validMethods := map[string]bool{
		"branch_and_bound": true,
		"enumerate":        true,
	}
	if !validMethods[s.Method] {
		errs = append(errs, fmt.Errorf("invalid method: %s (valid: branch_and_bound, enumerate)", s.Method))
	}

	if s.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("max_nodes must be non-negative"))
	}

	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative"))
	}

	return errors.Join(errs...)
}

func (p *PersistenceConfig) Validate() error {
	if p.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	if l.WarningsPerSecond < 0 {
		return fmt.Errorf("warnings_per_second must be non-negative")
	}

	if l.WarningBurst < 0 {
		return fmt.Errorf("warning_burst must be non-negative")
	}

	return nil
}

func duplicate(values []string) (string, bool) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v, true
		}
		seen[v] = true
	}
	return "", false
}
