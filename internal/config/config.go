package config

type Config struct {
	Domain      DomainConfig      `yaml:"domain"`
	Dataset     DatasetConfig     `yaml:"dataset"`
	Trace       TraceConfig       `yaml:"trace"`
	Energy      EnergyConfig      `yaml:"energy"`
	Cleaning    CleaningConfig    `yaml:"cleaning"`
	Solver      SolverConfig      `yaml:"solver"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DomainConfig names the label sets of the measurement table. Phases are
// the checkpoint names minus the last one.
type DomainConfig struct {
	Configurations []string `yaml:"configurations"`
	Baseline       string   `yaml:"baseline"`
	Governors      []string `yaml:"governors"`
	Sites          []string `yaml:"sites"`
	Checkpoints    []string `yaml:"checkpoints"`
	PhaseLabels    []string `yaml:"phase_labels"`
}

type DatasetConfig struct {
	Prefix     string `yaml:"prefix"`
	TraceDir   string `yaml:"trace_dir"`
	EventsDir  string `yaml:"events_dir"`
	Iterations int    `yaml:"iterations"`
}

type TraceConfig struct {
	TimeColumn string   `yaml:"time_column"`
	Channels   []string `yaml:"channels"`
	Delimiter  string   `yaml:"delimiter"`
}

type EnergyConfig struct {
	SamplingPeriodMS    float64 `yaml:"sampling_period_ms"`
	NearZeroThreshold   float64 `yaml:"near_zero_threshold"`
	InvalidSentinel     float64 `yaml:"invalid_sentinel"`
	LoadtimeToleranceMS float64 `yaml:"loadtime_tolerance_ms"`
}

// CleaningConfig sets the outlier threshold and the iteration window
// aggregated per cell. IterationStop 0 means all iterations.
type CleaningConfig struct {
	MaxStdDevs     float64 `yaml:"max_std_devs"`
	IterationStart int     `yaml:"iteration_start"`
	IterationStop  int     `yaml:"iteration_stop"`
}

type SolverConfig struct {
	DeadlineMS         float64 `yaml:"deadline_ms"`
	SelectionTolerance float64 `yaml:"selection_tolerance"`
	Governor           string  `yaml:"governor"`
	Method             string  `yaml:"method"`
	MaxNodes           int     `yaml:"max_nodes"`
	LPBound            bool    `yaml:"lp_bound"`
	// Workers 0 uses the physical core count.
	Workers int `yaml:"workers"`
}

type PersistenceConfig struct {
	DataDir string `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level             string  `yaml:"level"`
	Format            string  `yaml:"format"`
	WarningsPerSecond float64 `yaml:"warnings_per_second"`
	WarningBurst      int     `yaml:"warning_burst"`
}

// Phases returns the phase names derived from the checkpoints.
func (d *DomainConfig) Phases() []string {
	if len(d.Checkpoints) < 2 {
		return nil
	}
	phases := make([]string, len(d.Checkpoints)-1)
	copy(phases, d.Checkpoints)
	return phases
}

// PhaseLabel returns the display label of a phase, or the phase itself.
func (d *DomainConfig) PhaseLabel(phase string) string {
	for i, p := range d.Phases() {
		if p == phase && i < len(d.PhaseLabels) {
			return d.PhaseLabels[i]
		}
	}
	return phase
}

// DelimiterRune returns the first rune of the delimiter, tab when empty.
func (t *TraceConfig) DelimiterRune() rune {
	for _, r := range t.Delimiter {
		return r
	}
	return '\t'
}
