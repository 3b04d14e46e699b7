package config

import (
	"testing"
)

func TestValidateDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DomainConfig)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(d *DomainConfig) {},
			wantErr: false,
		},
		{
			name: "no configurations",
			modify: func(d *DomainConfig) {
				d.Configurations = nil
				d.Baseline = ""
			},
			wantErr: true,
		},
		{
			name: "duplicate site",
			modify: func(d *DomainConfig) {
				d.Sites = []string{"bbc", "cnn", "bbc"}
			},
			wantErr: true,
		},
		{
			name: "baseline not a configuration",
			modify: func(d *DomainConfig) {
				d.Baseline = "8l-8b"
			},
			wantErr: true,
		},
		{
			name: "no baseline",
			modify: func(d *DomainConfig) {
				d.Baseline = ""
			},
			wantErr: false,
		},
		{
			name: "single checkpoint",
			modify: func(d *DomainConfig) {
				d.Checkpoints = []string{"navigationStart"}
				d.PhaseLabels = nil
			},
			wantErr: true,
		},
		{
			name: "label count mismatch",
			modify: func(d *DomainConfig) {
				d.PhaseLabels = []string{"one"}
			},
			wantErr: true,
		},
		{
			name: "labels omitted",
			modify: func(d *DomainConfig) {
				d.PhaseLabels = nil
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Domain)
			err := cfg.Domain.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		iterations int
		wantErr    bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{27, false},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Dataset.Iterations = tt.iterations
		err := cfg.Dataset.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("iterations=%d: wantErr=%v, got %v", tt.iterations, tt.wantErr, err)
		}
	}

	cfg := Default()
	cfg.Dataset.TraceDir = ""
	if err := cfg.Dataset.Validate(); err == nil {
		t.Error("expected error for empty trace_dir")
	}
}

func TestValidateTrace(t *testing.T) {
	tests := []struct {
		delimiter string
		wantErr   bool
	}{
		{"", false},
		{",", false},
		{"\t", false},
		{";;", true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Trace.Delimiter = tt.delimiter
		err := cfg.Trace.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("delimiter=%q: wantErr=%v, got %v", tt.delimiter, tt.wantErr, err)
		}
	}

	cfg := Default()
	cfg.Trace.Channels = nil
	if err := cfg.Trace.Validate(); err == nil {
		t.Error("expected error for no channels")
	}
}

func TestValidateEnergy(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*EnergyConfig)
		wantErr bool
	}{
		{"valid defaults", func(e *EnergyConfig) {}, false},
		{"zero period", func(e *EnergyConfig) { e.SamplingPeriodMS = 0 }, false},
		{"negative period", func(e *EnergyConfig) { e.SamplingPeriodMS = -1 }, true},
		{"zero sentinel", func(e *EnergyConfig) { e.InvalidSentinel = 0 }, true},
		{"positive sentinel", func(e *EnergyConfig) { e.InvalidSentinel = 100 }, true},
		{"negative tolerance", func(e *EnergyConfig) { e.LoadtimeToleranceMS = -0.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Energy)
			err := cfg.Energy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCleaning(t *testing.T) {
	tests := []struct {
		start, stop int
		wantErr     bool
	}{
		{0, 0, false},
		{5, 0, false},
		{0, 10, false},
		{10, 10, true},
		{10, 5, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Cleaning.IterationStart = tt.start
		cfg.Cleaning.IterationStop = tt.stop
		err := cfg.Cleaning.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("window [%d,%d): wantErr=%v, got %v", tt.start, tt.stop, tt.wantErr, err)
		}
	}
}

func TestValidateSolver(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*SolverConfig)
		wantErr bool
	}{
		{"valid defaults", func(s *SolverConfig) {}, false},
		{"zero deadline", func(s *SolverConfig) { s.DeadlineMS = 0 }, true},
		{"tolerance zero", func(s *SolverConfig) { s.SelectionTolerance = 0 }, true},
		{"tolerance above one", func(s *SolverConfig) { s.SelectionTolerance = 1.5 }, true},
		{"tolerance one", func(s *SolverConfig) { s.SelectionTolerance = 1 }, false},
		{"unknown method", func(s *SolverConfig) { s.Method = "simplex" }, true},
		{"enumerate", func(s *SolverConfig) { s.Method = "enumerate" }, false},
		{"negative workers", func(s *SolverConfig) { s.Workers = -1 }, true},
		{"auto workers", func(s *SolverConfig) { s.Workers = 0 }, false},
		{"negative nodes", func(s *SolverConfig) { s.MaxNodes = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Solver)
			err := cfg.Solver.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSolverGovernorInDomain(t *testing.T) {
	cfg := Default()
	cfg.Solver.Governor = "pp"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for governor outside the domain")
	}

	cfg.Domain.Governors = append(cfg.Domain.Governors, "pp")
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"debug", "json", false},
		{"info", "text", false},
		{"warn", "json", false},
		{"error", "text", false},
		{"trace", "json", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Logging.Level = tt.level
		cfg.Logging.Format = tt.format
		err := cfg.Logging.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("level=%s format=%s: wantErr=%v, got %v", tt.level, tt.format, tt.wantErr, err)
		}
	}

	cfg := Default()
	cfg.Logging.WarningsPerSecond = -1
	if err := cfg.Logging.Validate(); err == nil {
		t.Error("expected error for negative warning rate")
	}
}

func TestValidateAggregatesSections(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Iterations = 0
	cfg.Persistence.DataDir = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Errorf("expected 2 section errors, got %d: %v", n, err)
	}
}
