package config

func Default() *Config {
	return &Config{
		Domain: DomainConfig{
			Configurations: []string{"0l-1b", "0l-4b", "4l-0b", "4l-1b", "4l-2b", "4l-4b"},
			Baseline:       "4l-4b",
			Governors:      []string{"ii"},
			Sites: []string{
				"amazon", "bbc", "cnn",
				"craigslist", "ebay", "espn",
				"google", "msn", "slashdot",
				"twitter", "youtube",
			},
			Checkpoints: []string{"navigationStart", "requestStart", "domLoading", "domComplete", "loadEventEnd"},
			PhaseLabels: []string{"Setup Connection", "Download Page", "Process Page", "Run Dynamic Content"},
		},
		Dataset: DatasetConfig{
			Prefix:     "sim-data-",
			TraceDir:   "powmon-data",
			EventsDir:  "json-data",
			Iterations: 27,
		},
		Trace: TraceConfig{
			TimeColumn: "Time_Milliseconds",
			Channels:   []string{"Power_A7", "Power_A15"},
			Delimiter:  "\t",
		},
		Energy: EnergyConfig{
			SamplingPeriodMS:    100,
			NearZeroThreshold:   0.01,
			InvalidSentinel:     -100,
			LoadtimeToleranceMS: 0.5,
		},
		Cleaning: CleaningConfig{
			MaxStdDevs:     3,
			IterationStart: 0,
			IterationStop:  0,
		},
		Solver: SolverConfig{
			DeadlineMS:         3000,
			SelectionTolerance: 0.99,
			Governor:           "ii",
			Method:             "branch_and_bound",
			MaxNodes:           1_000_000,
			LPBound:            true,
			Workers:            1,
		},
		Persistence: PersistenceConfig{
			DataDir: ".phasepower",
		},
		Logging: LoggingConfig{
			Level:             "info",
			Format:            "text",
			WarningsPerSecond: 5,
			WarningBurst:      20,
		},
	}
}
