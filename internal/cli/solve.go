package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/phasepower/internal/monitor"
	"github.com/haskel/phasepower/internal/report"
	"github.com/haskel/phasepower/internal/storage"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Select per-phase core configurations for every site",
	Long: `Load the processed measurement table (processing the dataset when no
matching cache exists), drop outliers, average the iteration window and solve
one selection program per site under the load-time deadline.

Examples:
  phasepower solve                      # Use the configured deadline
  phasepower solve --deadline 2500      # Tighter deadline
  phasepower solve --iteration 3        # Solve a single iteration
  phasepower solve --refresh --json     # Reprocess raw data first`,
	RunE: runSolve,
}

var (
	solveIteration int
	solveDeadline  float64
	solveGovernor  string
	solveWorkers   int
	solveRefresh   bool
	solveNoSave    bool
)

func init() {
	solveCmd.Flags().IntVar(&solveIteration, "iteration", -1, "solve a single iteration instead of the averaged window")
	solveCmd.Flags().Float64Var(&solveDeadline, "deadline", 0, "load-time deadline per site in ms (overrides config)")
	solveCmd.Flags().StringVar(&solveGovernor, "governor", "", "governor to solve for (overrides config)")
	solveCmd.Flags().IntVar(&solveWorkers, "workers", 0, "sites solved concurrently, 0 for one per core (overrides config)")
	solveCmd.Flags().BoolVar(&solveRefresh, "refresh", false, "reprocess the raw dataset even if cached")
	solveCmd.Flags().BoolVar(&solveNoSave, "no-save", false, "do not persist the solutions")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if cmd.Flags().Changed("deadline") {
		a.cfg.Solver.DeadlineMS = solveDeadline
	}
	if cmd.Flags().Changed("governor") {
		a.cfg.Solver.Governor = solveGovernor
	}
	if cmd.Flags().Changed("workers") {
		a.cfg.Solver.Workers = solveWorkers
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid solve options: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	data, err := a.dataset(ctx, solveRefresh)
	if err != nil {
		return err
	}

	tbl, err := data.Table()
	if err != nil {
		return err
	}

	var iteration *int
	if solveIteration >= 0 {
		if tbl, err = tbl.ExtractIteration(solveIteration); err != nil {
			return err
		}
		it := solveIteration
		iteration = &it
	}

	sols, agg, err := a.solve(ctx, tbl)
	if err != nil {
		return err
	}

	host, err := monitor.Snapshot(monitor.Default()...)
	if err != nil {
		a.log.Debug("host snapshot incomplete", "error", err)
	}

	set := &storage.SolutionSet{
		Governor:  a.cfg.Solver.Governor,
		Deadline:  a.cfg.Solver.DeadlineMS,
		Window:    agg.Window(),
		Iteration: iteration,
		Phases:    agg.Domain().Phases,
		Host:      host,
		Sites:     storage.Records(sols),
	}
	if !solveNoSave {
		if err := a.store.SaveSolutions(set); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return report.JSON(out, set)
	}

	a.warn.Flush()
	if err := report.Assignments(out, sols, a.cfg.Domain.PhaseLabel); err != nil {
		return err
	}
	return report.Summary(out, sols)
}
