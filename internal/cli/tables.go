package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/phasepower/internal/report"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Write LaTeX model timing tables for the last solve",
	Long: `Render the per-site model optimization and construction times of the
last saved solve as LaTeX tables.

Examples:
  phasepower tables                 # Write into ./tables
  phasepower tables --out paper/    # Write into paper/
  phasepower tables --stdout        # Print instead of writing files`,
	RunE: runTables,
}

var (
	tablesOut    string
	tablesStdout bool
)

func init() {
	tablesCmd.Flags().StringVarP(&tablesOut, "out", "o", "tables", "output directory")
	tablesCmd.Flags().BoolVar(&tablesStdout, "stdout", false, "print tables instead of writing files")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	set, err := a.store.LoadSolutions()
	if err != nil {
		return fmt.Errorf("failed to load solutions (run solve first): %w", err)
	}
	sols := set.Solutions()

	out := cmd.OutOrStdout()
	if tablesStdout {
		for _, t := range report.Timings {
			tex, err := report.Latex(sols, t)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tex)
		}
		return nil
	}

	paths, err := report.WriteLatex(tablesOut, sols)
	if err != nil {
		return err
	}

	if jsonOut {
		return report.JSON(out, map[string][]string{"files": paths})
	}
	for _, p := range paths {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	return nil
}
