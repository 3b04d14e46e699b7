package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/phasepower/internal/cli/tui"
)

var (
	refreshInterval time.Duration
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the last solve interactively",
	Long: `Launch an interactive terminal browser over the last saved solution set:
per-site phase assignments, totals and ratios against the baseline.

Examples:
  phasepower tui                    # Browse the last solve
  phasepower tui --refresh 5s       # Reload while another solve runs`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&refreshInterval, "refresh", 0, "reload interval, 0 to reload only on demand")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		Source:          a.store,
		RefreshInterval: refreshInterval,
		PhaseLabel:      a.cfg.Domain.PhaseLabel,
	})
}
