package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/phasepower/internal/report"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Integrate the raw dataset and cache the measurement table",
	Long: `Discover trace and event files, integrate the energy of every phase of every
run and write the uncleaned measurement table to the data directory.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runProcess(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext(cmd)
	defer stop()

	data, err := a.process(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return report.JSON(out, struct {
			Dir           string   `json:"dir"`
			KnownConfigs  []string `json:"known_configs"`
			MaxIterations int      `json:"max_iterations"`
			Stats         any      `json:"stats"`
		}{a.store.Dir(), data.KnownConfigs, data.MaxIterations, data.Stats})
	}

	a.warn.Flush()
	fmt.Fprintf(out, "Processed data written to %s\n", a.store.Dir())
	fmt.Fprintf(out, "Configurations found: %v (max iterations %d)\n", data.KnownConfigs, data.MaxIterations)
	return report.Stats(out, data.Stats)
}
