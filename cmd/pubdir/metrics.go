package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(metricsCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <email>",
	Short: "Show citation metrics for a faculty member",
	Long: `Show total publications, total citations, h-index and i10-index for the
publications attributed to email, with breakdowns by type, year and venue.

Examples:
  pubdir metrics ada@example.edu
  pubdir metrics ada@example.edu --human`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func runMetrics(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	d, err := a.svc.Dashboard(ctx, args[0])
	if err != nil {
		exitWithServiceError(err)
	}
	output(d, func() {
		if err := printSummary(d.Summary); err != nil {
			exitWithError(ExitError, "rendering table: %v", err)
		}
		printBreakdown(d.Breakdown)
	})
	return nil
}
