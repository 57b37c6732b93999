package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	syncAll     bool
	syncTimeout time.Duration
)

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Sync every faculty member with a Google Scholar link")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute, "Overall time limit")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [facultyId]",
	Short: "Import publications from Google Scholar",
	Long: `Fetch a faculty member's Google Scholar articles, merge them with the
stored publications and store the ones not already present.

Requires SERPAPI_KEY.

Examples:
  pubdir sync 25012345
  pubdir sync --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if syncAll {
			return cobra.NoArgs(cmd, args)
		}
		if len(args) != 1 {
			return fmt.Errorf("requires a facultyId or --all")
		}
		return nil
	},
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, syncTimeout)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	if syncAll {
		res, err := a.svc.SyncAll(ctx)
		if err != nil {
			exitWithServiceError(err)
		}
		output(res, func() {
			outputHuman("Synced %d faculty (%d failed), %d publications added\n", res.Synced, res.Failed, res.Added)
		})
		return nil
	}

	res, err := a.svc.SyncScholar(ctx, args[0])
	if err != nil {
		exitWithServiceError(err)
	}
	output(res, func() {
		outputHuman("Added %d, refreshed %d (%d duplicates merged)\n", res.Added, res.Refreshed, res.Merge.Duplicates)
		outputHuman("h-index %d, i10-index %d, %d citations over %d publications\n",
			res.Metrics.HIndex, res.Metrics.I10Index, res.Metrics.TotalCitations, res.Metrics.TotalPublications)
	})
	return nil
}
