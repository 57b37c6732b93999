package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <dir>",
	Short: "Rebuild the database from a JSONL snapshot",
	Long: `Replace every faculty member and publication in the database with the
contents of faculty.jsonl and publications.jsonl in dir.

Use this to restore a backup written by 'pubdir export' or to load a
hand-edited snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
		exitWithError(ExitError, "not a directory: %s", args[0])
	}

	a := mustOpenApp(ctx)
	defer a.Close()

	res, err := a.db.RebuildFromSnapshot(ctx, args[0])
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}
	output(res, func() {
		outputHuman("Rebuilt database: %d faculty, %d publications\n", res.Faculty, res.Publications)
	})
	return nil
}
