package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/export"
	"github.com/facultyhub/pubdir/internal/publication"
)

// Export formats.
const (
	FormatJSONL  = "jsonl"
	FormatBibTeX = "bibtex"
)

var (
	exportFormat string
	exportDir    string
	exportEmail  string
	exportAppend string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", FormatJSONL, "Output format: jsonl or bibtex")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory for the JSONL snapshot")
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "Only this faculty member's publications (bibtex)")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append entries missing from this .bib file instead of printing (bibtex)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a JSONL snapshot or BibTeX",
	Long: `Export the directory.

jsonl writes faculty.jsonl and publications.jsonl into --dir; 'pubdir rebuild'
restores a store from them. bibtex prints entries to stdout, or appends the
ones not already present to an existing file.

Examples:
  pubdir export --dir backup/
  pubdir export --format bibtex --email ada@example.edu > ada.bib
  pubdir export --format bibtex --email ada@example.edu --append refs.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// AppendResult is the response for export --append.
type AppendResult struct {
	Path    string `json:"path"`
	Skipped int    `json:"skipped"`
	Added   int    `json:"added"`
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	switch exportFormat {
	case FormatJSONL:
		res, err := a.db.ExportSnapshot(ctx, exportDir)
		if err != nil {
			exitWithError(ExitError, "exporting snapshot: %v", err)
		}
		output(res, func() {
			outputHuman("Exported %d faculty and %d publications to %s\n", res.Faculty, res.Publications, res.Dir)
		})

	case FormatBibTeX:
		var (
			recs []publication.Record
			err  error
		)
		if exportEmail != "" {
			recs, err = a.svc.ListPublications(ctx, exportEmail)
		} else {
			recs, err = a.db.ListAllPublications(ctx)
		}
		if err != nil {
			exitWithServiceError(err)
		}

		if exportAppend == "" {
			fmt.Print(export.ToBibTeXList(recs))
			return nil
		}

		idx, err := export.ParseBibTeXFile(exportAppend)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", exportAppend, err)
		}
		before := len(idx.Keys)
		content := idx.Missing(recs)
		res := AppendResult{Path: exportAppend, Added: len(idx.Keys) - before}
		res.Skipped = len(recs) - res.Added
		if content != "" {
			if err := export.AppendToBibFile(exportAppend, content); err != nil {
				exitWithError(ExitError, "writing %s: %v", exportAppend, err)
			}
		}
		output(res, func() {
			outputHuman("Appended %d entries to %s (%d already present)\n", res.Added, res.Path, res.Skipped)
		})

	default:
		exitWithError(ExitError, "unknown format %q (valid: %s, %s)", exportFormat, FormatJSONL, FormatBibTeX)
	}
	return nil
}
