package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/directory"
	"github.com/facultyhub/pubdir/internal/importer"
)

var importFormat string

func init() {
	publicationImportCmd.Flags().StringVar(&importFormat, "format", "paperpile", "Import format (paperpile)")
	publicationCmd.AddCommand(publicationImportCmd)
}

var publicationImportCmd = &cobra.Command{
	Use:   "import <email> <file>",
	Short: "Import publications from a reference manager export",
	Long: `Import publications from a reference manager export.

Titles already on record for the faculty member are skipped.

Usage:
  pubdir publication import ada@example.edu export.json

Supported formats:
  paperpile  - Paperpile JSON export`,
	Args: cobra.ExactArgs(2),
	RunE: runPublicationImport,
}

// PublicationImportResult is the import summary plus entries that could not
// be parsed.
type PublicationImportResult struct {
	directory.ImportResult
	Errors []string `json:"errors"`
}

func runPublicationImport(cmd *cobra.Command, args []string) error {
	if importFormat != "paperpile" {
		exitWithError(ExitError, "unknown format: %s", importFormat)
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}
	raws, parseErrors := importer.ParsePaperpile(data)
	if len(parseErrors) > 0 && len(raws) == 0 {
		exitWithError(ExitDataError, "failed to parse any publications: %v", parseErrors[0])
	}

	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	res, err := a.svc.ImportPublications(ctx, args[0], raws)
	if err != nil {
		exitWithServiceError(err)
	}

	result := PublicationImportResult{ImportResult: res, Errors: make([]string, 0, len(parseErrors))}
	for _, e := range parseErrors {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Invalid += len(parseErrors)

	output(result, func() {
		outputHuman("Imported %d publication(s)\n", result.Added)
		outputHuman("  Duplicates skipped: %d\n", result.Duplicates)
		outputHuman("  Invalid: %d\n", result.Invalid)
		for _, e := range result.Errors {
			outputHuman("  - %s\n", e)
		}
	})
	return nil
}
