package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/publication"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find a faculty member by name",
	Long: `Find the faculty member best matching name and list their publications.

Examples:
  pubdir search "Ada Lovelace"
  pubdir search "Lovelace, Ada" --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// SearchResult is the response for the search command.
type SearchResult struct {
	Faculty      *faculty.Faculty     `json:"faculty"`
	Publications []publication.Record `json:"publications"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	f, pubs, err := a.svc.Search(ctx, strings.Join(args, " "))
	if err != nil {
		exitWithServiceError(err)
	}
	output(SearchResult{Faculty: f, Publications: pubs}, func() {
		outputHuman("%s <%s> (faculty %s)\n\n", f.FullName, f.Email, f.FacultyID)
		if err := printPublicationTable(pubs); err != nil {
			exitWithError(ExitError, "rendering table: %v", err)
		}
	})
	return nil
}
