package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/pdf"
	"github.com/facultyhub/pubdir/internal/publication"
)

const DefaultSearchLimit = 50

var (
	pubEmail     string
	pubTitle     string
	pubAuthors   string
	pubJournal   string
	pubYear      string
	pubCitations string
	pubURL       string
	pubAbstract  string
	pubType      string
	pubPDF       string

	listQuery string
	listType  string

	searchLimit int
)

func init() {
	addCmd := publicationAddCmd
	addCmd.Flags().StringVar(&pubEmail, "email", "", "Faculty email (required)")
	addCmd.Flags().StringVar(&pubTitle, "title", "", "Title")
	addCmd.Flags().StringVar(&pubAuthors, "authors", "", "Comma-separated authors")
	addCmd.Flags().StringVar(&pubJournal, "journal", "", "Journal or venue")
	addCmd.Flags().StringVar(&pubYear, "year", "", "Publication year")
	addCmd.Flags().StringVar(&pubCitations, "citations", "", "Citation count")
	addCmd.Flags().StringVar(&pubURL, "url", "", "Link to the publication")
	addCmd.Flags().StringVar(&pubAbstract, "abstract", "", "Abstract")
	addCmd.Flags().StringVar(&pubType, "type", publication.TypePaper, "Type: paper, patent, book or conference")
	addCmd.Flags().StringVar(&pubPDF, "pdf", "", "Fill missing title, year and DOI link from a PDF")
	_ = addCmd.MarkFlagRequired("email")

	publicationListCmd.Flags().StringVar(&listQuery, "query", "", "Only titles containing this text")
	publicationListCmd.Flags().StringVar(&listType, "type", publication.TypeAll, "Only this type ("+publication.TypeAll+" for any)")

	publicationSearchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results")

	publicationCmd.AddCommand(addCmd, publicationListCmd, publicationSearchCmd, publicationDeleteCmd)
	rootCmd.AddCommand(publicationCmd)
}

var publicationCmd = &cobra.Command{
	Use:   "publication",
	Short: "Manage publications",
}

var publicationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a publication by hand",
	Long: `Add a publication for a faculty member.

Examples:
  pubdir publication add --email ada@example.edu --title "Notes" --year 1843
  pubdir publication add --email ada@example.edu --pdf paper.pdf --type conference`,
	Args: cobra.NoArgs,
	RunE: runPublicationAdd,
}

var publicationListCmd = &cobra.Command{
	Use:   "list <email>",
	Short: "List a faculty member's publications",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublicationList,
}

var publicationSearchCmd = &cobra.Command{
	Use:   "search <email> <query>",
	Short: "Full-text search over a faculty member's publications",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPublicationSearch,
}

var publicationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublicationDelete,
}

// rawFromFlags builds the loosely typed payload the service normalizes.
// Numeric flags are passed as JSON strings so bad input is coerced the
// same way as API input.
func rawFromFlags() publication.Raw {
	raw := publication.Raw{
		Title:    pubTitle,
		Journal:  pubJournal,
		URL:      pubURL,
		Abstract: pubAbstract,
		Type:     pubType,
	}
	if pubAuthors != "" {
		raw.Authors, _ = json.Marshal(pubAuthors)
	}
	if pubYear != "" {
		raw.Year, _ = json.Marshal(pubYear)
	}
	if pubCitations != "" {
		raw.Citations, _ = json.Marshal(pubCitations)
	}
	return raw
}

func runPublicationAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	raw := rawFromFlags()
	if pubPDF != "" {
		meta, err := pdf.ExtractMetadata(pubPDF)
		if err != nil {
			exitWithError(ExitDataError, "reading PDF: %v", err)
		}
		meta.Fill(&raw)
	}

	a := mustOpenApp(ctx)
	defer a.Close()

	rec, err := a.svc.AddPublication(ctx, pubEmail, raw)
	if err != nil {
		exitWithServiceError(err)
	}
	output(rec, func() {
		outputHuman("Added %s: %s\n", rec.ID, rec.Title)
	})
	return nil
}

func runPublicationList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	recs, err := a.svc.FilterPublications(ctx, args[0], listQuery, listType)
	if err != nil {
		exitWithServiceError(err)
	}
	output(recs, func() {
		if err := printPublicationTable(recs); err != nil {
			exitWithError(ExitError, "rendering table: %v", err)
		}
	})
	return nil
}

func runPublicationSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	query := strings.Join(args[1:], " ")
	recs, err := a.svc.SearchPublications(ctx, args[0], query, searchLimit)
	if err != nil {
		exitWithServiceError(err)
	}
	output(recs, func() {
		outputHuman("%d result(s) for %q\n", len(recs), query)
		if err := printPublicationTable(recs); err != nil {
			exitWithError(ExitError, "rendering table: %v", err)
		}
	})
	return nil
}

func runPublicationDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	if err := a.svc.DeletePublication(ctx, args[0]); err != nil {
		exitWithServiceError(err)
	}
	output(map[string]string{"status": "deleted", "id": args[0]}, func() {
		outputHuman("Deleted %s\n", args[0])
	})
	return nil
}
