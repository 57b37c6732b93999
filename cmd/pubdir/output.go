package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/facultyhub/pubdir/internal/config"
	"github.com/facultyhub/pubdir/internal/directory"
	"github.com/facultyhub/pubdir/internal/metrics"
	"github.com/facultyhub/pubdir/internal/publication"
)

// Title truncation lengths by context
const (
	TableTitleMaxLen = 60
	TableVenueMaxLen = 30
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// output prints v as JSON, or calls human when --human is set.
func output(v any, human func()) {
	if humanOutput {
		human()
		return
	}
	if err := outputJSON(v); err != nil {
		exitWithError(ExitError, "writing output: %v", err)
	}
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		_ = outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithServiceError exits with the code matching err's kind.
func exitWithServiceError(err error) {
	exitWithError(exitCodeFor(err), "%s", directory.Message(err, err.Error()))
}

// exitCodeFor maps service and config errors onto exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case errors.Is(err, directory.ErrValidation):
		return ExitDataError
	case errors.Is(err, directory.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, directory.ErrProvider):
		return ExitProviderError
	}
	return ExitError
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printPublicationTable prints publications one per row.
func printPublicationTable(recs []publication.Record) error {
	if len(recs) == 0 {
		outputHuman("No publications.\n")
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Title", "Venue", "Year", "Type", "Citations", "Source"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignRight, tw.AlignLeft}
	})

	var data [][]string
	for i, r := range recs {
		year := ""
		if r.HasYear() {
			year = strconv.Itoa(r.YearValue())
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateString(r.Title, TableTitleMaxLen),
			truncateString(r.Journal, TableVenueMaxLen),
			year,
			metrics.DisplayType(r.Type),
			strconv.Itoa(r.Citations),
			r.Source,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printSummary prints the headline metrics as a two-column table.
func printSummary(s metrics.Summary) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Metric", "Value"})
	data := [][]string{
		{"Publications", strconv.Itoa(s.TotalPublications)},
		{"Citations", strconv.Itoa(s.TotalCitations)},
		{"h-index", strconv.Itoa(s.HIndex)},
		{"i10-index", strconv.Itoa(s.I10Index)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printBreakdown prints the per-type, per-year and per-venue counts.
func printBreakdown(b metrics.Breakdown) {
	if len(b.Types) > 0 {
		outputHuman("\nBy type:\n")
		for _, t := range b.Types {
			outputHuman("  %-20s %d\n", t.Name, t.Count)
		}
	}
	if len(b.Years) > 0 {
		outputHuman("\nBy year:\n")
		for _, y := range b.Years {
			outputHuman("  %-20d %d\n", y.Year, y.Count)
		}
	}
	if len(b.Journals) > 0 {
		outputHuman("\nTop venues:\n")
		for _, j := range b.Journals {
			outputHuman("  %-40s %d\n", truncateString(j.Name, 40), j.Count)
		}
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(r[:maxLen-3])) + "..."
}
