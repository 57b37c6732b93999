// Package pdf pulls publication metadata out of PDF files.
package pdf

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/facultyhub/pubdir/internal/publication"
)

// searchPages is how many leading pages are scanned for a DOI and year.
const searchPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

var yearPattern = regexp.MustCompile(`\b(19[5-9]\d|20\d\d)\b`)

// Metadata is what could be recovered from a PDF. Empty fields were not found.
type Metadata struct {
	Title string
	DOI   string
	Year  int
}

// URL returns the resolver link for the DOI, or "".
func (m Metadata) URL() string {
	if m.DOI == "" {
		return ""
	}
	return "https://doi.org/" + m.DOI
}

// Fill copies recovered fields into raw where raw leaves them blank.
func (m Metadata) Fill(raw *publication.Raw) {
	if strings.TrimSpace(raw.Title) == "" {
		raw.Title = m.Title
	}
	if strings.TrimSpace(raw.URL) == "" {
		raw.URL = m.URL()
	}
	if len(raw.Year) == 0 && m.Year > 0 {
		raw.Year = []byte(strconv.Itoa(m.Year))
	}
}

// ExtractMetadata reads the leading pages of a PDF. The title is the first
// substantial line of page one; DOI and year are the first matches.
func ExtractMetadata(filePath string) (Metadata, error) {
	text, err := ExtractText(filePath, searchPages)
	if err != nil {
		return Metadata{}, err
	}
	return parseText(text), nil
}

// ExtractText extracts all text from the first N pages of a PDF.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func parseText(text string) Metadata {
	m := Metadata{
		Title: findTitle(text),
		DOI:   findDOI(text),
	}
	if y := yearPattern.FindString(text); y != "" {
		m.Year, _ = strconv.Atoi(y)
	}
	return m
}

// findTitle returns the first substantial line that is not a running header.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) && findDOI(line) == "" {
			return line
		}
	}
	return ""
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "preprint"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
