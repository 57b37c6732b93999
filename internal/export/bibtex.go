// Package export renders publication lists to BibTeX.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/facultyhub/pubdir/internal/publication"
)

// ToBibTeX converts a publication to a BibTeX entry with the given citation key.
func ToBibTeX(rec publication.Record, key string) string {
	entryType := determineEntryType(rec)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(rec.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	if rec.Journal != "" {
		fieldName := "journal"
		switch entryType {
		case "inproceedings":
			fieldName = "booktitle"
		case "book", "misc":
			fieldName = "publisher"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Journal)))
	}

	if rec.HasYear() {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.YearValue()))
	}

	if rec.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", rec.URL))
	}

	if rec.Type == publication.TypePatent {
		b.WriteString("  note = {Patent},\n")
	}

	if rec.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(rec.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts publications to BibTeX, assigning each a unique
// citation key.
func ToBibTeXList(recs []publication.Record) string {
	used := make(map[string]bool, len(recs))
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec, UniqueKey(rec, used)))
	}
	return strings.Join(entries, "\n")
}

// CitationKey builds a key of the form Lastname2021word from the first
// author's last name, the year and the first significant title word.
func CitationKey(rec publication.Record) string {
	var b strings.Builder
	if len(rec.Authors) > 0 {
		parts := strings.Fields(rec.Authors[0])
		if len(parts) > 0 {
			b.WriteString(keyPart(parts[len(parts)-1], true))
		}
	}
	if b.Len() == 0 {
		b.WriteString("Anon")
	}
	if rec.HasYear() {
		b.WriteString(fmt.Sprintf("%d", rec.YearValue()))
	}
	for _, w := range strings.Fields(rec.Title) {
		w = keyPart(w, false)
		if len(w) > 3 || (w != "" && !stopWords[w]) {
			b.WriteString(w)
			break
		}
	}
	return b.String()
}

// UniqueKey returns CitationKey(rec), suffixed with a, b, ... when the key is
// already in used, and records the result in used.
func UniqueKey(rec publication.Record, used map[string]bool) string {
	base := CitationKey(rec)
	key := base
	for i := 0; used[key]; i++ {
		key = base + suffix(i)
	}
	used[key] = true
	return key
}

func suffix(i int) string {
	s := ""
	for {
		s = string(rune('a'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			return s
		}
	}
}

var stopWords = map[string]bool{"a": true, "an": true, "the": true, "on": true, "of": true, "in": true, "for": true}

// keyPart keeps ASCII letters and digits; capitalize upper-cases the first rune.
func keyPart(s string, capitalize bool) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	out := b.String()
	if capitalize && out != "" {
		out = strings.ToUpper(out[:1]) + out[1:]
	}
	return out
}

// determineEntryType returns the BibTeX entry type for a publication.
func determineEntryType(rec publication.Record) string {
	switch rec.Type {
	case publication.TypeBook:
		return "book"
	case publication.TypePatent:
		return "misc"
	case publication.TypeConference:
		return "inproceedings"
	}

	venue := strings.ToLower(rec.Journal)
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// formatAuthors joins author names in BibTeX style.
func formatAuthors(authors []string) string {
	escaped := make([]string, len(authors))
	for i, a := range authors {
		escaped[i] = escapeLatex(a)
	}
	return strings.Join(escaped, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
