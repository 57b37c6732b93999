// Package metrics computes bibliometric summaries and chart groupings over a
// faculty member's publication list.
//
// Every function here is a pure projection of its input: callers recompute on
// each change to the record list instead of patching a previous result.
package metrics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/facultyhub/pubdir/internal/publication"
)

// TopJournals is the number of venues kept in the journal grouping.
const TopJournals = 10

// I10Threshold is the citation count a work needs to count toward the i10-index.
const I10Threshold = 10

// Summary is the headline bibliometric snapshot for one record list.
type Summary struct {
	TotalPublications int `json:"totalPublications"`
	TotalCitations    int `json:"totalCitations"`
	HIndex            int `json:"hIndex"`
	I10Index          int `json:"i10Index"`
}

// Compute returns the Summary for records. An empty list yields all zeros.
// Citation counts are assumed to be normalized already (see publication.ParseCitationCount).
func Compute(records []publication.Record) Summary {
	citations := make([]int, len(records))
	total := 0
	for i, r := range records {
		citations[i] = r.Citations
		total += r.Citations
	}
	return Summary{
		TotalPublications: len(records),
		TotalCitations:    total,
		HIndex:            HIndex(citations),
		I10Index:          I10Index(citations),
	}
}

// HIndex returns the largest h such that at least h of the counts are >= h.
// The input slice is not modified.
func HIndex(citations []int) int {
	sorted := append([]int(nil), citations...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	h := 0
	for i, c := range sorted {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

// I10Index counts the works with at least ten citations.
func I10Index(citations []int) int {
	n := 0
	for _, c := range citations {
		if c >= I10Threshold {
			n++
		}
	}
	return n
}

// DisplayType upper-cases the first letter of a stored type label for charts.
// It never participates in grouping.
func DisplayType(t string) string {
	r, size := utf8.DecodeRuneInString(t)
	if r == utf8.RuneError {
		return t
	}
	return string(unicode.ToUpper(r)) + t[size:]
}

// TypeCount is one bucket of the by-type grouping.
type TypeCount struct {
	Type  string `json:"type"` // raw stored value, the grouping key
	Name  string `json:"name"` // display label
	Count int    `json:"count"`
}

// YearCount is one bucket of the by-year grouping.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// JournalCount is one bucket of the by-venue grouping.
type JournalCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Breakdown holds the chart groupings for one record list.
type Breakdown struct {
	Types    []TypeCount    `json:"typesData"`
	Years    []YearCount    `json:"yearsData"`
	Journals []JournalCount `json:"journalsData"`
}

// ComputeBreakdown groups records by type, year and venue.
//
// Types are grouped case-sensitively on the raw value, in first-seen order.
// Records without a year are left out of Years, which is sorted ascending.
// Records without a venue are left out of Journals, which is sorted by
// descending count (ties keep first-seen order) and cut to TopJournals.
func ComputeBreakdown(records []publication.Record) Breakdown {
	b := Breakdown{
		Types:    []TypeCount{},
		Years:    []YearCount{},
		Journals: []JournalCount{},
	}

	typeIdx := make(map[string]int)
	yearIdx := make(map[int]int)
	journalIdx := make(map[string]int)

	for _, r := range records {
		if i, ok := typeIdx[r.Type]; ok {
			b.Types[i].Count++
		} else {
			typeIdx[r.Type] = len(b.Types)
			b.Types = append(b.Types, TypeCount{Type: r.Type, Name: DisplayType(r.Type), Count: 1})
		}

		if r.Year != nil {
			if i, ok := yearIdx[*r.Year]; ok {
				b.Years[i].Count++
			} else {
				yearIdx[*r.Year] = len(b.Years)
				b.Years = append(b.Years, YearCount{Year: *r.Year, Count: 1})
			}
		}

		if venue := strings.TrimSpace(r.Journal); venue != "" {
			if i, ok := journalIdx[venue]; ok {
				b.Journals[i].Count++
			} else {
				journalIdx[venue] = len(b.Journals)
				b.Journals = append(b.Journals, JournalCount{Name: venue, Count: 1})
			}
		}
	}

	sort.Slice(b.Years, func(i, j int) bool { return b.Years[i].Year < b.Years[j].Year })
	sort.SliceStable(b.Journals, func(i, j int) bool { return b.Journals[i].Count > b.Journals[j].Count })
	if len(b.Journals) > TopJournals {
		b.Journals = b.Journals[:TopJournals]
	}

	return b
}

// Dashboard bundles the summary and groupings served to the UI.
type Dashboard struct {
	Summary   Summary   `json:"stats"`
	Breakdown Breakdown `json:"chartData"`
}

// BuildDashboard computes both projections from the same record list.
func BuildDashboard(records []publication.Record) Dashboard {
	return Dashboard{
		Summary:   Compute(records),
		Breakdown: ComputeBreakdown(records),
	}
}
