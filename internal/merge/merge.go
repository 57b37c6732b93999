// Package merge combines locally curated publications with records fetched
// from a scholarly provider into one list without duplicate works.
package merge

import (
	"strings"

	"github.com/facultyhub/pubdir/internal/publication"
)

// Policy decides which record survives when a local and an external record
// share a normalized title.
type Policy int

const (
	// LocalWins keeps the manually curated record on collision.
	LocalWins Policy = iota
	// ExternalWins lets the provider's record overwrite the local one.
	ExternalWins
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case LocalWins:
		return "local-wins"
	case ExternalWins:
		return "external-wins"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a config value to a Policy. Unknown values fall back to LocalWins.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), ExternalWins.String()) {
		return ExternalWins
	}
	return LocalWins
}

// NormalizeTitle is the dedup key: surrounding whitespace trimmed, inner runs
// of whitespace collapsed to one space, lower-cased. Punctuation is kept, so
// "Deep Nets." and "Deep Nets" stay distinct.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// Stats describes what a merge did.
type Stats struct {
	Local      int `json:"local"`
	External   int `json:"external"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
	Overwrites int `json:"overwrites"` // collisions resolved in favour of the external record
	Invalid    int `json:"invalid"`    // records skipped for a blank title
}

// Result is the merged list plus stats.
type Result struct {
	Records []publication.Record
	Stats   Stats
}

// orderedSet maps a normalized title to a record while remembering the
// position of the title's first occurrence.
type orderedSet struct {
	index   map[string]int
	records []publication.Record
	local   []bool
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		index:   make(map[string]int, capacity),
		records: make([]publication.Record, 0, capacity),
		local:   make([]bool, 0, capacity),
	}
}

// MergeAndDedup merges local and external records under LocalWins.
// See Merge for the full rules.
func MergeAndDedup(local, external []publication.Record) []publication.Record {
	return Merge(local, external, LocalWins).Records
}

// Merge combines local and external into one list keyed by NormalizeTitle.
//
// Output order is the order in which each title is first seen, scanning local
// then external. Within a single source a later duplicate replaces an earlier
// one. Across sources the policy decides. Records with a blank title are
// skipped. Neither input is modified and the output shares no memory with them.
func Merge(local, external []publication.Record, policy Policy) Result {
	set := newOrderedSet(len(local) + len(external))
	stats := Stats{Local: len(local), External: len(external)}

	add := func(rec publication.Record, fromLocal bool) {
		key := NormalizeTitle(rec.Title)
		if key == "" {
			stats.Invalid++
			return
		}

		i, seen := set.index[key]
		if !seen {
			set.index[key] = len(set.records)
			set.records = append(set.records, rec.Clone())
			set.local = append(set.local, fromLocal)
			return
		}

		stats.Duplicates++
		switch {
		case set.local[i] == fromLocal:
			set.records[i] = rec.Clone()
		case policy == ExternalWins:
			set.records[i] = rec.Clone()
			set.local[i] = false
			stats.Overwrites++
		}
	}

	for _, rec := range local {
		add(rec, true)
	}
	for _, rec := range external {
		add(rec, false)
	}

	stats.Unique = len(set.records)
	return Result{Records: set.records, Stats: stats}
}

// NewOnly returns the records of incoming whose normalized title does not
// appear in existing, deduplicated among themselves (first wins). It is how a
// provider sync decides which records to insert.
func NewOnly(existing, incoming []publication.Record) []publication.Record {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, rec := range existing {
		seen[NormalizeTitle(rec.Title)] = true
	}

	var fresh []publication.Record
	for _, rec := range incoming {
		key := NormalizeTitle(rec.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, rec.Clone())
	}
	return fresh
}
