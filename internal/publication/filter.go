package publication

import "strings"

// TypeAll selects every type in Filter.
const TypeAll = "all"

// Filter returns the records whose title contains query case-insensitively
// and whose type equals typ. An empty query matches every title; an empty typ
// or TypeAll matches every type. The input order is preserved.
func Filter(records []Record, query, typ string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []Record{}
	for _, r := range records {
		if query != "" && !strings.Contains(strings.ToLower(r.Title), query) {
			continue
		}
		if typ != "" && typ != TypeAll && r.Type != typ {
			continue
		}
		out = append(out, r)
	}
	return out
}
