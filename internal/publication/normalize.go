package publication

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Raw is the loosely typed publication shape accepted from forms and API
// clients. Numeric fields may arrive as numbers or strings and authors as
// either a list or a single comma-delimited string.
type Raw struct {
	ID           string          `json:"id,omitempty"`
	FacultyEmail string          `json:"facultyEmail,omitempty"`
	Title        string          `json:"title"`
	Authors      json.RawMessage `json:"authors,omitempty"`
	Journal      string          `json:"journal,omitempty"`
	Year         json.RawMessage `json:"year,omitempty"`
	Citations    json.RawMessage `json:"citations,omitempty"`
	URL          string          `json:"url,omitempty"`
	Abstract     string          `json:"abstract,omitempty"`
	Type         string          `json:"type,omitempty"`
}

// FromRaw coerces a Raw payload into a Record. Malformed numbers never fail:
// citations fall back to 0 and the year becomes absent. Only an authors value
// that is neither a string nor a list of strings is rejected.
func FromRaw(raw Raw) (Record, error) {
	authors, err := parseAuthorsJSON(raw.Authors)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:           raw.ID,
		FacultyEmail: strings.TrimSpace(raw.FacultyEmail),
		Title:        strings.TrimSpace(raw.Title),
		Authors:      authors,
		Journal:      strings.TrimSpace(raw.Journal),
		Year:         ParseYear(decodeScalar(raw.Year)),
		Citations:    ParseCitationCount(decodeScalar(raw.Citations)),
		URL:          strings.TrimSpace(raw.URL),
		Abstract:     raw.Abstract,
		Type:         strings.TrimSpace(raw.Type),
	}, nil
}

// ParseCitationCount coerces v into a non-negative citation count.
// Missing, non-numeric, non-finite and negative values all yield 0.
func ParseCitationCount(v any) int {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParseYear coerces v into a publication year. Missing, non-numeric, zero and
// negative values yield nil (absent).
func ParseYear(v any) *int {
	f, ok := toFloat(v)
	if !ok || f < 1 || f > 9999 {
		return nil
	}
	y := int(f)
	return &y
}

// SplitAuthors splits a comma-delimited author string, trimming each segment
// and dropping empty ones.
func SplitAuthors(s string) []string {
	parts := strings.Split(s, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

// NormalizeAuthors trims every entry of a list and drops empty ones.
func NormalizeAuthors(list []string) []string {
	authors := make([]string, 0, len(list))
	for _, a := range list {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

func parseAuthorsJSON(data json.RawMessage) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []string{}, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return SplitAuthors(s), nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return NormalizeAuthors(list), nil
	}

	return nil, fmt.Errorf("authors must be a string or a list of strings")
}

// decodeScalar turns a raw JSON scalar into a json.Number, string, or nil.
func decodeScalar(data json.RawMessage) any {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return float64(i), true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
