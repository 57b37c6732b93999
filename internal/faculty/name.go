package faculty

import "strings"

// NameQuery is a parsed faculty name search.
type NameQuery struct {
	Raw   string // trimmed input
	First string // may be empty for single-word queries
	Last  string
}

// ParseNameQuery parses a search string.
//
// Supported formats:
//   - "Yu"           -> last="Yu"
//   - "Timothy Yu"   -> first="Timothy", last="Yu"
//   - "Yu, Timothy"  -> first="Timothy", last="Yu"
func ParseNameQuery(input string) NameQuery {
	input = strings.TrimSpace(input)
	if input == "" {
		return NameQuery{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return NameQuery{
			Raw:   input,
			Last:  strings.TrimSpace(input[:idx]),
			First: strings.TrimSpace(input[idx+1:]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return NameQuery{Raw: input, Last: parts[0]}
	}
	return NameQuery{
		Raw:   input,
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// Canonical renders the query as "First Last".
func (q NameQuery) Canonical() string {
	return BuildFullName(q.First, q.Last)
}

// Contains reports whether the raw query appears, case-insensitively, in the
// first, last or full name of f.
func (q NameQuery) Contains(f Faculty) bool {
	if q.Raw == "" {
		return false
	}
	needle := strings.ToLower(q.Raw)
	for _, hay := range []string{f.FirstName, f.LastName, f.FullName, BuildFullName(f.FirstName, f.LastName)} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// Matches reports whether f is an exact structured match: last name equal
// (case-insensitive) and, when the query has a first name, the faculty's first
// name starting with it. "Tim Yu" matches Timothy Yu; "Yu" does not match Yujia Chan.
func (q NameQuery) Matches(f Faculty) bool {
	if q.Last == "" || !strings.EqualFold(q.Last, f.LastName) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(f.FirstName), strings.ToLower(q.First))
}

// Best picks the candidate to return for a search: the first structured match
// if any, else the first candidate. It returns false for an empty list.
func (q NameQuery) Best(candidates []Faculty) (Faculty, bool) {
	if len(candidates) == 0 {
		return Faculty{}, false
	}
	for _, f := range candidates {
		if q.Matches(f) {
			return f, true
		}
	}
	return candidates[0], true
}
