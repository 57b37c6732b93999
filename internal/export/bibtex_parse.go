package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/publication"
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// Titles maps normalized titles to citation keys
	Titles map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys:   make(map[string]bool),
		Titles: make(map[string]string),
	}
}

// HasEntry reports whether a publication with this title is already in the
// file. Titles are compared the way the merge engine compares them.
func (idx *BibTeXIndex) HasEntry(rec publication.Record) bool {
	_, ok := idx.Titles[merge.NormalizeTitle(rec.Title)]
	return ok
}

// Missing returns the publications not yet present in the index, with
// citation keys that do not clash with existing entries.
func (idx *BibTeXIndex) Missing(recs []publication.Record) string {
	var entries []string
	for _, rec := range recs {
		if idx.HasEntry(rec) {
			continue
		}
		key := UniqueKey(rec, idx.Keys)
		idx.Titles[merge.NormalizeTitle(rec.Title)] = key
		entries = append(entries, ToBibTeX(rec, key))
	}
	return strings.Join(entries, "\n")
}

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Match title field: title = {value} or title = "value"
	titleFieldRegex = regexp.MustCompile(`(?i)^\s*title\s*=\s*[\{"](.+?)[\}"]\s*,?\s*$`)
)

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist or is empty.
// Only single-line title fields are recognized.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := titleFieldRegex.FindStringSubmatch(line); len(matches) > 1 && currentKey != "" {
			title := unescapeLatex(strings.Trim(matches[1], "{}"))
			if norm := merge.NormalizeTitle(title); norm != "" {
				idx.Titles[norm] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

func unescapeLatex(s string) string {
	return strings.NewReplacer(`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_", `\{`, "{", `\}`, "}").Replace(s)
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
