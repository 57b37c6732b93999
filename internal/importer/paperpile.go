// Package importer reads publication lists exported by reference managers.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/facultyhub/pubdir/internal/publication"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string   `json:"_id"`
	Citekey   string   `json:"citekey"`
	DOI       string   `json:"doi"`
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract"`
	Journal   string   `json:"journal"`
	PubType   string   `json:"pubtype"`
	URL       []string `json:"url"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// ParsePaperpile parses a Paperpile JSON export into publication payloads.
// Entries that cannot be converted are reported and skipped.
func ParsePaperpile(data []byte) ([]publication.Raw, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var raws []publication.Raw
	var errs []error

	for i, entry := range entries {
		raw, err := paperpileEntryToRaw(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		raws = append(raws, raw)
	}

	return raws, errs
}

// paperpileEntryToRaw converts a Paperpile entry. Only the title is required;
// the year and citation count go through the usual ingestion coercion.
func paperpileEntryToRaw(entry PaperpileEntry) (publication.Raw, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return publication.Raw{}, fmt.Errorf("missing required field 'title'")
	}

	authors := make([]string, 0, len(entry.Author))
	for _, a := range entry.Author {
		if name := strings.TrimSpace(a.First + " " + a.Last); name != "" {
			authors = append(authors, name)
		}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return publication.Raw{}, err
	}

	raw := publication.Raw{
		Title:    entry.Title,
		Authors:  authorsJSON,
		Journal:  entry.Journal,
		URL:      entryURL(entry),
		Abstract: entry.Abstract,
		Type:     publicationType(entry.PubType),
	}
	if y := entry.Published.Year.String(); y != "" {
		raw.Year = []byte(strconv.Quote(y))
	}
	return raw, nil
}

// entryURL prefers the DOI resolver link over the first stored URL.
func entryURL(entry PaperpileEntry) string {
	if entry.DOI != "" {
		return "https://doi.org/" + entry.DOI
	}
	if len(entry.URL) > 0 {
		return entry.URL[0]
	}
	return ""
}

// publicationType maps Paperpile's RIS-style pubtype codes.
func publicationType(pubtype string) string {
	switch strings.ToUpper(strings.TrimSpace(pubtype)) {
	case "CONF", "CPAPER", "INPROCEEDINGS":
		return publication.TypeConference
	case "BOOK", "CHAP", "EDBOOK":
		return publication.TypeBook
	case "PAT", "PATENT":
		return publication.TypePatent
	}
	return publication.TypePaper
}
