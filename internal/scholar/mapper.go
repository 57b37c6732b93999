package scholar

import (
	"strings"

	"github.com/facultyhub/pubdir/internal/publication"
)

// MapArticle converts a provider article into a publication attributed to
// email. Provider records are always typed as papers.
func MapArticle(a Article, email string) publication.Record {
	citations := 0
	if a.CitedBy != nil && a.CitedBy.Value != nil {
		citations = publication.ParseCitationCount(*a.CitedBy.Value)
	}
	return publication.Record{
		FacultyEmail: email,
		Title:        strings.TrimSpace(a.Title),
		Authors:      publication.SplitAuthors(a.Authors),
		Journal:      strings.TrimSpace(a.Publication),
		Year:         publication.ParseYear(a.Year),
		Citations:    citations,
		URL:          a.Link,
		Abstract:     a.Snippet,
		Type:         publication.TypePaper,
		Source:       publication.SourceScholar,
	}
}

// MapArticles converts every article, preserving provider order.
func MapArticles(articles []Article, email string) []publication.Record {
	recs := make([]publication.Record, 0, len(articles))
	for _, a := range articles {
		recs = append(recs, MapArticle(a, email))
	}
	return recs
}
