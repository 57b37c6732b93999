package scholar

// AuthorResponse is the subset of a google_scholar_author result we use.
type AuthorResponse struct {
	Error      string      `json:"error,omitempty"`
	Author     *Author     `json:"author,omitempty"`
	Articles   []Article   `json:"articles"`
	Pagination *Pagination `json:"serpapi_pagination,omitempty"`
}

// Author is the profile header of a Google Scholar author page.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliations,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Article is one row of an author's article list. Year arrives as a string
// and may be empty.
type Article struct {
	Title       string   `json:"title"`
	Link        string   `json:"link,omitempty"`
	CitationID  string   `json:"citation_id,omitempty"`
	Authors     string   `json:"authors,omitempty"`
	Publication string   `json:"publication,omitempty"`
	Year        string   `json:"year,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	CitedBy     *CitedBy `json:"cited_by,omitempty"`
}

// CitedBy holds the citation count. Value is null for uncited articles.
type CitedBy struct {
	Value *int   `json:"value"`
	Link  string `json:"link,omitempty"`
}

// Pagination links to the next page of articles, if any.
type Pagination struct {
	Next string `json:"next,omitempty"`
}
