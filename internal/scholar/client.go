// Package scholar fetches an author's article list from Google Scholar through
// the SerpApi google_scholar_author engine.
package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the SerpApi search endpoint.
	BaseURL = "https://serpapi.com/search.json"

	// Engine selects the author-profile scraper.
	Engine = "google_scholar_author"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is requests per second against the provider.
	DefaultRateLimit = 1.0

	// PageSize is the number of articles requested per page (provider maximum).
	PageSize = 100

	// DefaultMaxPages bounds pagination for very prolific authors.
	DefaultMaxPages = 5

	// DefaultCacheTTL is how long a fetched article list is reused.
	DefaultCacheTTL = 6 * time.Hour
)

// Client is a rate-limited HTTP client for the scholar provider.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	maxPages   int
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMaxPages bounds how many article pages are fetched per author.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithCache reuses article lists for ttl.
func WithCache(cache Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new scholar client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    BaseURL,
		maxPages:   DefaultMaxPages,
		cacheTTL:   DefaultCacheTTL,
		logger:     slog.Default(),
	}

	if key := os.Getenv("SERPAPI_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, authorID string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, authorID)
	case resp.StatusCode >= 400:
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var body AuthorResponse
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil && json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, AuthorID: authorID}
	}
	return nil
}

// fetchPage requests one page of an author's articles.
func (c *Client) fetchPage(ctx context.Context, authorID string, start int) (*AuthorResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("engine", Engine)
	params.Set("author_id", authorID)
	params.Set("num", strconv.Itoa(PageSize))
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, authorID); err != nil {
		return nil, err
	}

	var page AuthorResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding author page: %v", ErrInvalidResponse, err)
	}
	if page.Error != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: page.Error, AuthorID: authorID}
	}
	if page.Articles == nil && start == 0 {
		return nil, fmt.Errorf("%w: no articles field for author %s", ErrInvalidResponse, authorID)
	}
	return &page, nil
}

// FetchArticles returns every article on the author's profile, following
// pagination up to the configured page limit.
func (c *Client) FetchArticles(ctx context.Context, authorID string) ([]Article, error) {
	if authorID == "" {
		return nil, fmt.Errorf("%w: empty author id", ErrNotFound)
	}

	key := cacheKey(authorID)
	if c.cache != nil {
		data, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			var articles []Article
			if jsonErr := json.Unmarshal(data, &articles); jsonErr == nil {
				return articles, nil
			}
			c.logger.WarnContext(ctx, "discarding unreadable cache entry", "author_id", authorID)
		case !errors.Is(err, ErrCacheMiss):
			c.logger.WarnContext(ctx, "scholar cache read failed", "author_id", authorID, "error", err)
		}
	}

	articles := []Article{}
	for page := 0; page < c.maxPages; page++ {
		resp, err := c.fetchPage(ctx, authorID, page*PageSize)
		if err != nil {
			return nil, err
		}
		articles = append(articles, resp.Articles...)
		if len(resp.Articles) < PageSize || resp.Pagination == nil || resp.Pagination.Next == "" {
			break
		}
	}

	if c.cache != nil {
		if data, err := json.Marshal(articles); err == nil {
			if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
				c.logger.WarnContext(ctx, "scholar cache write failed", "author_id", authorID, "error", err)
			}
		}
	}

	return articles, nil
}
