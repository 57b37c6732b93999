package scholar

import (
	"errors"
	"fmt"
)

// Common errors returned by the scholar client.
var (
	// ErrNotFound indicates the author profile does not exist.
	ErrNotFound = errors.New("author not found on Google Scholar")

	// ErrAuthError indicates a missing or rejected API key.
	ErrAuthError = errors.New("scholar provider authentication error")

	// ErrRateLimited indicates the provider quota or rate limit was exceeded.
	ErrRateLimited = errors.New("scholar provider rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with scholar provider")

	// ErrInvalidResponse indicates an unexpected provider response.
	ErrInvalidResponse = errors.New("invalid response from scholar provider")
)

// APIError represents an error reported by the provider.
type APIError struct {
	StatusCode int
	Message    string
	AuthorID   string
}

func (e *APIError) Error() string {
	if e.AuthorID != "" {
		return fmt.Sprintf("scholar provider error (status %d): %s (author: %s)", e.StatusCode, e.Message, e.AuthorID)
	}
	return fmt.Sprintf("scholar provider error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates the author was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
