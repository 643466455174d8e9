package omdb

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout is used when no timeout or HTTP client is configured
const DefaultTimeout = 30 * time.Second

// MaxConcurrency caps the number of detail lookups a search runs at once
const MaxConcurrency = 20

// SearchMode selects how SearchByTitle turns a search response into candidates
type SearchMode int

const (
	// SearchModeStructured decodes the result list and looks each entry up by IMDb ID
	SearchModeStructured SearchMode = iota
	// SearchModeScrape pattern-matches "Title" values out of the raw body and
	// looks each one up by title
	SearchModeScrape
)

// String returns the string representation of a SearchMode
func (m SearchMode) String() string {
	switch m {
	case SearchModeStructured:
		return "structured"
	case SearchModeScrape:
		return "scrape"
	default:
		return "unknown"
	}
}

// ParseSearchMode converts a config or flag value into a SearchMode
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "", "structured":
		return SearchModeStructured, nil
	case "scrape":
		return SearchModeScrape, nil
	default:
		return 0, fmt.Errorf("invalid search mode: %s (must be 'structured' or 'scrape')", s)
	}
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout     time.Duration
	httpClient  *http.Client
	userAgent   string
	searchMode  SearchMode
	concurrency int
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:     DefaultTimeout,
		searchMode:  SearchModeStructured,
		concurrency: 1,
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithSearchMode selects how search candidates are extracted.
func WithSearchMode(mode SearchMode) Option {
	return func(o *clientOptions) {
		o.searchMode = mode
	}
}

// WithConcurrency sets how many detail lookups a search may run at once.
// Values are clamped to [1, MaxConcurrency].
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		o.concurrency = max(1, min(n, MaxConcurrency))
	}
}
