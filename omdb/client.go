package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public OMDb endpoint
const DefaultBaseURL = "https://www.omdbapi.com/"

// connectionCheckID is a stable, long-lived IMDb identifier used to verify the API key
const connectionCheckID = "tt0000001"

// Client represents an OMDb API client
type Client struct {
	baseURL     *url.URL
	apiKey      string
	httpClient  *http.Client
	userAgent   string
	searchMode  SearchMode
	concurrency int
	logger      zerolog.Logger
}

// NewClient creates a new OMDb client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidConfig, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL %q: scheme and host are required", ErrInvalidConfig, baseURL)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:     u,
		apiKey:      apiKey,
		httpClient:  httpClient,
		userAgent:   o.userAgent,
		searchMode:  o.searchMode,
		concurrency: o.concurrency,
		logger:      logger,
	}, nil
}

// doRequest performs a GET against the API with the given query parameter
// and returns the body of a 200 response. Query parameters already present
// on the base URL are kept.
func (c *Client) doRequest(ctx context.Context, op, param, value string) ([]byte, error) {
	u := *c.baseURL
	params := u.Query()
	params.Set("apikey", c.apiKey)
	params.Set(param, value)
	u.RawQuery = params.Encode()
	requestURL := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Query: value, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("op", op).
		Str(param, value).
		Msg("Making OMDb API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: transportKind(err), Query: value, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: transportKind(err), Query: value, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Received OMDb API response")

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Op: op, Kind: KindUnauthorized, Query: value, StatusCode: resp.StatusCode, Message: remoteMessage(body)}
	default:
		return nil, &Error{Op: op, Kind: KindAPI, Query: value, StatusCode: resp.StatusCode, Message: remoteMessage(body)}
	}
}

// transportKind tells timeouts apart from other round trip failures
func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}

// remoteMessage extracts the "Error" field of an error-shaped body, falling
// back to the raw text
func remoteMessage(body []byte) string {
	var e struct {
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}

// lookup fetches and decodes a single record
func (c *Client) lookup(ctx context.Context, op, param, value string) (Film, error) {
	body, err := c.doRequest(ctx, op, param, value)
	if err != nil {
		return Film{}, err
	}

	film, err := ParseFilm(body)
	if err != nil {
		relabel(err, op, value)
		return Film{}, err
	}

	c.logger.Debug().
		Str("op", op).
		Str("title", film.Title()).
		Str("year", film.Year()).
		Msg("Decoded film")

	return film, nil
}

// LookupByTitle fetches the film whose title best matches title
func (c *Client) LookupByTitle(ctx context.Context, title string) (Film, error) {
	return c.lookup(ctx, "lookup by title", "t", title)
}

// LookupByID fetches the film with the given IMDb identifier
func (c *Client) LookupByID(ctx context.Context, id string) (Film, error) {
	return c.lookup(ctx, "lookup by id", "i", id)
}

// TestConnection verifies the API is reachable and accepts the API key
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.LookupByID(ctx, connectionCheckID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
