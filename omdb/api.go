package omdb

import (
	"context"

	"github.com/rs/zerolog"
)

// API defines the interface for OMDb operations
type API interface {
	// LookupByTitle fetches a single film by title
	LookupByTitle(ctx context.Context, title string) (Film, error)

	// LookupByID fetches a single film by IMDb identifier
	LookupByID(ctx context.Context, id string) (Film, error)

	// SearchByTitle fetches every film the search endpoint lists for title
	SearchByTitle(ctx context.Context, title string) ([]Film, error)

	// Search returns the raw search hits for title
	Search(ctx context.Context, title string) ([]SearchResult, error)

	// TestConnection verifies the client can reach OMDb with its key
	TestConnection(ctx context.Context) error
}

var _ API = (*Client)(nil)

// LookupByTitle fetches a film by title from the public endpoint using apiKey
func LookupByTitle(ctx context.Context, title, apiKey string) (Film, error) {
	c, err := NewClient("", apiKey, zerolog.Nop())
	if err != nil {
		return Film{}, err
	}
	return c.LookupByTitle(ctx, title)
}

// LookupByID fetches a film by IMDb identifier from the public endpoint using apiKey
func LookupByID(ctx context.Context, id, apiKey string) (Film, error) {
	c, err := NewClient("", apiKey, zerolog.Nop())
	if err != nil {
		return Film{}, err
	}
	return c.LookupByID(ctx, id)
}

// SearchByTitle searches the public endpoint for title using apiKey
func SearchByTitle(ctx context.Context, title, apiKey string) ([]Film, error) {
	c, err := NewClient("", apiKey, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	return c.SearchByTitle(ctx, title)
}
