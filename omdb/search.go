package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/sync/errgroup"
)

// titlePattern matches "Title":"..." pairs made of word and space characters
var titlePattern = regexp.MustCompile(`"Title":"([\p{L}\p{N}_ ]+)"`)

// candidate is one search hit still to be resolved into a full Film
type candidate struct {
	key  string
	byID bool
}

// scrapeTitles returns every title captured by titlePattern, in order of appearance
func scrapeTitles(body []byte) []string {
	matches := titlePattern.FindAllSubmatch(body, -1)
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, string(m[1]))
	}
	return titles
}

// parseSearch decodes a search response body into its result list. Keys are
// matched case-sensitively.
func parseSearch(body []byte) ([]SearchResult, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}

	notFound, err := remoteError(obj)
	if err != nil {
		return nil, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}
	if notFound != nil {
		return nil, notFound
	}

	raw, ok := obj["Search"]
	if !ok {
		return nil, &Error{Op: "parse", Kind: KindDecode, Message: "missing fields: Search"}
	}

	var entries []rawObject
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &Error{Op: "parse", Kind: KindDecode, Err: fmt.Errorf("field Search: %w", err)}
	}

	if len(entries) == 0 {
		return nil, &Error{Op: "parse", Kind: KindNotFound, Message: "search returned no results"}
	}

	results := make([]SearchResult, 0, len(entries))
	for i, entry := range entries {
		r, err := decodeSearchResult(entry)
		if err != nil {
			return nil, &Error{Op: "parse", Kind: KindDecode, Err: fmt.Errorf("Search[%d]: %w", i, err)}
		}
		results = append(results, r)
	}

	return results, nil
}

// Search returns the single page of results the search endpoint reports for
// title, without fetching details
func (c *Client) Search(ctx context.Context, title string) ([]SearchResult, error) {
	const op = "search"

	body, err := c.doRequest(ctx, op, "s", title)
	if err != nil {
		return nil, err
	}

	results, err := parseSearch(body)
	if err != nil {
		relabel(err, op, title)
		return nil, err
	}

	c.logger.Debug().
		Str("query", title).
		Int("count", len(results)).
		Msg("Retrieved search results from OMDb")

	return results, nil
}

// SearchByTitle searches for title and fetches the full record of every hit,
// in the order the search endpoint listed them. Any failing lookup fails the
// whole search.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Film, error) {
	const op = "search by title"

	body, err := c.doRequest(ctx, op, "s", title)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	switch c.searchMode {
	case SearchModeScrape:
		for _, t := range scrapeTitles(body) {
			candidates = append(candidates, candidate{key: t})
		}
		if len(candidates) == 0 {
			return nil, &Error{Op: op, Kind: KindNotFound, Query: title, Message: "no titles in search response"}
		}
	default:
		results, err := parseSearch(body)
		if err != nil {
			relabel(err, op, title)
			return nil, err
		}
		for _, r := range results {
			if r.IMDbID != "" {
				candidates = append(candidates, candidate{key: r.IMDbID, byID: true})
			} else {
				candidates = append(candidates, candidate{key: r.Title})
			}
		}
	}

	c.logger.Debug().
		Str("query", title).
		Str("mode", c.searchMode.String()).
		Int("candidates", len(candidates)).
		Msg("Resolving search candidates")

	return c.resolve(ctx, op, candidates)
}

// resolve looks up every candidate with at most c.concurrency requests in
// flight. Results keep candidate order; on failure the earliest candidate that
// failed on its own is reported.
func (c *Client) resolve(ctx context.Context, op string, candidates []candidate) ([]Film, error) {
	films := make([]Film, len(candidates))
	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &Error{Op: op, Kind: transportKind(err), Query: cand.key, Err: err}
			}

			var (
				film Film
				err  error
			)
			if cand.byID {
				film, err = c.LookupByID(gctx, cand.key)
			} else {
				film, err = c.LookupByTitle(gctx, cand.key)
			}
			if err != nil {
				errs[i] = err
				return err
			}

			films[i] = film
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil && !errors.Is(e, context.Canceled) {
				return nil, e
			}
		}
		return nil, err
	}

	return films, nil
}

// relabel points a parse error at the operation and query that produced it
func relabel(err error, op, query string) {
	var e *Error
	if errors.As(err, &e) {
		e.Op = op
		e.Query = query
	}
}
