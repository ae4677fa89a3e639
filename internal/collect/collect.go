// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect turns one search query into an ordered list of source
// locators, either by searching the web or by querying a document retrieval
// backend.
package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultLimit = 3

// Collector produces the locators for one query, in backend ranking order.
type Collector interface {
	Collect(ctx context.Context, query string) ([]types.SourceLocator, error)
}

// SearchBackend queries a web search engine. Each engine (DuckDuckGo,
// Serper) implements this interface.
type SearchBackend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
}

// Retriever queries a document corpus and returns ranked documents with
// title and body.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, query string) ([]types.Document, error)
}

// CollectionError reports a query whose backend could not be reached or
// returned an unusable response.
type CollectionError struct {
	Query   string
	Backend string
	Err     error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collecting sources for %q from %s: %v", e.Query, e.Backend, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// WebCollector collects result links from a search backend.
type WebCollector struct {
	Backend SearchBackend

	// Limit caps the number of locators per query (default 3).
	Limit int
}

// Collect searches for query and returns up to Limit web locators in ranking
// order. Results without a link are dropped before truncation.
func (c *WebCollector) Collect(ctx context.Context, query string) ([]types.SourceLocator, error) {
	limit := c.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	hits, err := c.Backend.Search(ctx, query, limit)
	if err != nil {
		return nil, &CollectionError{Query: query, Backend: c.Backend.Name(), Err: err}
	}

	locs := make([]types.SourceLocator, 0, limit)
	for _, h := range hits {
		u := strings.TrimSpace(h.URL)
		if u == "" {
			continue
		}
		locs = append(locs, types.SourceLocator{Kind: types.SourceWeb, URL: u, Title: h.Title})
		if len(locs) == limit {
			break
		}
	}
	return locs, nil
}

// DocumentCollector collects documents from a retrieval backend. The backend
// decides how many documents to return.
type DocumentCollector struct {
	Retriever Retriever
}

// Collect retrieves documents for query and returns them as document locators.
func (c *DocumentCollector) Collect(ctx context.Context, query string) ([]types.SourceLocator, error) {
	docs, err := c.Retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, &CollectionError{Query: query, Backend: c.Retriever.Name(), Err: err}
	}

	locs := make([]types.SourceLocator, len(docs))
	for i, d := range docs {
		locs[i] = types.SourceLocator{
			Kind:  types.SourceDocument,
			URL:   d.URL,
			Title: strings.TrimSpace(d.Title),
			Body:  d.Body,
		}
	}
	return locs, nil
}
