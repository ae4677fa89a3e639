// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// serperEndpoint is the Serper Google search API. Declared as a var so tests
// can substitute an httptest server.
var serperEndpoint = "https://google.serper.dev/search"

// Serper queries Google results through the serper.dev JSON API.
type Serper struct {
	APIKey string
	Client *httputil.Client
}

// NewSerper builds a Serper backend.
func NewSerper(apiKey string, cfg types.HTTPConfig) *Serper {
	return &Serper{APIKey: apiKey, Client: httputil.New(cfg)}
}

// Name returns the backend identifier.
func (s *Serper) Name() string { return "serper" }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search returns the organic results in Google's ranking order.
func (s *Serper) Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("serper API key is not configured")
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}
	defer resp.Body.Close()

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding serper response: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		hits = append(hits, types.SearchHit{Title: o.Title, URL: o.Link, Snippet: o.Snippet})
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
