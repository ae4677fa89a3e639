// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivRetriever returns arXiv papers as documents whose body is the abstract.
type ArxivRetriever struct {
	Client     *httputil.Client
	MaxResults int
}

// NewArxiv builds an arXiv retriever.
func NewArxiv(cfg types.SearchConfig) *ArxivRetriever {
	return &ArxivRetriever{Client: httputil.New(cfg.HTTPConfig), MaxResults: cfg.MaxDocuments}
}

// Name returns the backend identifier.
func (b *ArxivRetriever) Name() string { return "arxiv" }

// Retrieve queries the arXiv API by relevance.
func (b *ArxivRetriever) Retrieve(ctx context.Context, query string) ([]types.Document, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := documentLimit(b.MaxResults)

	params := url.Values{}
	params.Set("search_query", q)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	resp, err := b.Client.Get(ctx, arxivAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("arXiv API: %w", err)
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	docs := make([]types.Document, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := collapseSpace(entry.Title)
		if title == "" {
			continue
		}
		docs = append(docs, types.Document{
			Title: title,
			Body:  collapseSpace(entry.Summary),
			URL:   strings.TrimSpace(entry.ID),
		})
	}
	return docs, nil
}

// buildArxivQuery turns free text into an all-fields conjunction
// (e.g. "graph neural nets" -> "all:graph AND all:neural AND all:nets").
func buildArxivQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = "all:" + strings.Trim(t, `"'`)
	}
	return strings.Join(terms, " AND ")
}

// collapseSpace folds the line breaks arXiv inserts into titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}
