// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// defaultDocuments is the result count for scholarly retrievers when
// unconfigured.
const defaultDocuments = 3

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,url,externalIds"

// SemanticScholarRetriever returns papers with abstracts from Semantic Scholar.
type SemanticScholarRetriever struct {
	Client     *httputil.Client
	APIKey     string
	MaxResults int
}

// NewSemanticScholar builds a Semantic Scholar retriever.
func NewSemanticScholar(cfg types.SearchConfig) *SemanticScholarRetriever {
	return &SemanticScholarRetriever{
		Client:     httputil.New(cfg.HTTPConfig),
		APIKey:     cfg.SemanticScholarAPIKey,
		MaxResults: cfg.MaxDocuments,
	}
}

// Name returns the backend identifier.
func (b *SemanticScholarRetriever) Name() string { return "semantic_scholar" }

// Retrieve searches by relevance. Papers without an abstract are skipped
// since there is nothing to summarize.
func (b *SemanticScholarRetriever) Retrieve(ctx context.Context, query string) ([]types.Document, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(documentLimit(b.MaxResults))},
		"fields": {semanticFields},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := b.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("Semantic Scholar API: %w", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	docs := make([]types.Document, 0, len(sr.Data))
	for _, p := range sr.Data {
		title, abstract := collapseSpace(p.Title), strings.TrimSpace(p.Abstract)
		if title == "" || abstract == "" {
			continue
		}
		link := p.URL
		if p.ExternalIDs.ArXiv != "" {
			link = "https://arxiv.org/abs/" + p.ExternalIDs.ArXiv
		} else if p.ExternalIDs.DOI != "" {
			link = "https://doi.org/" + p.ExternalIDs.DOI
		}
		docs = append(docs, types.Document{Title: title, Body: abstract, URL: link})
	}
	return docs, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	URL         string              `json:"url"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

// openAlexSearchBase is the OpenAlex works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexRetriever returns works with reconstructed abstracts from OpenAlex.
type OpenAlexRetriever struct {
	Client *httputil.Client

	// Email is sent as mailto parameter for polite pool access.
	Email      string
	MaxResults int
}

// NewOpenAlex builds an OpenAlex retriever.
func NewOpenAlex(cfg types.SearchConfig) *OpenAlexRetriever {
	return &OpenAlexRetriever{
		Client:     httputil.New(cfg.HTTPConfig),
		Email:      cfg.OpenAlexEmail,
		MaxResults: cfg.MaxDocuments,
	}
}

// Name returns the backend identifier.
func (b *OpenAlexRetriever) Name() string { return "openalex" }

// Retrieve searches works by relevance. Works without an abstract are skipped.
func (b *OpenAlexRetriever) Retrieve(ctx context.Context, query string) ([]types.Document, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	params := url.Values{
		"search":   {q},
		"per_page": {strconv.Itoa(min(documentLimit(b.MaxResults), 200))},
		"page":     {"1"},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	resp, err := b.Client.Get(ctx, openAlexSearchBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("OpenAlex API: %w", err)
	}
	defer resp.Body.Close()

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	docs := make([]types.Document, 0, len(oar.Results))
	for _, w := range oar.Results {
		title := collapseSpace(w.Title)
		abstract := reconstructAbstract(w.AbstractInvertedIndex)
		if title == "" || abstract == "" {
			continue
		}
		link := w.DOI
		if link == "" {
			link = w.ID
		}
		docs = append(docs, types.Document{Title: title, Body: abstract, URL: link})
	}
	return docs, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

func documentLimit(n int) int {
	if n <= 0 {
		return defaultDocuments
	}
	return n
}
