// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline:
// the locators and content flowing through the fan-out, the per-source summaries,
// the aggregated research handed to the report writer, and stage configuration.
package types

import (
	"fmt"
	"strings"
)

// SourceKind distinguishes web locators from retrieval-backend documents.
type SourceKind string

const (
	SourceWeb      SourceKind = "web"
	SourceDocument SourceKind = "document"
)

// groupSeparator joins summaries within a group and groups within the research.
const groupSeparator = "\n\n"

// SourceLocator references externally fetchable content. Web locators carry a
// URL; document locators carry the retrieved title and body directly because
// the retrieval backend returns content, not links.
type SourceLocator struct {
	// Kind selects the fetch path for the locator.
	Kind SourceKind `json:"kind" yaml:"kind"`

	// URL is the page address for web locators. Document locators may carry
	// the backend's link to the document.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Title is the document title (document locators) or search-result title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Body is the retrieved document text. Empty for web locators.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// Provenance returns the citable label for the locator: the URL for web
// sources, the title for documents.
func (l SourceLocator) Provenance() string {
	if l.Kind == SourceDocument {
		return l.Title
	}
	return l.URL
}

// SourceContent is the result of fetching a locator. When Unavailable is set
// the content is a sentinel and Text holds the failure description.
type SourceContent struct {
	Locator SourceLocator `json:"locator" yaml:"locator"`

	// Title is the extracted or retrieved title, when known.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Text is the raw content text, or the error description for a sentinel.
	Text string `json:"text" yaml:"text"`

	// Unavailable marks sentinel content standing in for an unreachable source.
	Unavailable bool `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// UnavailableContent builds sentinel content for a locator that could not be read.
func UnavailableContent(loc SourceLocator, description string) SourceContent {
	return SourceContent{Locator: loc, Text: description, Unavailable: true}
}

// Summary is the text produced for one source, tagged with the provenance
// identifier used for citation.
type Summary struct {
	Kind SourceKind `json:"kind" yaml:"kind"`

	// Provenance is the URL or title of the source, preserved verbatim.
	Provenance string `json:"provenance" yaml:"provenance"`

	// Text is the generated summary, or a failure description when Degraded.
	Text string `json:"text" yaml:"text"`

	// Degraded is set when the summary stands in for an unreadable source or
	// a failed generation call.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// Render formats the summary as it appears in the aggregated research text.
func (s Summary) Render() string {
	if s.Provenance == "" {
		return s.Text
	}
	label := "URL"
	if s.Kind == SourceDocument {
		label = "TITLE"
	}
	return fmt.Sprintf("%s: %s\n\nSUMMARY: %s", label, s.Provenance, s.Text)
}

// AggregatedResearch holds one summary group per planned search query, in
// query order, with summaries in locator order inside each group.
type AggregatedResearch struct {
	Question string      `json:"question" yaml:"question"`
	Queries  []string    `json:"queries" yaml:"queries"`
	Groups   [][]Summary `json:"groups" yaml:"groups"`
}

// Text flattens the research into the block handed to the report writer.
func (r AggregatedResearch) Text() string {
	groups := make([][]string, len(r.Groups))
	for i, g := range r.Groups {
		texts := make([]string, len(g))
		for j, s := range g {
			texts[j] = s.Render()
		}
		groups[i] = texts
	}
	return JoinGroups(groups)
}

// Sources returns each distinct provenance identifier once, in order of first
// appearance. Identifiers are compared by exact string equality.
func (r AggregatedResearch) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range r.Groups {
		for _, s := range g {
			if s.Provenance == "" || seen[s.Provenance] {
				continue
			}
			seen[s.Provenance] = true
			out = append(out, s.Provenance)
		}
	}
	return out
}

// SummaryCount returns the total number of summaries across all groups.
func (r AggregatedResearch) SummaryCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g)
	}
	return n
}

// JoinGroups joins texts within a group with a blank line, then joins the
// groups with a blank line. Empty groups contribute nothing.
func JoinGroups(groups [][]string) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		parts = append(parts, strings.Join(g, groupSeparator))
	}
	return strings.Join(parts, groupSeparator)
}

// Report is the final long-form answer produced from the aggregated research.
type Report struct {
	Question string   `json:"question" yaml:"question"`
	Text     string   `json:"report" yaml:"report"`
	Queries  []string `json:"queries" yaml:"queries"`

	// Sources lists the attempted sources, deduplicated, for display next to
	// the report. The report text carries its own generated source list.
	Sources []string `json:"sources" yaml:"sources"`
}

// SearchHit is one ranked result from a web search backend.
type SearchHit struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// Document is one ranked result from a retrieval backend.
type Document struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`

	// URL links to the document at its origin, when the backend has one.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}
