// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch resolves source locators into content. Expected failures
// (HTTP error statuses, unreadable pages) come back as sentinel content;
// only network-level faults are returned as errors.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultMaxBodyBytes = 4 << 20

// readArticle extracts the main article. Declared as a var so tests can
// force the markup fallback.
var readArticle = readability.FromReader

// Fetcher resolves one locator into content.
type Fetcher interface {
	Fetch(ctx context.Context, loc types.SourceLocator) (types.SourceContent, error)
}

// TransportError reports a network-level fault reaching a source.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FailureText is the sentinel description for a source that could not be read.
func FailureText(reason string) string {
	return "Failed to retrieve the webpage: " + reason
}

// WebFetcher downloads pages and extracts their readable text.
type WebFetcher struct {
	Client *httputil.Client

	// MaxBodyBytes caps how much of a response is read (default 4 MiB).
	MaxBodyBytes int64
}

// NewWeb builds a WebFetcher from the fetch configuration.
func NewWeb(cfg types.FetchConfig) *WebFetcher {
	return &WebFetcher{Client: httputil.New(cfg.HTTPConfig), MaxBodyBytes: cfg.MaxBodyBytes}
}

// Fetch downloads loc.URL. A non-200 status yields sentinel content naming
// the status code.
func (f *WebFetcher) Fetch(ctx context.Context, loc types.SourceLocator) (types.SourceContent, error) {
	pageURL, err := url.Parse(loc.URL)
	if err != nil || pageURL.Host == "" {
		return types.UnavailableContent(loc, FailureText(fmt.Sprintf("invalid URL %q", loc.URL))), nil
	}

	resp, err := f.Client.Get(ctx, loc.URL)
	if err != nil {
		return types.SourceContent{}, &TransportError{URL: loc.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return types.UnavailableContent(loc, FailureText(fmt.Sprintf("Status code %d", resp.StatusCode))), nil
	}

	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return types.SourceContent{}, &TransportError{URL: loc.URL, Err: err}
	}

	title, text := extractText(body, resp.Header.Get("Content-Type"), pageURL)
	if text == "" {
		return types.UnavailableContent(loc, FailureText("no readable text")), nil
	}
	if title == "" {
		title = loc.Title
	}
	return types.SourceContent{Locator: loc, Title: title, Text: text}, nil
}

// extractText returns the article title and text of an HTML page. Non-HTML
// bodies are returned as-is with whitespace collapsed. When no article can
// be extracted the page's visible text is used instead.
func extractText(body []byte, contentType string, pageURL *url.URL) (string, string) {
	if contentType != "" && !strings.Contains(contentType, "html") {
		return "", collapse(string(body))
	}
	article, err := readArticle(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", collapse(visibleText(body))
	}
	return strings.TrimSpace(article.Title), collapse(article.TextContent)
}

// visibleText drops markup, scripts, and styles, keeping one text node per line.
func visibleText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

// collapse folds runs of whitespace within lines and drops blank lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// DocumentFetcher passes retrieved documents through; the retrieval backend
// already returned their content.
type DocumentFetcher struct{}

// Fetch returns the locator's title and body. An empty body yields sentinel content.
func (DocumentFetcher) Fetch(_ context.Context, loc types.SourceLocator) (types.SourceContent, error) {
	if strings.TrimSpace(loc.Body) == "" {
		return types.UnavailableContent(loc, "Failed to retrieve the document: empty body"), nil
	}
	return types.SourceContent{Locator: loc, Title: loc.Title, Text: loc.Body}, nil
}

// Dispatch routes each locator to the fetcher for its kind.
type Dispatch struct {
	Web      Fetcher
	Document Fetcher
}

// Fetch delegates by locator kind.
func (d Dispatch) Fetch(ctx context.Context, loc types.SourceLocator) (types.SourceContent, error) {
	var f Fetcher
	switch loc.Kind {
	case types.SourceDocument:
		f = d.Document
		if f == nil {
			f = DocumentFetcher{}
		}
	default:
		f = d.Web
	}
	if f == nil {
		return types.SourceContent{}, fmt.Errorf("no fetcher configured for %s locators", loc.Kind)
	}
	return f.Fetch(ctx, loc)
}
