// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// ddgEndpoint is the DuckDuckGo lite search page. Declared as a var so tests
// can substitute an httptest server.
var ddgEndpoint = "https://lite.duckduckgo.com/lite/"

// DuckDuckGo searches the DuckDuckGo lite HTML interface. No API key is needed.
type DuckDuckGo struct {
	Client *httputil.Client

	// Limiter spaces out requests; DuckDuckGo blocks bursts. Nil disables it.
	Limiter *rate.Limiter
}

// NewDuckDuckGo builds a DuckDuckGo backend limited to one request per second.
func NewDuckDuckGo(cfg types.HTTPConfig) *DuckDuckGo {
	return &DuckDuckGo{
		Client:  httputil.New(cfg),
		Limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Name returns the backend identifier.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search posts the query to the lite page and scrapes result links in page order.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ddgEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	hits, err := parseLiteResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing duckduckgo response: %w", err)
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// parseLiteResults walks the lite page for anchors with class "result-link"
// and pairs each with the next "result-snippet" cell.
func parseLiteResults(r io.Reader) ([]types.SearchHit, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var hits []types.SearchHit
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				hits = append(hits, types.SearchHit{
					Title: strings.TrimSpace(textOf(n)),
					URL:   resolveRedirect(attr(n, "href")),
				})
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if len(hits) > 0 && hits[len(hits)-1].Snippet == "" {
					hits[len(hits)-1].Snippet = strings.Join(strings.Fields(textOf(n)), " ")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits, nil
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" redirect links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" && strings.HasSuffix(u.Path, "/l/") {
		return target
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
