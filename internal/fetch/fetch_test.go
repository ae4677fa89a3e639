// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Go 1.22 Released</title></head>
<body>
<nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
<article>
<h1>Go 1.22 Released</h1>
<p>The Go team is happy to announce the release of Go 1.22. This release changes
the semantics of for loops so that each iteration has its own variable, removing a
long standing source of accidental sharing bugs in concurrent programs.</p>
<p>Range over integers is now supported, and the standard library gained an enhanced
routing pattern syntax in net/http. Performance improved by one to three percent.</p>
<p>Profile guided optimization is more effective, with typical gains of two to fourteen
percent on representative programs built with a default profile.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func webFetcher(ts *httptest.Server) *WebFetcher {
	return &WebFetcher{Client: &httputil.Client{HTTP: ts.Client()}}
}

func TestWebFetchExtractsArticle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer ts.Close()

	loc := types.SourceLocator{Kind: types.SourceWeb, URL: ts.URL + "/go1.22", Title: "search title"}
	c, err := webFetcher(ts).Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.False(t, c.Unavailable)
	assert.Equal(t, loc, c.Locator)
	assert.Contains(t, c.Text, "Range over integers")
	assert.NotEmpty(t, c.Title)
}

func TestWebFetchMarkupFallback(t *testing.T) {
	orig := readArticle
	readArticle = func(io.Reader, *url.URL) (readability.Article, error) {
		return readability.Article{}, errors.New("no article")
	}
	defer func() { readArticle = orig }()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><style>p { color: red; }</style><script>var x = 1;</script></head>` +
			`<body><div class="nav"><a href="/">Home</a></div><p>Loop   variables are <b>per iteration</b>.</p></body></html>`))
	}))
	defer ts.Close()

	c, err := webFetcher(ts).Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: ts.URL})
	require.NoError(t, err)
	assert.False(t, c.Unavailable)
	assert.Equal(t, "Home\nLoop variables are\nper iteration\n.", c.Text)
	assert.NotContains(t, c.Text, "<")
	assert.NotContains(t, c.Text, "color")
	assert.NotContains(t, c.Text, "var x")
}

func TestWebFetchStatusSentinel(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		loc := types.SourceLocator{Kind: types.SourceWeb, URL: ts.URL}
		c, err := webFetcher(ts).Fetch(context.Background(), loc)
		ts.Close()

		require.NoError(t, err)
		assert.True(t, c.Unavailable)
		assert.Equal(t, fmt.Sprintf("Failed to retrieve the webpage: Status code %d", code), c.Text)
	}
}

func TestWebFetchPlainText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("line   one\n\n\nline two\n"))
	}))
	defer ts.Close()

	c, err := webFetcher(ts).Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", c.Text)
}

func TestWebFetchBodyLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer ts.Close()

	f := webFetcher(ts)
	f.MaxBodyBytes = 10
	c, err := f.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 10), c.Text)
}

func TestWebFetchTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	f := &WebFetcher{Client: &httputil.Client{HTTP: &http.Client{}}}
	_, err := f.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: url})
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, url, te.URL)
}

func TestWebFetchInvalidURL(t *testing.T) {
	f := &WebFetcher{Client: &httputil.Client{}}
	c, err := f.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: "not a url"})
	require.NoError(t, err)
	assert.True(t, c.Unavailable)
	assert.Contains(t, c.Text, "invalid URL")
}

func TestDocumentFetcher(t *testing.T) {
	loc := types.SourceLocator{Kind: types.SourceDocument, Title: "Paper", Body: "abstract text"}
	c, err := DocumentFetcher{}.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "Paper", c.Title)
	assert.Equal(t, "abstract text", c.Text)

	c, err = DocumentFetcher{}.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceDocument, Title: "Empty"})
	require.NoError(t, err)
	assert.True(t, c.Unavailable)
}

type fetcherFunc func(context.Context, types.SourceLocator) (types.SourceContent, error)

func (f fetcherFunc) Fetch(ctx context.Context, loc types.SourceLocator) (types.SourceContent, error) {
	return f(ctx, loc)
}

func TestDispatch(t *testing.T) {
	web := fetcherFunc(func(_ context.Context, loc types.SourceLocator) (types.SourceContent, error) {
		return types.SourceContent{Locator: loc, Text: "from web"}, nil
	})
	d := Dispatch{Web: web}

	c, err := d.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb, URL: "https://x.test"})
	require.NoError(t, err)
	assert.Equal(t, "from web", c.Text)

	c, err = d.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceDocument, Title: "T", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", c.Text)

	_, err = Dispatch{}.Fetch(context.Background(), types.SourceLocator{Kind: types.SourceWeb})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
