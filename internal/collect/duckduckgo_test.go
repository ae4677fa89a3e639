// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

const liteFixture = `<html><body><table>
<tr><td>1.&nbsp;</td><td><a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc" class='result-link'>Documentation - The Go Programming Language</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>The Go programming language is an open source
  project to make programmers more productive.</td></tr>
<tr><td>2.&nbsp;</td><td><a rel="nofollow" href="https://en.wikipedia.org/wiki/Go_(programming_language)" class='result-link'>Go (programming language)</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Go is a statically typed language.</td></tr>
<tr><td>3.&nbsp;</td><td><a rel="nofollow" href="https://gobyexample.com/" class='result-link'>Go by Example</a></td></tr>
</table></body></html>`

func withDDGEndpoint(t *testing.T, url string) {
	t.Helper()
	orig := ddgEndpoint
	ddgEndpoint = url
	t.Cleanup(func() { ddgEndpoint = orig })
}

func TestParseLiteResults(t *testing.T) {
	hits, err := parseLiteResults(strings.NewReader(liteFixture))
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "Documentation - The Go Programming Language", hits[0].Title)
	assert.Equal(t, "https://go.dev/doc/", hits[0].URL)
	assert.Equal(t, "The Go programming language is an open source project to make programmers more productive.", hits[0].Snippet)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", hits[1].URL)
	assert.Equal(t, "https://gobyexample.com/", hits[2].URL)
	assert.Empty(t, hits[2].Snippet)
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1", "https://example.com/a?b=1"},
		{"https://example.com/page", "https://example.com/page"},
		{"https://example.com/l/?x=1", "https://example.com/l/?x=1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveRedirect(tt.href), tt.href)
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "golang generics", r.PostForm.Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(liteFixture))
	}))
	defer ts.Close()
	withDDGEndpoint(t, ts.URL)

	d := &DuckDuckGo{Client: &httputil.Client{HTTP: ts.Client(), UserAgent: "test-agent"}}
	hits, err := d.Search(context.Background(), "golang generics", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://go.dev/doc/", hits[0].URL)
}

func TestDuckDuckGoSearchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	withDDGEndpoint(t, ts.URL)

	d := &DuckDuckGo{Client: &httputil.Client{HTTP: ts.Client()}}
	_, err := d.Search(context.Background(), "q", 3)
	require.Error(t, err)
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestDuckDuckGoEmptyQuery(t *testing.T) {
	d := &DuckDuckGo{Client: &httputil.Client{}}
	_, err := d.Search(context.Background(), "  ", 3)
	assert.Error(t, err)
}
