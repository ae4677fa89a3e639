// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models
  are based on complex recurrent networks.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT</title>
    <summary>Pre-training of deep bidirectional transformers.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/0000.00000</id>
    <title>   </title>
    <summary>untitled</summary>
  </entry>
</feed>`

func TestArxivRetrieve(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:attention AND all:transformer", r.URL.Query().Get("search_query"))
		assert.Equal(t, "2", r.URL.Query().Get("max_results"))
		w.Write([]byte(arxivFixture))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() { arxivAPIBase = orig })

	b := &ArxivRetriever{Client: &httputil.Client{HTTP: ts.Client()}, MaxResults: 2}
	docs, err := b.Retrieve(context.Background(), "attention transformer")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Attention Is All You Need", docs[0].Title)
	assert.Equal(t, "The dominant sequence transduction models are based on complex recurrent networks.", docs[0].Body)
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v7", docs[0].URL)
	assert.Equal(t, "BERT", docs[1].Title)
}

func TestArxivRetrieveEmptyQuery(t *testing.T) {
	_, err := (&ArxivRetriever{Client: &httputil.Client{}}).Retrieve(context.Background(), "   ")
	assert.Error(t, err)
}

func TestBuildArxivQuery(t *testing.T) {
	assert.Equal(t, "all:graph AND all:neural AND all:nets", buildArxivQuery("graph neural nets"))
	assert.Equal(t, "all:quoted", buildArxivQuery(`"quoted"`))
	assert.Equal(t, "", buildArxivQuery(""))
}
