package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gr_scraper/internal/fetch"
	"gr_scraper/internal/logging"
)

const listingHTML = `<html><body>
<table>
<tr><td>Order No 123 <a href="/Documents/a.pdf">Download order</a> dated 1-1-2020</td></tr>
<tr><td><a href="https://other.example/b.PDF">Capitalized extension</a></td></tr>
<tr><td><a href="/Documents/a.pdf">Same target twice</a></td></tr>
<tr><td><a href="/about.html">Not a document</a></td></tr>
</table>
<div><a href="Documents/relative.pdf">Relative link</a></div>
</body></html>`

func TestFromHTML(t *testing.T) {
	t.Parallel()

	links := FromHTML(listingHTML, "Government Resolutions", "https://base.example/gr.html", "https://base.example")
	require.Len(t, links, 3)

	assert.Equal(t, "https://base.example/Documents/a.pdf", links[0].URL)
	assert.Equal(t, "Download order", links[0].Text)
	assert.Equal(t, "Order No 123 Download order dated 1-1-2020", links[0].Context)
	assert.Equal(t, "Government Resolutions", links[0].SourcePage)
	assert.Equal(t, "https://base.example/gr.html", links[0].SourcePageURL)

	assert.Equal(t, "https://other.example/b.PDF", links[1].URL)
	assert.Equal(t, "https://base.example/Documents/relative.pdf", links[2].URL)
}

func TestFromHTMLEmptyPage(t *testing.T) {
	t.Parallel()

	links := FromHTML("<html><body><p>nothing here</p></body></html>", "p", "u", "https://base.example")
	assert.NotNil(t, links, "a parsed page with no links is not a failed page")
	assert.Empty(t, links)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	base := "https://base.example"
	tests := []struct {
		href string
		want string
	}{
		{"https://other.example/x.pdf", "https://other.example/x.pdf"},
		{"http://other.example/x.pdf", "http://other.example/x.pdf"},
		{"/Documents/x.pdf", "https://base.example/Documents/x.pdf"},
		{"Documents/x.pdf", "https://base.example/Documents/x.pdf"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeURL(tc.href, base), "href %q", tc.href)
	}
}

func TestExtractPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gr.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	client := fetch.NewClient("test-agent", 5*time.Second)
	e := New(client, srv.URL, logging.Nop())

	links := e.ExtractPage(context.Background(), "GR Page", srv.URL+"/gr.html")
	require.Len(t, links, 3)
	assert.Equal(t, srv.URL+"/Documents/a.pdf", links[0].URL)

	// fetch failures yield nil, not an error
	assert.Nil(t, e.ExtractPage(context.Background(), "Missing", srv.URL+"/missing.html"))
}
