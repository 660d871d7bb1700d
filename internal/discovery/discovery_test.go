package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"gr_scraper/internal/config"
	"gr_scraper/internal/fetch"
	"gr_scraper/internal/logging"
)

func TestDiscoverKnownPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gr.html" || r.URL.Path == "/circulars.html" {
			w.Write([]byte("<html><body>ok</body></html>"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Site:  config.SiteConfig{BaseURL: srv.URL, UserAgent: "test-agent"},
		Logic: config.LogicConfig{PageTimeoutSec: 5, PageDelayMS: 1},
	}
	client := fetch.NewClient("test-agent", cfg.PageTimeout())
	d := New(client, cfg, rate.NewLimiter(rate.Every(cfg.PageDelay()), 1), logging.Nop())

	known := []config.PageConfig{
		{Name: "Government Resolutions", Path: "/gr.html"},
		{Name: "Latest Circulars", Path: "/circulars.html"},
		{Name: "Removed Section", Path: "/gone.html"},
	}

	pages := d.Discover(context.Background(), known, false)
	require.Len(t, pages, 2, "unreachable pages are dropped, not fatal")

	assert.Equal(t, "Government Resolutions", pages[0].Name)
	assert.Equal(t, srv.URL+"/gr.html", pages[0].URL)
	assert.Equal(t, "Latest Circulars", pages[1].Name)
}

func TestMatchesSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"Important Documents", true},
		{"Pay Orders Archive", true},
		{"Rules and Regulations", true},
		{"Latest Circulars", true},
		{"Notifications", true},
		{"Contact Us", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, matchesSection(tc.text), "text %q", tc.text)
	}
}
