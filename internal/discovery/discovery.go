// Package discovery assembles the list of source pages a run will scan: the
// configured known pages that actually respond, optionally extended with
// document-section links found on the portal home page.
package discovery

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gr_scraper/internal/config"
	"gr_scraper/internal/extractor"
	"gr_scraper/internal/fetch"
	"gr_scraper/internal/models"
)

// sectionKeywords mark home-page links worth treating as document pages.
var sectionKeywords = []string{"document", "order", "rule", "circular", "notification"}

// maxDiscoveredName caps the page name taken from link text.
const maxDiscoveredName = 30

// Discoverer probes known pages and explores the home page for more.
type Discoverer struct {
	client    *fetch.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	log       *zap.SugaredLogger
}

// New builds a Discoverer. The limiter spaces the existence probes; it is
// shared with the orchestrator so the whole run honors one delay policy.
func New(client *fetch.Client, cfg *config.Config, limiter *rate.Limiter, log *zap.SugaredLogger) *Discoverer {
	return &Discoverer{
		client:    client,
		baseURL:   strings.TrimRight(cfg.Site.BaseURL, "/"),
		userAgent: cfg.Site.UserAgent,
		timeout:   cfg.PageTimeout(),
		limiter:   limiter,
		log:       log,
	}
}

// Discover returns the reachable known pages, plus home-page finds when
// explore is set. Probe failures drop the page and continue; discovery never
// fails the run.
func (d *Discoverer) Discover(ctx context.Context, known []config.PageConfig, explore bool) []models.SourcePage {
	var pages []models.SourcePage

	for _, p := range known {
		if err := d.limiter.Wait(ctx); err != nil {
			return pages
		}
		pageURL := extractor.NormalizeURL(p.Path, d.baseURL)
		if d.reachable(ctx, pageURL) {
			pages = append(pages, models.SourcePage{Name: p.Name, URL: pageURL})
			d.log.Infow("✅ found section", "page", p.Name)
		} else {
			d.log.Warnw("❌ section not reachable", "page", p.Name, "url", pageURL)
		}
	}

	if explore {
		pages = d.exploreHome(pages)
	}

	d.log.Infow("📊 document sections discovered", "count", len(pages))
	return pages
}

func (d *Discoverer) reachable(ctx context.Context, pageURL string) bool {
	pctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.Get(pctx, pageURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == 200
}

// exploreHome walks the home page with a collector and appends .html links
// whose text mentions a document section, skipping URLs already present.
func (d *Discoverer) exploreHome(pages []models.SourcePage) []models.SourcePage {
	seen := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		seen[p.URL] = struct{}{}
	}

	host := ""
	if u, err := url.Parse(d.baseURL); err == nil {
		host = u.Host
	}

	c := colly.NewCollector(
		colly.UserAgent(d.userAgent),
		colly.AllowedDomains(host),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(d.timeout)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		text := strings.TrimSpace(e.Text)
		if !strings.Contains(href, ".html") || !matchesSection(text) {
			return
		}

		fullURL := extractor.NormalizeURL(href, d.baseURL)
		if _, dup := seen[fullURL]; dup {
			return
		}
		seen[fullURL] = struct{}{}

		name := text
		if runes := []rune(name); len(runes) > maxDiscoveredName {
			name = string(runes[:maxDiscoveredName])
		}
		pages = append(pages, models.SourcePage{Name: name, URL: fullURL})
		d.log.Infow("✅ discovered section", "page", name)
	})

	c.OnError(func(r *colly.Response, err error) {
		d.log.Warnw("⚠️ home page exploration failed", "error", err)
	})

	if err := c.Visit(d.baseURL + "/"); err != nil {
		d.log.Warnw("⚠️ home page visit failed", "error", err)
	}
	c.Wait()

	return pages
}

func matchesSection(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
