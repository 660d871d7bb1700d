// Package extractor pulls candidate PDF links off one listing page. A fetch
// or parse failure yields an empty result, never an error that could abort
// the run: one broken source page must not take the others down with it.
package extractor

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"gr_scraper/internal/fetch"
	"gr_scraper/internal/models"
)

// maxContextLen caps the stored surrounding-text snippet.
const maxContextLen = 300

// blockAncestors are the elements considered rich enough to serve as a
// link's context.
const blockAncestors = "div, td, li, p, span"

var whitespace = regexp.MustCompile(`\s+`)

// Extractor fetches listing pages and extracts their PDF anchors.
type Extractor struct {
	client  *fetch.Client
	baseURL string
	log     *zap.SugaredLogger
}

// New builds an Extractor resolving relative hrefs against baseURL.
func New(client *fetch.Client, baseURL string, log *zap.SugaredLogger) *Extractor {
	return &Extractor{client: client, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// ExtractPage fetches one page and returns its PDF links. Safe to call
// repeatedly for the same page.
func (e *Extractor) ExtractPage(ctx context.Context, pageName, pageURL string) []models.PDFLink {
	html, err := e.client.GetHTML(ctx, pageURL)
	if err != nil {
		e.log.Warnw("⚠️ page fetch failed, skipping", "page", pageName, "url", pageURL, "error", err)
		return nil
	}

	links := FromHTML(html, pageName, pageURL, e.baseURL)
	e.log.Infow("🔍 page scanned", "page", pageName, "pdf_links", len(links))
	return links
}

// FromHTML extracts PDF links from already-fetched HTML. Split out so the
// branch-form scraper and tests can reuse it on POST responses.
func FromHTML(html, pageName, pageURL, baseURL string) []models.PDFLink {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	// Non-nil even when empty: callers treat nil as "page unavailable".
	links := make([]models.PDFLink, 0)
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return
		}

		fullURL := NormalizeURL(href, baseURL)
		if _, dup := seen[fullURL]; dup {
			return
		}
		seen[fullURL] = struct{}{}

		text := strings.TrimSpace(s.Text())

		links = append(links, models.PDFLink{
			URL:           fullURL,
			Text:          text,
			Context:       contextText(s, text),
			SourcePage:    pageName,
			SourcePageURL: pageURL,
		})
	})

	return links
}

// contextText is the visible text of the nearest block-level ancestor,
// falling back to the anchor's own text.
func contextText(s *goquery.Selection, anchorText string) string {
	snippet := anchorText
	if parent := s.Closest(blockAncestors); parent.Length() > 0 {
		if t := strings.TrimSpace(whitespace.ReplaceAllString(parent.Text(), " ")); t != "" {
			snippet = t
		}
	}
	runes := []rune(snippet)
	if len(runes) > maxContextLen {
		snippet = string(runes[:maxContextLen])
	}
	return snippet
}

// NormalizeURL makes href absolute: full URLs pass through, root-relative
// paths join the base host, anything else is treated as relative to the base
// host root.
func NormalizeURL(href, baseURL string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	default:
		return baseURL + "/" + strings.TrimLeft(href, "/")
	}
}
