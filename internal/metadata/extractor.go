// Package metadata derives the structured {gr_no, date, subject} triple from
// a PDF link's unstructured text, surrounding context and URL. Every fallback
// in here is deterministic: the same link always yields the same triple
// (apart from the scrape-time date default, which is flagged).
package metadata

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"gr_scraper/internal/models"
)

// Extractor applies the rule cascades. Now is injectable so tests can pin
// the date fallback.
type Extractor struct {
	Now func() time.Time
}

// NewExtractor returns an Extractor using wall-clock time for date fallback.
func NewExtractor() *Extractor {
	return &Extractor{Now: time.Now}
}

// Extract produces metadata for one link. GRNo is never empty.
func (e *Extractor) Extract(link models.PDFLink) models.Metadata {
	combined := link.Text + " " + link.Context

	grNo, ok := matchGR(combined)
	if !ok {
		grNo = grNoFromURL(link.URL)
	}

	date, estimated := e.extractDate(combined, link.URL)

	return models.Metadata{
		GRNo:          grNo,
		Date:          date,
		DateEstimated: estimated,
		Subject:       Subject(link.Text, link.Context, ""),
	}
}

// extractDate tries the date cascade on the link text first, then on the URL
// filename (portal filenames embed dates), then falls back to the run
// timestamp with the estimated flag set.
func (e *Extractor) extractDate(combined, rawURL string) (string, bool) {
	if d, ok := matchDate(combined); ok {
		return d, false
	}
	if d, ok := matchDate(filename(rawURL)); ok {
		return d, false
	}
	return e.Now().Format("2006-01-02"), true
}

// Subject picks the best available description: link text, then surrounding
// context, then a placeholder derived from the branch or page name. The
// result is capped at models.MaxSubjectLen runes with an ellipsis marker.
func Subject(text, context, placeholder string) string {
	subject := strings.TrimSpace(text)
	if subject == "" {
		subject = strings.TrimSpace(context)
	}
	if subject == "" {
		if placeholder == "" {
			placeholder = "Government"
		}
		subject = placeholder + " Document"
	}

	runes := []rune(subject)
	if len(runes) > models.MaxSubjectLen {
		subject = string(runes[:models.MaxSubjectLen]) + "..."
	}
	return subject
}

// WithPlaceholder re-derives the subject once the branch is known, so that
// text-less links read "<Branch> Document" instead of a generic placeholder.
func (e *Extractor) WithPlaceholder(meta models.Metadata, link models.PDFLink, placeholder string) models.Metadata {
	meta.Subject = Subject(link.Text, link.Context, placeholder)
	return meta
}

// filename returns the URL's last path segment with the PDF extension
// stripped.
func filename(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	name := parts[len(parts)-1]
	name = strings.TrimSuffix(name, ".pdf")
	name = strings.TrimSuffix(name, ".PDF")
	return name
}

// grNoFromURL is the two-step URL fallback: use the filename when it carries
// a separator (real portal filenames encode the identifier), otherwise
// synthesize a stable page-type-tagged identifier from a hash of the URL.
func grNoFromURL(rawURL string) string {
	name := filename(rawURL)
	if strings.ContainsAny(name, "_-") {
		return name
	}
	return syntheticGRNo(rawURL)
}

// syntheticGRNo is the last-resort identifier. md5 keeps it stable across
// processes, which the dedup layer depends on.
func syntheticGRNo(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	n := binary.BigEndian.Uint64(sum[:8]) % 100000

	lower := strings.ToLower(rawURL)
	tag := "DOC"
	switch {
	case strings.Contains(lower, "circular"):
		tag = "Cir"
	case strings.Contains(lower, "gr"):
		tag = "GR"
	case strings.Contains(lower, "rule"):
		tag = "Rule"
	case strings.Contains(lower, "notification"):
		tag = "Not"
	}
	return fmt.Sprintf("%s_%d", tag, n)
}
