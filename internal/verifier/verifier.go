// Package verifier probes candidate PDF URLs. The probe is two-step because
// the portal's servers reject or misreport HEAD requests for some documents
// while serving them fine on GET; neither request alone can be trusted.
// Verification is advisory: an invalid document is still stored, carrying
// its fallback URL and navigation route for manual recovery.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"gr_scraper/internal/fetch"
	"gr_scraper/internal/models"
)

// Verifier probes PDF URLs with bounded HEAD and GET requests.
type Verifier struct {
	client      *fetch.Client
	headTimeout time.Duration
	getTimeout  time.Duration
	log         *zap.SugaredLogger
}

// New builds a Verifier. The client should carry no overall timeout; the
// per-probe deadlines here are the cutoffs.
func New(client *fetch.Client, headTimeout, getTimeout time.Duration, log *zap.SugaredLogger) *Verifier {
	return &Verifier{client: client, headTimeout: headTimeout, getTimeout: getTimeout, log: log}
}

// Verify probes one URL. It never returns an error: every failure mode maps
// to an invalid Verification with a descriptive message.
func (v *Verifier) Verify(ctx context.Context, pdfURL string) models.Verification {
	v.log.Debugw("🔗 verifying pdf", "url", pdfURL)
	if res, done := v.tryHead(ctx, pdfURL); done {
		return res
	}
	res := v.tryGet(ctx, pdfURL)
	if !res.Valid {
		v.log.Debugw("❌ pdf not directly accessible", "url", pdfURL, "message", res.Message)
	}
	return res
}

// tryHead issues the lightweight existence check. done=false means the HEAD
// was inconclusive and the GET probe should run.
func (v *Verifier) tryHead(ctx context.Context, pdfURL string) (models.Verification, bool) {
	hctx, cancel := context.WithTimeout(ctx, v.headTimeout)
	defer cancel()

	resp, err := v.client.Head(hctx, pdfURL)
	if err != nil {
		return models.Verification{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && (isPDF(resp.Header) || resp.ContentLength > 0) {
		return models.Verification{
			Valid:      true,
			StatusCode: resp.StatusCode,
			Message:    "PDF accessible directly",
		}, true
	}
	return models.Verification{}, false
}

// tryGet is the authoritative probe. A 200 with a non-PDF body means the URL
// redirects to a landing page: the final resolved URL is recorded as the
// fallback and the landing page's title, when extractable, goes into the
// message so an operator knows where the link leads.
func (v *Verifier) tryGet(ctx context.Context, pdfURL string) models.Verification {
	gctx, cancel := context.WithTimeout(ctx, v.getTimeout)
	defer cancel()

	resp, err := v.client.Get(gctx, pdfURL)
	if err != nil {
		return models.Verification{Valid: false, Message: probeError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Verification{
			Valid:      false,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	if isPDF(resp.Header) {
		return models.Verification{
			Valid:      true,
			StatusCode: resp.StatusCode,
			Message:    "PDF accessible directly",
		}
	}

	fallback := resp.Request.URL.String()
	message := "Content is not a PDF"
	if article, rerr := readability.FromReader(resp.Body, resp.Request.URL); rerr == nil && article.Title != "" {
		message = fmt.Sprintf("Content is not a PDF (landing page: %s)", article.Title)
	}

	return models.Verification{
		Valid:       false,
		StatusCode:  resp.StatusCode,
		FallbackURL: fallback,
		Message:     message,
	}
}

func isPDF(h http.Header) bool {
	return strings.Contains(strings.ToLower(h.Get("Content-Type")), "pdf")
}

func probeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timeout"
	default:
		return fmt.Sprintf("Connection error: %v", err)
	}
}
