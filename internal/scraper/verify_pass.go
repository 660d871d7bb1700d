package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gr_scraper/internal/config"
	"gr_scraper/internal/fetch"
	"gr_scraper/internal/models"
	"gr_scraper/internal/storage"
	"gr_scraper/internal/verifier"
)

// BrokenPDF is one failed probe in a verification report.
type BrokenPDF struct {
	GRNo       string            `json:"gr_no"`
	PDFURL     string            `json:"pdf_url"`
	Branch     models.BranchCode `json:"branch"`
	Subject    string            `json:"subject"`
	Reason     string            `json:"reason"`
	StatusCode int               `json:"status_code,omitempty"`
}

// VerifyReport summarizes a standalone verification pass over storage.
type VerifyReport struct {
	VerifiedAt time.Time   `json:"verified_at"`
	Total      int         `json:"total_documents"`
	Working    int         `json:"working_count"`
	Broken     int         `json:"broken_count"`
	Updated    int         `json:"updated_count"`
	BrokenPDFs []BrokenPDF `json:"broken_pdfs,omitempty"`
}

// VerifyPass re-probes every stored document after the fact, patching
// pdf_valid/pdf_status on the stored rows when clean is requested.
type VerifyPass struct {
	store  storage.Store
	probe  *verifier.Verifier
	docLim *rate.Limiter
	log    *zap.SugaredLogger
}

// NewVerifyPass builds a pass with its own probe client and the configured
// per-document delay.
func NewVerifyPass(cfg *config.Config, store storage.Store, log *zap.SugaredLogger) *VerifyPass {
	probeClient := fetch.NewClient(cfg.Site.UserAgent, 0)
	return &VerifyPass{
		store:  store,
		probe:  verifier.New(probeClient, cfg.HeadTimeout(), cfg.GetTimeout(), log),
		docLim: rate.NewLimiter(rate.Every(cfg.DocumentDelay()), 1),
		log:    log,
	}
}

// Run verifies every stored document. With clean set, broken documents are
// marked in storage; working documents get their status refreshed too.
func (p *VerifyPass) Run(ctx context.Context, clean bool) (*VerifyReport, error) {
	docs, err := p.store.Search(ctx, models.SearchFilter{})
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{VerifiedAt: time.Now(), Total: len(docs)}
	p.log.Infow("🔍 verifying stored documents", "count", len(docs))

	for i, doc := range docs {
		if ctx.Err() != nil {
			break
		}

		if doc.PDFURL == "" {
			report.Broken++
			report.BrokenPDFs = append(report.BrokenPDFs, BrokenPDF{
				GRNo: doc.GRNo, Branch: doc.Branch, Subject: doc.Subject,
				Reason: "No URL",
			})
			continue
		}

		if err := p.docLim.Wait(ctx); err != nil {
			break
		}

		v := p.probe.Verify(ctx, doc.PDFURL)
		p.log.Infow("📄 verified", "n", i+1, "total", len(docs),
			"gr_no", doc.GRNo, "valid", v.Valid)

		if v.Valid {
			report.Working++
		} else {
			report.Broken++
			report.BrokenPDFs = append(report.BrokenPDFs, BrokenPDF{
				GRNo: doc.GRNo, PDFURL: doc.PDFURL, Branch: doc.Branch,
				Subject: doc.Subject, Reason: v.Message, StatusCode: v.StatusCode,
			})
		}

		if clean {
			valid := v.Valid
			patch := storage.UpdatePatch{
				GRNo:             doc.GRNo,
				PDFValid:         &valid,
				PDFStatus:        v.Message,
				VerificationDate: time.Now().Format(time.RFC3339),
			}
			if err := p.store.Update(ctx, patch); err != nil {
				p.log.Warnw("❌ verification update failed", "gr_no", doc.GRNo, "error", err)
			} else {
				report.Updated++
			}
		}
	}

	p.log.Infow("📊 verification summary",
		"working", report.Working, "broken", report.Broken, "updated", report.Updated)
	return report, nil
}
