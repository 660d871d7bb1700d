package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gr_scraper/internal/dedup"
	"gr_scraper/internal/extractor"
	"gr_scraper/internal/fetch"
	"gr_scraper/internal/models"
)

// Form field names of the GR page's server-rendered dropdown. This is a
// scripted simulation of a stateful web form, not a documented API; a site
// redesign will break it at the page granularity, which the run tolerates.
const (
	fieldLanguage    = "ctl04$ddllang"
	fieldBranch      = "ctl08$ddlbranch"
	fieldEventTarget = "__EVENTTARGET"
	fieldEventArg    = "__EVENTARGUMENT"
)

// runBranches iterates the configured branch dropdown values, posting the
// filter form per branch and routing the returned links through the
// pipeline with the branch preassigned.
func (o *Orchestrator) runBranches(ctx context.Context, opts Options, tracker *dedup.Tracker, summary *models.RunSummary) []*models.DocumentRecord {
	o.phase = PhaseScraping
	grURL := o.cfg.Site.BaseURL + o.cfg.Site.GRPagePath

	var accepted []*models.DocumentRecord
	for _, option := range o.cfg.Branches {
		if ctx.Err() != nil {
			break
		}

		branch := models.BranchCode(option.Name)
		if !models.IsKnownBranch(branch) {
			o.log.Warnw("❌ branch not in enumeration, skipping", "name", option.Name)
			continue
		}

		// Already-have-enough skip: storage is consulted before the
		// form round-trip, not after.
		if o.branchSaturated(ctx, branch) {
			o.log.Infow("⏭️ skipping saturated branch", "branch", branch)
			continue
		}

		if err := o.pageLim.Wait(ctx); err != nil {
			break
		}

		links, err := o.scrapeBranch(ctx, grURL, option.Value)
		if err != nil {
			o.log.Warnw("⚠️ branch scrape failed, skipping", "branch", branch, "error", err)
			summary.PagesFailed++
			continue
		}
		summary.PagesScanned++
		summary.LinksFound += len(links)
		o.log.Infow("🔍 branch scanned", "branch", branch, "pdf_links", len(links))

		for _, link := range links {
			o.processLink(ctx, link, branch, opts, tracker, summary, &accepted)
		}
	}
	return accepted
}

func (o *Orchestrator) branchSaturated(ctx context.Context, branch models.BranchCode) bool {
	if o.cfg.Logic.BranchSkipAt <= 0 {
		return false
	}
	docs, err := o.store.ByBranch(ctx, branch)
	if err != nil {
		return false
	}
	return len(docs) >= o.cfg.Logic.BranchSkipAt
}

// scrapeBranch performs the form round-trip: GET the page for its hidden
// state, POST it back with the branch selected, extract PDF links from the
// response.
func (o *Orchestrator) scrapeBranch(ctx context.Context, grURL, branchValue string) ([]models.PDFLink, error) {
	form, err := o.harvestForm(ctx, grURL)
	if err != nil {
		return nil, err
	}

	form.Set(fieldLanguage, o.cfg.Site.LanguageValue)
	form.Set(fieldBranch, branchValue)
	form.Set(fieldEventTarget, fieldBranch)
	form.Set(fieldEventArg, "")

	resp, err := o.client.PostForm(ctx, grURL, form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	html, err := fetch.DecodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return extractor.FromHTML(html, "GR Page", grURL, o.cfg.Site.BaseURL), nil
}

// harvestForm collects the page's hidden inputs (__VIEWSTATE and friends);
// posting without them gets an empty response from the server.
func (o *Orchestrator) harvestForm(ctx context.Context, grURL string) (url.Values, error) {
	html, err := o.client.GetHTML(ctx, grURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := s.Attr("value")
		form.Set(name, value)
	})
	return form, nil
}
