// Package scraper sequences a discovery run: page discovery, link
// extraction, verification, metadata extraction, classification,
// deduplication and the final batch persistence. Fault isolation is the
// design rule here: a page failure loses that page, a document failure loses
// that document, and only storage unavailability at run start aborts a run.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gr_scraper/internal/classifier"
	"gr_scraper/internal/config"
	"gr_scraper/internal/dedup"
	"gr_scraper/internal/discovery"
	"gr_scraper/internal/extractor"
	"gr_scraper/internal/fetch"
	"gr_scraper/internal/metadata"
	"gr_scraper/internal/models"
	"gr_scraper/internal/storage"
	"gr_scraper/internal/verifier"
)

// Phase is the run state. A run never moves backward once Persisting begins.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseScraping    Phase = "scraping"
	PhaseFiltering   Phase = "filtering"
	PhasePersisting  Phase = "persisting"
	PhaseDone        Phase = "done"
)

// Mode selects how source pages are enumerated.
type Mode int

const (
	// ModePages scans the fixed (plus optionally discovered) listing pages.
	ModePages Mode = iota
	// ModeBranches drives the GR page's server-side branch filter form.
	ModeBranches
)

// Options are the per-run knobs. Verification and route tracking are
// optional stages of the one pipeline, not separate scraper variants.
type Options struct {
	Mode            Mode
	TargetPerBranch int
	Verify          bool
	TrackRoutes     bool
	Discover        bool
}

// Orchestrator wires the pipeline components for one or more runs.
type Orchestrator struct {
	cfg     *config.Config
	store   storage.Store
	pages   *extractor.Extractor
	meta    *metadata.Extractor
	probe   *verifier.Verifier
	disc    discoverer
	client  *fetch.Client
	pageLim *rate.Limiter
	docLim  *rate.Limiter
	robots  *robotstxt.Group
	log     *zap.SugaredLogger
	phase   Phase
}

// discoverer narrows the discovery dependency for tests.
type discoverer interface {
	Discover(ctx context.Context, known []config.PageConfig, explore bool) []models.SourcePage
}

// New builds an Orchestrator with explicitly constructed clients: one with
// the page timeout for listing fetches, one without a client timeout for the
// verifier's per-probe deadlines.
func New(cfg *config.Config, store storage.Store, log *zap.SugaredLogger) *Orchestrator {
	pageClient := fetch.NewClient(cfg.Site.UserAgent, cfg.PageTimeout())
	probeClient := fetch.NewClient(cfg.Site.UserAgent, 0)

	pageLim := rate.NewLimiter(rate.Every(cfg.PageDelay()), 1)
	docLim := rate.NewLimiter(rate.Every(cfg.DocumentDelay()), 1)

	var d discoverer = discovery.New(pageClient, cfg, pageLim, log)

	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		pages:   extractor.New(pageClient, cfg.Site.BaseURL, log),
		meta:    metadata.NewExtractor(),
		probe:   verifier.New(probeClient, cfg.HeadTimeout(), cfg.GetTimeout(), log),
		disc:    d,
		client:  pageClient,
		pageLim: pageLim,
		docLim:  docLim,
		log:     log,
		phase:   PhaseIdle,
	}
}

// Phase reports the current run phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Run executes one full scraping run and returns its summary. The only
// fatal errors are a dedup seed that cannot be loaded and a context cancel.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*models.RunSummary, error) {
	if opts.TargetPerBranch == 0 {
		opts.TargetPerBranch = o.cfg.Logic.TargetPerBranch
	}

	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		ByBranch:  make(map[models.BranchCode]int),
	}
	o.log.Infow("🚀 starting scraping run", "run_id", summary.RunID,
		"target_per_branch", opts.TargetPerBranch, "verify", opts.Verify)

	o.phase = PhaseDiscovering

	// Hard fail-fast: a run with an unseeded URL set would silently
	// re-insert everything it has ever found.
	existing, err := o.store.ExistingURLs(ctx)
	if err != nil {
		o.phase = PhaseDone
		return nil, fmt.Errorf("seeding existing url set: %w", err)
	}
	tracker := dedup.NewTracker(existing, opts.TargetPerBranch)
	o.log.Infow("📦 existing documents in storage", "count", len(existing))

	if o.cfg.Logic.RespectRobotsTxt {
		o.initRobots(ctx)
	}

	var accepted []*models.DocumentRecord
	switch opts.Mode {
	case ModeBranches:
		accepted = o.runBranches(ctx, opts, tracker, summary)
	default:
		accepted = o.runPages(ctx, opts, tracker, summary)
	}

	// Deduplication runs inline as links arrive (the tracker must see
	// every candidate in order), so by now the accepted set is final.
	o.phase = PhaseFiltering

	o.phase = PhasePersisting
	o.persist(ctx, accepted, summary)

	o.phase = PhaseDone
	summary.FinishedAt = time.Now()
	o.logSummary(summary)
	return summary, nil
}

// runPages scans each discovered listing page and routes every link through
// the pipeline.
func (o *Orchestrator) runPages(ctx context.Context, opts Options, tracker *dedup.Tracker, summary *models.RunSummary) []*models.DocumentRecord {
	sources := o.disc.Discover(ctx, o.cfg.Pages, opts.Discover)

	o.phase = PhaseScraping
	var accepted []*models.DocumentRecord

	for _, page := range sources {
		if ctx.Err() != nil {
			break
		}
		if err := o.pageLim.Wait(ctx); err != nil {
			break
		}

		links := o.pages.ExtractPage(ctx, page.Name, page.URL)
		if links == nil {
			summary.PagesFailed++
			continue
		}
		summary.PagesScanned++

		if limit := o.cfg.Logic.MaxPerPage; limit > 0 && len(links) > limit {
			links = links[:limit]
		}
		summary.LinksFound += len(links)

		for _, link := range links {
			o.processLink(ctx, link, "", opts, tracker, summary, &accepted)
		}
	}
	return accepted
}

// processLink runs one candidate through verification, metadata extraction,
// classification and the tracker. forcedBranch overrides classification for
// branch-targeted scraping, where the form already filtered by branch.
func (o *Orchestrator) processLink(ctx context.Context, link models.PDFLink, forcedBranch models.BranchCode, opts Options, tracker *dedup.Tracker, summary *models.RunSummary, accepted *[]*models.DocumentRecord) {
	if !o.robotsAllowed(link.URL) {
		o.log.Debugw("🤖 robots.txt disallows document", "url", link.URL)
		return
	}

	branch := forcedBranch
	if branch == "" {
		branch = classifier.Classify(link)
	}

	meta := o.meta.Extract(link)
	meta = o.meta.WithPlaceholder(meta, link, string(branch))

	record, err := models.NewDocumentRecord(meta, branch, link, time.Now())
	if err != nil {
		o.log.Warnw("❌ dropping malformed candidate", "url", link.URL, "error", err)
		summary.Errors++
		return
	}

	switch tracker.Accept(record) {
	case dedup.DuplicateURL:
		summary.Duplicates++
		return
	case dedup.QuotaReached:
		summary.QuotaRejected++
		return
	}

	if opts.Verify {
		if err := o.docLim.Wait(ctx); err != nil {
			return
		}
		v := o.probe.Verify(ctx, record.PDFURL)
		record.ApplyVerification(v)
		if v.Valid {
			summary.ValidPDFs++
		} else {
			summary.InvalidPDFs++
		}
	}

	if opts.TrackRoutes {
		record.NavigationRoute = fmt.Sprintf("Home Page → %s → %s", link.SourcePage, branch)
	}

	*accepted = append(*accepted, record)
	summary.Accepted++
	summary.ByBranch[record.Branch]++
	o.log.Infow("✅ new document", "gr_no", record.GRNo, "branch", record.Branch)
}

// persist writes the snapshot safety net first, then the primary batch.
func (o *Orchestrator) persist(ctx context.Context, accepted []*models.DocumentRecord, summary *models.RunSummary) {
	if len(accepted) == 0 {
		o.log.Infow("⚠️ no new documents found")
		return
	}

	if o.cfg.Backup.Enabled {
		name, err := storage.WriteSnapshot(o.cfg.Backup.Dir, summary.RunID, accepted)
		if err != nil {
			o.log.Warnw("⚠️ backup snapshot failed", "error", err)
		} else {
			summary.BackupFile = name
			o.log.Infow("📁 backup saved", "file", name)
		}
	}

	inserted, err := o.store.Insert(ctx, accepted)
	if err != nil {
		o.log.Errorw("❌ storage insert failed", "error", err)
		summary.Errors++
		return
	}
	if inserted < len(accepted) {
		o.log.Warnw("⚠️ partial insert", "inserted", inserted, "accepted", len(accepted))
		summary.Errors += len(accepted) - inserted
	}
}

func (o *Orchestrator) initRobots(ctx context.Context) {
	base, err := url.Parse(o.cfg.Site.BaseURL)
	if err != nil {
		return
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", base.Scheme, base.Host)
	resp, err := o.client.Get(ctx, robotsURL)
	if err != nil {
		o.log.Warnw("⚠️ robots.txt fetch failed, proceeding without", "error", err)
		return
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		o.log.Warnw("⚠️ robots.txt parse failed, proceeding without", "error", err)
		return
	}
	o.robots = data.FindGroup(o.cfg.Site.UserAgent)
	o.log.Infow("🤖 robots.txt loaded")
}

func (o *Orchestrator) robotsAllowed(rawURL string) bool {
	if o.robots == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return o.robots.Test(u.Path)
}

func (o *Orchestrator) logSummary(s *models.RunSummary) {
	o.log.Infow("📊 run complete",
		"run_id", s.RunID,
		"pages_scanned", s.PagesScanned,
		"pages_failed", s.PagesFailed,
		"links_found", s.LinksFound,
		"accepted", s.Accepted,
		"duplicates", s.Duplicates,
		"quota_rejected", s.QuotaRejected,
		"valid_pdfs", s.ValidPDFs,
		"invalid_pdfs", s.InvalidPDFs,
		"errors", s.Errors,
		"duration", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond),
	)
	for branch, n := range s.ByBranch {
		o.log.Infow("🌳 branch result", "branch", branch, "new_documents", n)
	}
}
