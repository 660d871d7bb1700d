package models

import (
	"fmt"
	"time"
)

// BranchCode is an administrative branch of the finance department. The set
// is closed: every stored document carries exactly one of the values below.
type BranchCode string

const (
	BranchPay            BranchCode = "M-(Pay of Government Employee)"
	BranchPayCommission  BranchCode = "PayCell-(Pay Commission)"
	BranchBudget         BranchCode = "K-(Budget)"
	BranchPSU            BranchCode = "A-(Public Sector Undertaking)"
	BranchServiceMatter  BranchCode = "CH-(Service Matter)"
	BranchBanking        BranchCode = "N-(Banking)"
	BranchPension        BranchCode = "P-(Pension)"
	BranchTreasury       BranchCode = "T-(Treasury)"
	BranchFinanceCode    BranchCode = "F-(Finance Code)"
	BranchAudit          BranchCode = "AU-(Audit)"
	BranchEconomy        BranchCode = "Z-(Economy)"
	BranchGST            BranchCode = "GST Cell"
	BranchLocalEstab     BranchCode = "T-(Local Establishment)"
	BranchVAT            BranchCode = "TH-(Value Added Tax)"
	BranchCommercialTax  BranchCode = "TH-3-(Commercial Tax Establishment)"
	BranchTreasurySite   BranchCode = "Z-(Treasury)"
	BranchEconomySite    BranchCode = "Z-1-(Economy)"
	BranchAuditPara      BranchCode = "G-(Audit Para)"
	BranchAccountsCadre  BranchCode = "GH-(Accounts Cadre Establishment)"
	BranchFinResources   BranchCode = "FR-(Financial Resources)"
	BranchDebtManagement BranchCode = "DMO-(Debt Management)"
	BranchGovtCompanies  BranchCode = "GO Cell-(Government Companies)"
	BranchSmallSavings   BranchCode = "B-RTI Cell-(Small Savings RTI)"
	BranchKH             BranchCode = "KH"
	BranchPMU            BranchCode = "PMU-Cell"
)

// DefaultBranch is assigned when neither keywords nor the page source give
// any classification signal.
const DefaultBranch = BranchPay

// AllBranches lists every member of the closed enumeration.
var AllBranches = []BranchCode{
	BranchPay, BranchPayCommission, BranchBudget, BranchPSU,
	BranchServiceMatter, BranchBanking, BranchPension, BranchTreasury,
	BranchFinanceCode, BranchAudit, BranchEconomy, BranchGST,
	BranchLocalEstab, BranchVAT, BranchCommercialTax, BranchTreasurySite,
	BranchEconomySite, BranchAuditPara, BranchAccountsCadre,
	BranchFinResources, BranchDebtManagement, BranchGovtCompanies,
	BranchSmallSavings, BranchKH, BranchPMU,
}

var branchSet = func() map[BranchCode]struct{} {
	m := make(map[BranchCode]struct{}, len(AllBranches))
	for _, b := range AllBranches {
		m[b] = struct{}{}
	}
	return m
}()

// IsKnownBranch reports whether b is a member of the closed enumeration.
func IsKnownBranch(b BranchCode) bool {
	_, ok := branchSet[b]
	return ok
}

// MaxSubjectLen is the display cap for subjects; longer strings are stored
// truncated with a trailing ellipsis marker.
const MaxSubjectLen = 200

// SourcePage is one listing page a run will scan.
type SourcePage struct {
	Name string
	URL  string
}

// PDFLink is one candidate anchor pulled off a listing page, before any
// metadata extraction.
type PDFLink struct {
	URL           string
	Text          string
	Context       string
	SourcePage    string
	SourcePageURL string
}

// Verification is the outcome of probing a PDF URL.
type Verification struct {
	Valid       bool
	StatusCode  int
	FallbackURL string
	Message     string
}

// Metadata is the structured triple derived from a link's unstructured
// text/context/URL.
type Metadata struct {
	GRNo          string
	Date          string
	DateEstimated bool
	Subject       string
}

// DocumentRecord is the canonical unit of discovered data, persisted once it
// survives deduplication and quota checks.
type DocumentRecord struct {
	GRNo             string     `bson:"gr_no" json:"gr_no"`
	Date             string     `bson:"date" json:"date"`
	DateEstimated    bool       `bson:"date_estimated" json:"date_estimated"`
	Subject          string     `bson:"subject" json:"subject"`
	Branch           BranchCode `bson:"branch" json:"branch"`
	PDFURL           string     `bson:"pdf_url" json:"pdf_url"`
	PDFValid         *bool      `bson:"pdf_valid" json:"pdf_valid"`
	PDFStatus        string     `bson:"pdf_status,omitempty" json:"pdf_status,omitempty"`
	FallbackURL      string     `bson:"fallback_url,omitempty" json:"fallback_url,omitempty"`
	NavigationRoute  string     `bson:"navigation_route,omitempty" json:"navigation_route,omitempty"`
	SourcePage       string     `bson:"source_page" json:"source_page"`
	SourcePageURL    string     `bson:"source_page_url" json:"source_page_url"`
	VerificationDate string     `bson:"verification_date,omitempty" json:"verification_date,omitempty"`
	ScrapedAt        time.Time  `bson:"scraped_at" json:"scraped_at"`
}

// NewDocumentRecord builds a validated record. A blank GR number or a branch
// outside the enumeration is a construction error, never a stored row.
func NewDocumentRecord(meta Metadata, branch BranchCode, link PDFLink, scrapedAt time.Time) (*DocumentRecord, error) {
	if meta.GRNo == "" {
		return nil, fmt.Errorf("document %q: empty gr_no", link.URL)
	}
	if !IsKnownBranch(branch) {
		return nil, fmt.Errorf("document %q: unknown branch %q", link.URL, branch)
	}
	return &DocumentRecord{
		GRNo:          meta.GRNo,
		Date:          meta.Date,
		DateEstimated: meta.DateEstimated,
		Subject:       meta.Subject,
		Branch:        branch,
		PDFURL:        link.URL,
		SourcePage:    link.SourcePage,
		SourcePageURL: link.SourcePageURL,
		ScrapedAt:     scrapedAt,
	}, nil
}

// ApplyVerification folds a probe outcome into the record.
func (d *DocumentRecord) ApplyVerification(v Verification) {
	valid := v.Valid
	d.PDFValid = &valid
	d.PDFStatus = v.Message
	d.FallbackURL = v.FallbackURL
}

// SearchFilter narrows a storage search; zero-value fields are ignored.
type SearchFilter struct {
	GRNo    string
	Branch  BranchCode
	Date    string
	Subject string
}

// RunSummary aggregates one pipeline run for the final report.
type RunSummary struct {
	RunID         string             `json:"run_id"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
	PagesScanned  int                `json:"pages_scanned"`
	PagesFailed   int                `json:"pages_failed"`
	LinksFound    int                `json:"links_found"`
	Accepted      int                `json:"accepted"`
	Duplicates    int                `json:"duplicates"`
	QuotaRejected int                `json:"quota_rejected"`
	ValidPDFs     int                `json:"valid_pdfs"`
	InvalidPDFs   int                `json:"invalid_pdfs"`
	Errors        int                `json:"errors"`
	ByBranch      map[BranchCode]int `json:"by_branch"`
	BackupFile    string             `json:"backup_file,omitempty"`
}
