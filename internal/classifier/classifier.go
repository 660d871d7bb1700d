// Package classifier maps a PDF link to exactly one administrative branch.
//
// Classification is a two-tier fallback: keyword evidence in the link itself
// outranks the page it was found on, which outranks the hardcoded default.
// A document matching keyword lists of two branches goes to whichever branch
// is tested first in the fixed mapping order; that tie-break is arbitrary
// and documented, not a confidence ranking.
package classifier

import (
	"strings"

	"gr_scraper/internal/models"
)

// branchKeywords pairs one branch with its match list (English plus
// Gujarati-script keywords, all lowercase).
type branchKeywords struct {
	Branch   models.BranchCode
	Keywords []string
}

// keywordOrder is the fixed test order. Do not reorder: the first matching
// entry wins, and downstream data depends on that precedence staying put.
var keywordOrder = []branchKeywords{
	{models.BranchPay, []string{
		"pay", "salary", "scale", "grade", "allowance", "increment",
		"employee", "service", "વેતન", "પગાર", "કર્મચારી",
	}},
	{models.BranchPayCommission, []string{
		"commission", "committee", "pay commission", "કમિશન", "સમિતિ",
	}},
	{models.BranchBudget, []string{
		"budget", "allocation", "expenditure", "appropriation",
		"બજેટ", "ફાળવણી", "ખર્ચ",
	}},
	{models.BranchPSU, []string{
		"psu", "undertaking", "corporation", "enterprise", "company",
		"ઉદ્યોગ", "કંપની", "નિગમ",
	}},
	// "service" also appears under BranchPay and "treasury" under
	// BranchTreasury; the earlier entry wins by the fixed order. The
	// overlaps are kept verbatim because reclassifying them would move
	// existing documents between branches.
	{models.BranchServiceMatter, []string{
		"service", "recruitment", "promotion", "transfer", "posting",
		"સેવા", "ભરતી", "બઢતી",
	}},
	{models.BranchBanking, []string{
		"bank", "banking", "treasury", "deposit", "account",
		"બેંક", "ખજાનો", "ખાતું",
	}},
	{models.BranchPension, []string{
		"pension", "retirement", "gratuity", "provident fund",
		"પેન્શન", "નિવૃત્તિ", "ભવિષ્ય નિધિ",
	}},
	{models.BranchTreasury, []string{
		"treasury", "cash", "payment", "receipt", "transaction",
		"ખજાનો", "રોકડ", "ચુકવણી",
	}},
	{models.BranchFinanceCode, []string{
		"finance code", "financial rules", "procedure", "manual",
		"નાણાકીય નિયમો", "કોડ",
	}},
	{models.BranchAudit, []string{
		"audit", "inspection", "examination", "review",
		"ઓડિટ", "તપાસ", "નિરીક્ષણ",
	}},
	{models.BranchEconomy, []string{"economy", "economic"}},
	{models.BranchGST, []string{"gst", "goods and service tax"}},
}

// pageSourceDefaults resolves documents with no keyword evidence from the
// name of the page they were found on. Slice, not map: "gr" must be tested
// after the more specific page names that happen to contain it.
var pageSourceDefaults = []struct {
	Substr string
	Branch models.BranchCode
}{
	{"circular", models.BranchPayCommission},
	{"notif", models.BranchPayCommission},
	{"budget", models.BranchBudget},
	{"treasury", models.BranchTreasury},
	{"pension", models.BranchPension},
	{"audit", models.BranchAudit},
	{"rule", models.BranchFinanceCode},
	{"resolution", models.BranchPay},
	{"gr", models.BranchPay},
}

// Classify returns the branch for one link. The result is always a member of
// the closed enumeration.
func Classify(link models.PDFLink) models.BranchCode {
	combined := strings.ToLower(link.Text + " " + link.Context + " " + link.URL + " " + link.SourcePage)

	for _, entry := range keywordOrder {
		for _, kw := range entry.Keywords {
			if strings.Contains(combined, kw) {
				return entry.Branch
			}
		}
	}

	pageSource := strings.ToLower(link.SourcePage)
	for _, def := range pageSourceDefaults {
		if strings.Contains(pageSource, def.Substr) {
			return def.Branch
		}
	}

	return models.DefaultBranch
}

// KeywordOrder exposes the fixed branch test order for reporting.
func KeywordOrder() []models.BranchCode {
	order := make([]models.BranchCode, len(keywordOrder))
	for i, entry := range keywordOrder {
		order[i] = entry.Branch
	}
	return order
}
