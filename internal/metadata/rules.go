package metadata

import "regexp"

// GRRule is one named pattern of the GR-number cascade. Rules are tried in
// slice order and the first match wins; more specific government-identifier
// shapes sit before generic ones. Reordering changes which identifier a
// document gets, so the order is part of the contract.
type GRRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// GRRules is the fixed cascade. The Gujarati-script rule leads because those
// identifiers also contain digits the generic rules would half-capture.
var GRRules = []GRRule{
	{"gujarati-gr", regexp.MustCompile(`પગર[^\s]*[\-\/]*\d+[^\s]*`)},
	{"english-gr", regexp.MustCompile(`GR[^\s]*[\-\/]*\d+[^\s]*`)},
	{"dashed-identifier", regexp.MustCompile(`\w+\-\d+\-\d+\-\w+`)},
	{"underscore-identifier", regexp.MustCompile(`[A-Z]+_\d+_[^_]+_\d+`)},
	{"circular", regexp.MustCompile(`Cir_\d+_[^_]+_\d+`)},
	{"rule", regexp.MustCompile(`Rule_\d+_[^_]+_\d+`)},
	{"notification", regexp.MustCompile(`Not_\d+_[^_]+_\d+`)},
}

// DateRule is one named date pattern, tried in order against the link text
// and then the URL filename.
type DateRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DateRules covers the three formats the portal mixes freely.
var DateRules = []DateRule{
	{"day-mon-year", regexp.MustCompile(`\d{1,2}[-/]\w{3}[-/]\d{2,4}`)},
	{"day-month-year", regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)},
	{"year-month-day", regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`)},
}

// matchFirst runs a cascade over the input and returns the first match.
func matchGR(input string) (string, bool) {
	for _, rule := range GRRules {
		if m := rule.Pattern.FindString(input); m != "" {
			return m, true
		}
	}
	return "", false
}

func matchDate(input string) (string, bool) {
	for _, rule := range DateRules {
		if m := rule.Pattern.FindString(input); m != "" {
			return m, true
		}
	}
	return "", false
}
