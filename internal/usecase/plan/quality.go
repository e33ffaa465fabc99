package plan

import (
	"fmt"
	"regexp"
	"strings"
)

// frenchTerms are matched on word boundaries; frenchSymbols as plain substrings.
var (
	frenchTerms = []string{
		"France", "French", "Paris", "Lyon", "Marseille", "Bordeaux",
		"Toulouse", "Nantes", "Strasbourg", "Nice", "Montpellier", "euros", "EUR",
	}
	frenchSymbols = []string{"€"}

	frenchPatterns = compileTerms(frenchTerms)
)

func compileTerms(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return out
}

// Reference is one detected off-country term.
type Reference struct {
	Count int
	Term  string
}

// QualityReport describes how well a plan stays on its target country.
type QualityReport struct {
	CountryMentions int
	References      []Reference
	Score           int
	Skipped         bool // target country is France
}

// Contaminated reports whether French references exceed the tolerated count.
func (r QualityReport) Contaminated() bool {
	return r.Score > contaminationLimit
}

// Summary lists references as "Term (n)".
func (r QualityReport) Summary() string {
	parts := make([]string, len(r.References))
	for i, ref := range r.References {
		parts[i] = fmt.Sprintf("%s (%d)", ref.Term, ref.Count)
	}
	return strings.Join(parts, ", ")
}

// CheckCountryFocus scores doc for French references unless country is France.
func CheckCountryFocus(doc, country string) QualityReport {
	if strings.EqualFold(strings.TrimSpace(country), "france") {
		return QualityReport{Skipped: true}
	}

	report := QualityReport{CountryMentions: countMentions(doc, country)}
	for i, re := range frenchPatterns {
		if n := len(re.FindAllStringIndex(doc, -1)); n > 0 {
			report.References = append(report.References, Reference{Count: n, Term: frenchTerms[i]})
			report.Score += n
		}
	}
	for _, sym := range frenchSymbols {
		if n := strings.Count(doc, sym); n > 0 {
			report.References = append(report.References, Reference{Count: n, Term: sym})
			report.Score += n
		}
	}
	return report
}

func countMentions(doc, country string) int {
	country = strings.TrimSpace(country)
	if country == "" {
		return 0
	}
	return strings.Count(strings.ToLower(doc), strings.ToLower(country))
}

func contaminationBanner(country string, r QualityReport) string {
	return "# QUALITY ISSUE DETECTED\n\n" +
		"The AI generated a business plan that incorrectly focuses on France instead of " + country + ".\n\n" +
		"**Detected French references:** " + r.Summary() + "\n\n" +
		"This is a known issue that we're working to fix. Please try generating a new plan or contact support.\n\n" +
		"---\n\n"
}
