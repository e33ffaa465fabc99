package section

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/specvital/planner/internal/domain/plan"
)

// patterns holds the compiled heading matchers for a catalog.
type patterns struct {
	// heading matches a "#" or "##" line starting with one of the section's
	// labels, optionally numbered ("## 2. Market Analysis").
	heading map[plan.SectionID]*regexp.Regexp
	// anyHeading is heading over the labels of every section.
	anyHeading *regexp.Regexp
	// line matches a line consisting only of a label, with optional markdown
	// heading, bold or numbering decoration.
	line map[plan.SectionID]*regexp.Regexp
}

func compilePatterns(catalog *plan.Catalog) *patterns {
	p := &patterns{
		heading: make(map[plan.SectionID]*regexp.Regexp),
		line:    make(map[plan.SectionID]*regexp.Regexp),
	}

	var all []string
	for _, spec := range catalog.Specs() {
		alt := labelAlternation(spec.Labels)
		p.heading[spec.ID] = regexp.MustCompile(headingPattern(alt))
		p.line[spec.ID] = regexp.MustCompile(linePattern(alt))
		all = append(all, spec.Labels...)
	}
	p.anyHeading = regexp.MustCompile(headingPattern(labelAlternation(all)))

	return p
}

func headingPattern(alt string) string {
	return `(?im)^[ \t]*#{1,2}[ \t]*(?:\d+\.[ \t]*)?(?:` + alt + `)[^\n]*`
}

func linePattern(alt string) string {
	return `(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*|__)?(?:\d+\.[ \t]*)?(?:` + alt + `)[ \t]*:?[ \t]*(?:\*\*|__)?[ \t]*:?[ \t]*$`
}

// labelAlternation quotes labels and orders them longest first so the most
// specific synonym wins.
func labelAlternation(labels []string) string {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(norm.NFC.String(l))
		if l == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(l))
	}
	slices.SortStableFunc(quoted, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	quoted = slices.Compact(quoted)
	return strings.Join(quoted, "|")
}
