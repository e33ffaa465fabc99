package section

import (
	"regexp"
	"slices"
	"strings"

	"github.com/specvital/planner/internal/domain/plan"
)

// Minimum content length, in characters, each strategy accepts.
const (
	minHeadingContent    = 50
	minKeywordContent    = 100
	minPositionalContent = 200

	keywordsPerParagraph = 2
	maxParagraphGap      = 5
	minRunParagraphs     = 3

	neighborSkip   = 1000
	keywordPadding = 500
	tailFallback   = 2000
)

var paragraphSeparator = regexp.MustCompile(`\n[ \t]*\n`)

// byHeading takes the text between the section's "#"/"##" heading and the
// next heading of any known section.
func byHeading(doc *Document, spec plan.SectionSpec) (string, bool) {
	loc := doc.patterns.heading[spec.ID].FindStringIndex(doc.Text)
	if loc == nil {
		return "", false
	}

	start := loc[1]
	end := len(doc.Text)
	if next := doc.patterns.anyHeading.FindStringIndex(doc.Text[start:]); next != nil {
		end = start + next[0]
	}

	return accept(doc.Text[start:end], minHeadingContent)
}

type headingEntry struct {
	id         plan.SectionID
	start, end int
}

// byHeadingIndex indexes every line that names a section, decorated or not,
// and slices from this section's line to the next indexed one.
func byHeadingIndex(doc *Document, spec plan.SectionSpec) (string, bool) {
	var entries []headingEntry
	for _, s := range doc.catalog.Specs() {
		for _, loc := range doc.patterns.line[s.ID].FindAllStringIndex(doc.Text, -1) {
			entries = append(entries, headingEntry{id: s.ID, start: loc[0], end: loc[1]})
		}
	}
	if len(entries) == 0 {
		return "", false
	}

	slices.SortStableFunc(entries, func(a, b headingEntry) int {
		return a.start - b.start
	})
	entries = slices.CompactFunc(entries, func(a, b headingEntry) bool {
		return a.start == b.start
	})

	i := slices.IndexFunc(entries, func(e headingEntry) bool { return e.id == spec.ID })
	if i < 0 {
		return "", false
	}

	start := entries[i].end
	end := len(doc.Text)
	for _, e := range entries[i+1:] {
		if e.start >= start {
			end = e.start
			break
		}
	}

	return accept(doc.Text[start:end], minHeadingContent)
}

// byKeywordDensity looks for paragraphs mentioning at least two of the
// section's keywords and prefers the longest tight cluster of them.
func byKeywordDensity(doc *Document, spec plan.SectionSpec) (string, bool) {
	if len(spec.Keywords) == 0 {
		return "", false
	}

	paragraphs := paragraphSeparator.Split(doc.Text, -1)
	var qualifying []int
	for i, p := range paragraphs {
		if countKeywords(p, spec.Keywords) >= keywordsPerParagraph {
			qualifying = append(qualifying, i)
		}
	}
	if len(qualifying) == 0 {
		return "", false
	}

	bestFirst, bestCount := 0, 1
	runFirst, runCount := 0, 1
	for k := 1; k < len(qualifying); k++ {
		if qualifying[k]-qualifying[k-1] <= maxParagraphGap {
			runCount++
		} else {
			runFirst, runCount = k, 1
		}
		if runCount > bestCount {
			bestFirst, bestCount = runFirst, runCount
		}
	}

	if bestCount >= minRunParagraphs {
		from := qualifying[bestFirst]
		to := qualifying[bestFirst+bestCount-1]
		if text, ok := accept(strings.Join(paragraphs[from:to+1], "\n\n"), minKeywordContent); ok {
			return text, true
		}
	}

	parts := make([]string, len(qualifying))
	for k, i := range qualifying {
		parts[k] = paragraphs[i]
	}
	return accept(strings.Join(parts, "\n\n"), minKeywordContent)
}

// byNeighbors applies section-specific positional rules: content between
// neighboring headings, the span of fallback keyword lines, or the document
// tail for the last section.
func byNeighbors(doc *Document, spec plan.SectionSpec) (string, bool) {
	if len(spec.Neighbors) == 2 {
		if text, ok := betweenNeighbors(doc, spec.Neighbors[0], spec.Neighbors[1]); ok {
			return text, true
		}
	}

	if len(spec.FallbackKeywords) > 0 {
		if text, ok := aroundKeywordLines(doc, spec.FallbackKeywords); ok {
			return text, true
		}
	}

	if spec.Tail {
		if loc := doc.patterns.heading[spec.ID].FindStringIndex(doc.Text); loc != nil {
			if text, ok := accept(doc.Text[loc[1]:], minPositionalContent); ok {
				return text, true
			}
		}
		if runeLen(doc.Text) > tailFallback {
			if text := strings.TrimSpace(tailRunes(doc.Text, tailFallback)); text != "" {
				return text, true
			}
		}
	}

	return "", false
}

func betweenNeighbors(doc *Document, before, after plan.SectionID) (string, bool) {
	prev, okPrev := doc.patterns.heading[before]
	next, okNext := doc.patterns.heading[after]
	if !okPrev || !okNext {
		return "", false
	}

	p := prev.FindStringIndex(doc.Text)
	n := next.FindStringIndex(doc.Text)
	if p == nil || n == nil || p[1] >= n[0] {
		return "", false
	}

	from := forwardRunes(doc.Text, p[1], neighborSkip)
	if from >= n[0] {
		return "", false
	}
	return accept(doc.Text[from:n[0]], minPositionalContent)
}

func aroundKeywordLines(doc *Document, keywords []string) (string, bool) {
	first, last := -1, -1
	for _, kw := range keywords {
		re, err := regexp.Compile(`(?i)[^\n]*` + regexp.QuoteMeta(kw) + `[^\n]*`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(doc.Text, -1) {
			if first < 0 || loc[0] < first {
				first = loc[0]
			}
			last = max(last, loc[1])
		}
	}
	if first < 0 {
		return "", false
	}

	from := backwardRunes(doc.Text, first, keywordPadding)
	to := forwardRunes(doc.Text, last, keywordPadding)
	return accept(doc.Text[from:to], minPositionalContent)
}

// byRelativePosition returns the slice of the document where the section
// usually sits.
func byRelativePosition(doc *Document, spec plan.SectionSpec) (string, bool) {
	if spec.Window[1] <= spec.Window[0] {
		return "", false
	}
	return accept(sliceFraction(doc.Text, spec.Window[0], spec.Window[1]), minPositionalContent)
}

func countKeywords(paragraph string, keywords []string) int {
	lower := strings.ToLower(paragraph)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// accept trims text and reports whether it is longer than minLen characters.
func accept(text string, minLen int) (string, bool) {
	text = strings.TrimSpace(text)
	if runeLen(text) <= minLen {
		return "", false
	}
	return text, true
}
