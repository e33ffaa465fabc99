package plan

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	PlaceholderProblem          = "No specific problem identified in the text."
	PlaceholderConcept          = "No specific concept identified in the text."
	PlaceholderValueProposition = "No specific value proposition identified in the text."
	PlaceholderTargetMarket     = "No specific target market identified in the text."

	minTextForProblemGuess = 100
	minParagraphForProblem = 50
)

// Label patterns are tried in order; the first one with a non-empty capture wins.
var (
	problemLabels = labelPatterns(
		`Identified Problem[s]?`,
		`Problem Statement`,
		`Pain Point Identified`,
		`Pain Point[s]?`,
	)
	conceptLabels = labelPatterns(
		`Concept Summary`,
		`Concept`,
		`Business Idea`,
		`Solution`,
	)
	valuePropositionLabels = labelPatterns(
		`Unique Value Proposition`,
		`Value Proposition`,
		`Unique Value`,
		`Benefits`,
	)
	targetMarketLabels = labelPatterns(
		`Target Market`,
		`Target Audience`,
		`Customer Segment[s]?`,
	)
)

func labelPatterns(labels ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(labels))
	for i, l := range labels {
		// Emphasis markers around the label or colon are consumed with it.
		patterns[i] = regexp.MustCompile(`(?i)\b` + l + `(?:\*\*|__)?[ \t]*:?(?:\*\*|__)?`)
	}
	return patterns
}

// ExtractKeyInformation pulls the problem, concept, value proposition and
// target market out of a generated idea. It never fails: missing fields get
// placeholder text and unexpected errors yield error placeholders.
func ExtractKeyInformation(text string) (info KeyInformation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("key information extraction failed", "error", fmt.Sprint(r))
			info = KeyInformation{
				Concept:          "Error extracting concept.",
				OriginalText:     text,
				Problem:          "Error extracting problem.",
				TargetMarket:     "Error extracting target market.",
				ValueProposition: "Error extracting value proposition.",
			}
		}
	}()

	info = KeyInformation{
		Concept:          firstCapture(text, conceptLabels, PlaceholderConcept),
		OriginalText:     text,
		Problem:          firstCapture(text, problemLabels, PlaceholderProblem),
		TargetMarket:     firstCapture(text, targetMarketLabels, PlaceholderTargetMarket),
		ValueProposition: firstCapture(text, valuePropositionLabels, PlaceholderValueProposition),
	}

	if info.Problem == PlaceholderProblem && len(text) > minTextForProblemGuess {
		for _, p := range strings.Split(text, "\n\n") {
			if len(p) > minParagraphForProblem {
				info.Problem = strings.TrimSpace(p)
				break
			}
		}
	}

	slog.Debug("key information extracted",
		"problem_length", len(info.Problem),
		"concept_length", len(info.Concept),
		"value_proposition_length", len(info.ValueProposition),
		"target_market_length", len(info.TargetMarket),
	)

	return info
}

// firstCapture returns the text following the first matching label, up to
// the next '#', blank line or end of text.
func firstCapture(text string, patterns []*regexp.Regexp, placeholder string) string {
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if v := captureAfter(text[loc[1]:]); v != "" {
				return v
			}
		}
	}
	return placeholder
}

func captureAfter(rest string) string {
	rest = strings.TrimLeft(rest, " \t\r\n")
	end := len(rest)
	if i := strings.IndexByte(rest, '#'); i >= 0 && i < end {
		end = i
	}
	if i := strings.Index(rest, "\n\n"); i >= 0 && i < end {
		end = i
	}
	return strings.TrimSpace(rest[:end])
}
