// Package section locates individual plan sections inside a combined
// markdown document that may not follow the expected structure.
package section

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/specvital/planner/internal/domain/plan"
)

// Extraction methods reported in plan.ExtractedSection.Method.
const (
	MethodHeading    = "heading"
	MethodIndex      = "index"
	MethodKeywords   = "keywords"
	MethodPositional = "positional"
	MethodRelative   = "relative"
	MethodNotFound   = "not-found"
	MethodError      = "error"
)

// Document is a normalized plan being searched.
type Document struct {
	Text string

	catalog  *plan.Catalog
	patterns *patterns
}

// Strategy is one way of locating a section. Strategies are pure and
// report ok=false when they cannot produce acceptable content.
type Strategy struct {
	Method  string
	Extract func(doc *Document, spec plan.SectionSpec) (text string, ok bool)
}

// DefaultStrategies returns the built-in cascade, most precise first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Method: MethodHeading, Extract: byHeading},
		{Method: MethodIndex, Extract: byHeadingIndex},
		{Method: MethodKeywords, Extract: byKeywordDensity},
		{Method: MethodPositional, Extract: byNeighbors},
		{Method: MethodRelative, Extract: byRelativePosition},
	}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the strategy cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = strategies
	}
}

// Extractor runs the strategy cascade over a catalog's sections.
// Safe for concurrent use.
type Extractor struct {
	catalog    *plan.Catalog
	patterns   *patterns
	strategies []Strategy
}

// NewExtractor creates an extractor for catalog.
func NewExtractor(catalog *plan.Catalog, opts ...Option) *Extractor {
	e := &Extractor{
		catalog:    catalog,
		patterns:   compilePatterns(catalog),
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the content of section id found in doc. The result text is
// never empty: when nothing acceptable is found a user-facing message is
// returned instead.
func (e *Extractor) Extract(doc string, id plan.SectionID) (result plan.ExtractedSection) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("section extraction panicked",
				"section_id", id,
				"error", fmt.Sprint(r),
			)
			result = plan.ExtractedSection{
				ID:     id,
				Method: MethodError,
				Text:   fmt.Sprintf("Error extracting section %q. Please try regenerating the plan or contact support.", id),
			}
		}
	}()

	spec, ok := e.catalog.Spec(id)
	if !ok {
		return notFound(id, string(id))
	}

	d := e.newDocument(doc)
	for _, s := range e.strategies {
		if text, ok := s.Extract(d, spec); ok {
			slog.Debug("section extracted",
				"section_id", id,
				"method", s.Method,
				"length", runeLen(text),
			)
			return plan.ExtractedSection{ID: id, Method: s.Method, Text: text}
		}
	}

	slog.Warn("section not found in document",
		"section_id", id,
		"document_length", runeLen(d.Text),
	)
	return notFound(id, spec.Labels[0])
}

// ExtractAll extracts every catalog section in canonical order.
func (e *Extractor) ExtractAll(doc string) []plan.ExtractedSection {
	specs := e.catalog.Specs()
	out := make([]plan.ExtractedSection, 0, len(specs))
	for _, spec := range specs {
		out = append(out, e.Extract(doc, spec.ID))
	}
	return out
}

func (e *Extractor) newDocument(doc string) *Document {
	return &Document{
		Text:     norm.NFC.String(normalizeNewlines(doc)),
		catalog:  e.catalog,
		patterns: e.patterns,
	}
}

func notFound(id plan.SectionID, label string) plan.ExtractedSection {
	return plan.ExtractedSection{
		ID:     id,
		Method: MethodNotFound,
		Text:   fmt.Sprintf("Section %q not found in the generated plan. Please try regenerating the plan.", label),
	}
}
