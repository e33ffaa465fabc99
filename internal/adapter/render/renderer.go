package render

import (
	"github.com/specvital/planner/internal/adapter/section"
	"github.com/specvital/planner/internal/domain/plan"
)

// RenderedSection is one section of a stored plan ready for display.
type RenderedSection struct {
	HTML   string         `json:"html"`
	ID     plan.SectionID `json:"id"`
	Method string         `json:"method"`
	Title  string         `json:"title"`
}

// Renderer extracts and formats every section of a combined document.
type Renderer struct {
	catalog   *plan.Catalog
	extractor *section.Extractor
}

func NewRenderer(catalog *plan.Catalog, extractor *section.Extractor) *Renderer {
	return &Renderer{catalog: catalog, extractor: extractor}
}

// RenderPlan returns the formatted sections of doc in canonical order.
func (r *Renderer) RenderPlan(doc string) []RenderedSection {
	extracted := r.extractor.ExtractAll(doc)
	out := make([]RenderedSection, 0, len(extracted))
	for _, s := range extracted {
		out = append(out, RenderedSection{
			HTML:   Format(s.Text),
			ID:     s.ID,
			Method: s.Method,
			Title:  r.catalog.Title(s.ID),
		})
	}
	return out
}
