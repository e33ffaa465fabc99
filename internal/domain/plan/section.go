package plan

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// SectionID identifies one of the eight fixed sections of a business plan.
type SectionID string

const (
	SectionExecutiveSummary SectionID = "executive-summary"
	SectionMarketAnalysis   SectionID = "market-analysis"
	SectionConcept          SectionID = "concept"
	SectionCustomerProfile  SectionID = "customer-profile"
	SectionBusinessModel    SectionID = "business-model"
	SectionMarketing        SectionID = "marketing"
	SectionRoadmap          SectionID = "roadmap"
	SectionToolkit          SectionID = "toolkit"
)

var canonicalOrder = []SectionID{
	SectionExecutiveSummary,
	SectionMarketAnalysis,
	SectionConcept,
	SectionCustomerProfile,
	SectionBusinessModel,
	SectionMarketing,
	SectionRoadmap,
	SectionToolkit,
}

// Sections returns all section ids in canonical document order.
func Sections() []SectionID {
	return slices.Clone(canonicalOrder)
}

// IsValid reports whether id is one of the canonical sections.
func (id SectionID) IsValid() bool {
	return slices.Contains(canonicalOrder, id)
}

// Index returns the canonical position of id, or -1.
func (id SectionID) Index() int {
	return slices.Index(canonicalOrder, id)
}

// ParseSectionID validates a raw section identifier.
func ParseSectionID(raw string) (SectionID, error) {
	id := SectionID(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: section id is required", ErrInvalidInput)
	}
	if !id.IsValid() {
		return "", fmt.Errorf("%w: unknown section id: %s", ErrInvalidInput, raw)
	}
	return id, nil
}

// SectionSpec describes how a section is titled, recognized and located.
type SectionSpec struct {
	ID               SectionID   `yaml:"id"`
	Title            string      `yaml:"title"`
	Labels           []string    `yaml:"labels"`
	Keywords         []string    `yaml:"keywords"`
	Relevancy        []string    `yaml:"relevancy"`
	Window           [2]float64  `yaml:"window"`
	Neighbors        []SectionID `yaml:"neighbors,omitempty"`
	FallbackKeywords []string    `yaml:"fallback_keywords,omitempty"`
	Tail             bool        `yaml:"tail,omitempty"`
}

// Catalog is the ordered set of section specs.
type Catalog struct {
	specs []SectionSpec
	byID  map[SectionID]SectionSpec
}

type catalogFile struct {
	Sections []SectionSpec `yaml:"sections"`
}

//go:embed sections.yaml
var rawCatalog []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded section catalog.
// Panics if the embedded file is invalid.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(rawCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded section catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ParseCatalog decodes a YAML catalog and checks it lists every section
// exactly once in canonical order.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if len(file.Sections) != len(canonicalOrder) {
		return nil, fmt.Errorf("%w: catalog has %d sections, want %d", ErrInvalidInput, len(file.Sections), len(canonicalOrder))
	}

	byID := make(map[SectionID]SectionSpec, len(file.Sections))
	for i, s := range file.Sections {
		if s.ID != canonicalOrder[i] {
			return nil, fmt.Errorf("%w: catalog position %d is %q, want %q", ErrInvalidInput, i, s.ID, canonicalOrder[i])
		}
		if s.Title == "" || len(s.Labels) == 0 {
			return nil, fmt.Errorf("%w: section %s needs a title and at least one label", ErrInvalidInput, s.ID)
		}
		if s.Window[0] < 0 || s.Window[1] > 1 || s.Window[0] >= s.Window[1] {
			return nil, fmt.Errorf("%w: section %s has invalid window %v", ErrInvalidInput, s.ID, s.Window)
		}
		for _, n := range s.Neighbors {
			if !n.IsValid() {
				return nil, fmt.Errorf("%w: section %s has unknown neighbor %q", ErrInvalidInput, s.ID, n)
			}
		}
		byID[s.ID] = s
	}

	return &Catalog{specs: file.Sections, byID: byID}, nil
}

// Specs returns the section specs in canonical order.
func (c *Catalog) Specs() []SectionSpec {
	return slices.Clone(c.specs)
}

// Spec returns the spec for id.
func (c *Catalog) Spec(id SectionID) (SectionSpec, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Title returns the canonical heading label for id, or the id itself.
func (c *Catalog) Title(id SectionID) string {
	if s, ok := c.byID[id]; ok {
		return s.Title
	}
	return string(id)
}
