package plan

import (
	"strings"
)

const (
	// QualityBanner is prepended to a combined document when any section fell back.
	QualityBanner = "QUALITY ISSUE DETECTED: Some sections of this plan may be incomplete due to generation errors. You may want to regenerate the plan."

	qualityMarker = "QUALITY ISSUE DETECTED"
)

// Plan is an ordered mapping of section id to section body.
type Plan struct {
	Banner   bool
	Country  string
	sections map[SectionID]string
}

func NewPlan(country string) *Plan {
	return &Plan{
		Country:  country,
		sections: make(map[SectionID]string, len(canonicalOrder)),
	}
}

// Set stores the body for id.
func (p *Plan) Set(id SectionID, body string) {
	p.sections[id] = body
}

// Section returns the body for id.
func (p *Plan) Section(id SectionID) string {
	return p.sections[id]
}

// Markdown serializes the plan into the combined document layout: optional
// banner, document title, then one "## Title" block per section in canonical
// order. Top-level headings inside bodies are demoted to "###" so the
// section headers stay the only "##" lines.
func (p *Plan) Markdown(catalog *Catalog) string {
	var sb strings.Builder

	if p.Banner {
		sb.WriteString(QualityBanner)
		sb.WriteString("\n\n")
	}

	sb.WriteString("# COMPREHENSIVE BUSINESS PLAN FOR ")
	sb.WriteString(strings.ToUpper(p.Country))
	sb.WriteString("\n\n")

	for _, id := range canonicalOrder {
		sb.WriteString("## ")
		sb.WriteString(catalog.Title(id))
		sb.WriteString("\n\n")
		sb.WriteString(DemoteHeadings(strings.TrimSpace(p.sections[id])))
		sb.WriteString("\n\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// DemoteHeadings rewrites "#" and "##" heading lines as "###".
func DemoteHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level == 1 || level == 2 {
			lines[i] = "### " + strings.TrimSpace(trimmed[level:])
		}
	}
	return strings.Join(lines, "\n")
}

// HasQualityBanner reports whether doc carries a quality warning.
func HasQualityBanner(doc string) bool {
	return strings.Contains(doc, qualityMarker)
}
