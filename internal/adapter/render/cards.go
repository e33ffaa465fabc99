package render

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var cardMarker = regexp.MustCompile(`(?i)\[CARTE (PERSONA|CONCURRENT)\b[^\]\n]*\]`)

// Card field labels as they appear in generated text.
const (
	fieldName           = "Nom"
	fieldAge            = "Âge"
	fieldProfession     = "Profession"
	fieldIncome         = "Revenus"
	fieldLocation       = "Localisation"
	fieldOnline         = "Comportements en ligne"
	fieldFrustrations   = "Frustrations principales"
	fieldMotivations    = "Motivations d'achat"
	fieldChannels       = "Canaux préférés"
	fieldDecision       = "Processus de décision"
	fieldBudget         = "Budget"
	fieldMarketShare    = "Part de marché"
	fieldStrengths      = "Forces"
	fieldWeaknesses     = "Faiblesses"
	fieldPricing        = "Stratégie de prix"
	fieldDifferentiator = "Élément différenciateur"
	fieldDistribution   = "Canaux de distribution"
)

var fieldPatterns = compileFields(
	fieldName, fieldAge, fieldProfession, fieldIncome, fieldLocation, fieldOnline,
	fieldFrustrations, fieldMotivations, fieldChannels, fieldDecision, fieldBudget,
	fieldMarketShare, fieldStrengths, fieldWeaknesses, fieldPricing, fieldDifferentiator,
	fieldDistribution,
)

// cardStart matches a card body whose first field is the name, with the
// same bullet and bold decorations the field patterns allow.
var cardStart = regexp.MustCompile(`^` + fieldLabel(fieldName))

// fieldLabel matches a label with optional bullets and bold markers, up to
// and including its colon.
func fieldLabel(label string) string {
	return `[ \t*-]*(?:\*\*)?` + regexp.QuoteMeta(label) + `(?:\*\*)?[ \t]*:`
}

func compileFields(labels ...string) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(labels))
	for _, l := range labels {
		m[l] = regexp.MustCompile(`(?m)^` + fieldLabel(l) + `(?:\*\*)?[ \t]*([^\n]+)`)
	}
	return m
}

type cardFields string

func (c cardFields) get(label string) string {
	m := fieldPatterns[label].FindStringSubmatch(string(c))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (c cardFields) list(label string) []string {
	var items []string
	for _, item := range strings.Split(c.get(label), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// formatCards replaces persona and competitor card blocks with card HTML.
// A card runs from its marker to the next marker or blank line and must
// start with a "Nom:" field, optionally bulleted or bold.
func formatCards(content string, held *fragments) (string, int) {
	locs := cardMarker.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content, 0
	}

	var sb strings.Builder
	prev, cards := 0, 0
	for i, loc := range locs {
		if loc[0] < prev {
			continue
		}
		sb.WriteString(content[prev:loc[0]])

		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := content[loc[1]:end]
		trimmed := strings.TrimLeft(body, " \t\n")
		if !cardStart.MatchString(trimmed) {
			sb.WriteString(content[loc[0]:loc[1]])
			prev = loc[1]
			continue
		}

		stop := len(trimmed)
		if k := strings.Index(trimmed, "\n\n"); k >= 0 {
			stop = k
		}
		details := cardFields(trimmed[:stop])

		if strings.EqualFold(content[loc[2]:loc[3]], "PERSONA") {
			sb.WriteString(held.hold(personaCard(details)))
		} else {
			sb.WriteString(held.hold(competitorCard(details)))
		}
		cards++
		prev = loc[1] + (len(body) - len(trimmed)) + stop
	}
	sb.WriteString(content[prev:])

	return sb.String(), cards
}

func personaCard(f cardFields) string {
	name := orDefault(f.get(fieldName), "Persona")
	subtitle := f.get(fieldAge)
	if p := f.get(fieldProfession); p != "" {
		if subtitle != "" {
			subtitle += " • "
		}
		subtitle += p
	}

	var sb strings.Builder
	sb.WriteString(`<div class="bg-white rounded-xl shadow-md p-6 border border-gray-100 mb-6">`)
	sb.WriteString(`<div class="flex items-start"><div class="flex-shrink-0 mr-4">`)
	sb.WriteString(`<div class="h-16 w-16 rounded-full bg-primary/10 flex items-center justify-center text-primary">`)
	sb.WriteString(escape(initial(name)))
	sb.WriteString(`</div></div><div><h4 class="text-2xl font-bold">`)
	sb.WriteString(escape(name))
	sb.WriteString(`</h4><div class="text-sm text-gray-500">`)
	sb.WriteString(escape(subtitle))
	sb.WriteString(`</div></div></div>`)

	sb.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-6 mt-6">`)
	writeDetailList(&sb, "Profil", [][2]string{
		{"💰 Revenus", f.get(fieldIncome)},
		{"📍 Localisation", f.get(fieldLocation)},
		{"💻 Comportement en ligne", f.get(fieldOnline)},
	})
	writeDetailList(&sb, "Comportement d'achat", [][2]string{
		{"💸 Budget", f.get(fieldBudget)},
		{"📱 Canaux préférés", f.get(fieldChannels)},
		{"🔄 Processus de décision", f.get(fieldDecision)},
	})
	sb.WriteString(`</div>`)

	frustrations, motivations := f.list(fieldFrustrations), f.list(fieldMotivations)
	if len(frustrations) > 0 || len(motivations) > 0 {
		sb.WriteString(`<div class="mt-6"><div class="grid grid-cols-1 md:grid-cols-2 gap-6">`)
		writeBulletList(&sb, "Frustrations", "text-red-500", frustrations)
		writeBulletList(&sb, "Motivations", "text-green-500", motivations)
		sb.WriteString(`</div></div>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

func competitorCard(f cardFields) string {
	var sb strings.Builder
	sb.WriteString(`<div class="bg-white rounded-xl shadow-md p-6 border border-gray-100 flex flex-col mb-6">`)
	if share := f.get(fieldMarketShare); share != "" {
		sb.WriteString(`<div class="mb-1 text-sm text-gray-500">Part de marché: ` + escape(share) + `</div>`)
	} else {
		sb.WriteString(`<div class="mb-1 text-sm text-gray-500">Concurrent</div>`)
	}
	sb.WriteString(`<h4 class="text-3xl font-bold mb-3">` + escape(orDefault(f.get(fieldName), "Concurrent")) + `</h4>`)
	sb.WriteString(`<div class="border-t border-gray-100 my-3 w-full"></div>`)

	sb.WriteString(`<div class="space-y-4 flex-grow">`)
	for _, d := range [][2]string{
		{"Positionnement prix", f.get(fieldPricing)},
		{"Proposition de valeur", f.get(fieldDifferentiator)},
		{"Canaux de distribution", f.get(fieldDistribution)},
	} {
		if d[1] == "" {
			continue
		}
		sb.WriteString(`<div class="flex items-start"><div><span class="text-sm font-medium">` + escape(d[0]) + `</span>`)
		sb.WriteString(`<span class="block text-sm text-gray-500">` + escape(d[1]) + `</span></div></div>`)
	}
	sb.WriteString(`</div>`)

	strengths, weaknesses := f.list(fieldStrengths), f.list(fieldWeaknesses)
	if len(strengths) > 0 || len(weaknesses) > 0 {
		sb.WriteString(`<div class="border-t border-gray-100 my-3 w-full"></div>`)
	}
	writeBulletList(&sb, "Forces", "text-green-500", strengths)
	writeBulletList(&sb, "Faiblesses", "text-red-500", weaknesses)

	sb.WriteString(`</div>`)
	return sb.String()
}

func writeDetailList(sb *strings.Builder, title string, rows [][2]string) {
	sb.WriteString(`<div><h5 class="font-medium text-lg mb-3 text-primary">` + escape(title) + `</h5><ul class="space-y-2">`)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		sb.WriteString(`<li class="flex items-start"><span class="font-medium mr-2">` + escape(r[0]) + `:</span> ` + escape(r[1]) + `</li>`)
	}
	sb.WriteString(`</ul></div>`)
}

func writeBulletList(sb *strings.Builder, title, color string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(`<div class="mt-3"><h5 class="font-medium text-lg mb-3 ` + color + `">` + escape(title) + `</h5><ul class="space-y-2">`)
	for _, item := range items {
		sb.WriteString(`<li class="flex items-start"><span class="h-2 w-2 rounded-full mt-2 mr-2 flex-shrink-0 bg-current ` + color + `"></span>`)
		sb.WriteString(`<span class="text-sm">` + escape(item) + `</span></li>`)
	}
	sb.WriteString(`</ul></div>`)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func escape(s string) string {
	return html.EscapeString(s)
}
