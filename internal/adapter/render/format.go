// Package render turns generated section markdown into the HTML shown in the
// plan viewer.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/unicode/norm"
)

const (
	headingH3Class = "text-xl font-semibold my-3 bg-clip-text text-transparent bg-gradient-to-r from-secondary-light to-secondary leading-tight"
	headingH2Class = "text-lg font-semibold my-2 bg-clip-text text-transparent bg-gradient-to-r from-secondary-light to-secondary leading-tight"

	paragraphMarker = "<div></div>"
	tokenFormat     = "XFMTBLOCK%dX"
)

var (
	documentHeading = regexp.MustCompile(`(?m)^# [^\n]+$`)
	numberedHeading = regexp.MustCompile(`(?m)^## \d+\. [^\n]+$`)
	subHeading3     = regexp.MustCompile(`(?m)^### ([^\n]+)$`)
	subHeading2     = regexp.MustCompile(`(?m)^## ([^\n]+)$`)
	pipeTable       = regexp.MustCompile(`(?m)^\|([^\n]+)\|[ \t]*\n\|[-:| \t]+\|[ \t]*\n((?:\|[^\n]*\|[ \t]*(?:\n|$))+)`)

	// Fenced code and <pre> blocks keep their blank lines; an unclosed
	// fence runs to the end of the section.
	verbatimBlock = regexp.MustCompile("(?ms)^```.*?(?:^```[ \\t]*$|\\z)|^~~~.*?(?:^~~~[ \\t]*$|\\z)|<pre[\\s>].*?(?:</pre>|\\z)")

	// Raw HTML in generated text that could run script in the viewer.
	unsafeTag     = regexp.MustCompile(`(?i)</?(?:script|style|iframe|frame|object|embed|form|link|meta|base)\b[^>]*>`)
	handlerTag    = regexp.MustCompile(`(?i)<[a-z][^>]*\son[a-z]+\s*=[^>]*>`)
	scriptLinkURL = regexp.MustCompile(`(?i)\]\(\s*(?:javascript|vbscript|data):[^)]*\)`)
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Classes injected on tags the markdown converter emits bare.
var classInjector = strings.NewReplacer(
	"<ul>", `<ul class="list-disc pl-5 my-4 space-y-2">`,
	"<ol>", `<ol class="list-decimal pl-5 my-4 space-y-2">`,
	"<li>", `<li class="ml-2">`,
	"<table>", `<table class="min-w-full bg-white border border-gray-200 rounded-lg shadow-sm my-4">`,
	"<thead>", `<thead class="bg-gray-50">`,
	"<th>", `<th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">`,
	"<tbody>", `<tbody class="divide-y divide-gray-200">`,
	"<tr>", `<tr class="hover:bg-gray-50">`,
	"<td>", `<td class="px-4 py-3 text-sm text-gray-500">`,
	"<p>", `<p class="my-3">`,
	"<hr>", `<hr class="my-6 border-t border-gray-200">`,
)

// fragments holds pre-rendered HTML kept away from the markdown converter.
type fragments struct {
	html []string
}

// hold returns a placeholder token for html isolated in its own block.
func (f *fragments) hold(html string) string {
	token := fmt.Sprintf(tokenFormat, len(f.html))
	f.html = append(f.html, html)
	return "\n\n" + token + "\n\n"
}

func (f *fragments) restore(content string) string {
	for i := len(f.html) - 1; i >= 0; i-- {
		token := fmt.Sprintf(tokenFormat, i)
		content = strings.ReplaceAll(content, "<p>"+token+"</p>", f.html[i])
		content = strings.ReplaceAll(content, `<p class="my-3">`+token+"</p>", f.html[i])
		content = strings.ReplaceAll(content, token, f.html[i])
	}
	return content
}

// Format converts one section's markdown to styled HTML. It never panics:
// on an internal failure the content produced so far is returned.
func Format(section string) (content string) {
	content = norm.NFC.String(strings.ReplaceAll(section, "\r\n", "\n"))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("section formatting failed", "error", fmt.Sprint(r))
		}
	}()

	content = neutralizeHTML(content)
	held := &fragments{}

	content = numberedHeading.ReplaceAllString(content, "")
	content = documentHeading.ReplaceAllString(content, "")

	content = subHeading3.ReplaceAllStringFunc(content, func(m string) string {
		title := subHeading3.FindStringSubmatch(m)[1]
		return held.hold(heading(headingH3Class, title))
	})
	content = subHeading2.ReplaceAllStringFunc(content, func(m string) string {
		title := subHeading2.FindStringSubmatch(m)[1]
		return held.hold(heading(headingH2Class, title))
	})

	tables := 0
	content = pipeTable.ReplaceAllStringFunc(content+"\n", func(m string) string {
		tables++
		return held.hold(buildTable(pipeTable.FindStringSubmatch(m)))
	})

	var cards int
	content, cards = formatCards(content, held)

	content = markParagraphs(content)

	slog.Debug("section formatting",
		"tables", tables,
		"cards", cards,
		"fragments", len(held.html),
	)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return held.restore(content)
	}
	content = classInjector.Replace(buf.String())
	content = held.restore(content)

	content = strings.ReplaceAll(content, paragraphMarker+"\n", "")
	content = strings.ReplaceAll(content, paragraphMarker, "")

	return strings.TrimSpace(content)
}

// markParagraphs separates blank-line paragraphs with a marker the
// converter cannot merge across, leaving verbatim blocks untouched.
func markParagraphs(content string) string {
	mark := func(s string) string {
		return strings.ReplaceAll(s, "\n\n", "\n\n"+paragraphMarker+"\n\n")
	}

	var sb strings.Builder
	prev := 0
	for _, loc := range verbatimBlock.FindAllStringIndex(content, -1) {
		sb.WriteString(mark(content[prev:loc[0]]))
		sb.WriteString(content[loc[0]:loc[1]])
		prev = loc[1]
	}
	sb.WriteString(mark(content[prev:]))
	return sb.String()
}

// neutralizeHTML escapes script-capable tags and drops script URLs from
// links. Other raw HTML is passed through to the page.
func neutralizeHTML(content string) string {
	content = unsafeTag.ReplaceAllStringFunc(content, escape)
	content = handlerTag.ReplaceAllStringFunc(content, escape)
	return scriptLinkURL.ReplaceAllString(content, "](#)")
}

func heading(class, title string) string {
	return `<h3 class="` + class + `">` + inline(strings.TrimSpace(title)) + `</h3>`
}

// buildTable renders a matched pipe table. Body rows whose cell count differs
// from the header are dropped.
func buildTable(m []string) string {
	header := splitCells(m[1])

	var sb strings.Builder
	sb.WriteString(`<div class="overflow-x-auto my-6"><table class="min-w-full bg-white border border-gray-200 rounded-lg shadow-sm">`)
	sb.WriteString(`<thead class="bg-gray-50"><tr class="text-left">`)
	for _, cell := range header {
		sb.WriteString(`<th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">`)
		sb.WriteString(inline(cell))
		sb.WriteString(`</th>`)
	}
	sb.WriteString(`</tr></thead><tbody class="divide-y divide-gray-200">`)

	for _, row := range strings.Split(strings.TrimSpace(m[2]), "\n") {
		cells := splitCells(row)
		if len(cells) != len(header) {
			continue
		}
		sb.WriteString(`<tr class="hover:bg-gray-50">`)
		for i, cell := range cells {
			if i == 0 {
				sb.WriteString(`<td class="px-4 py-3 text-sm font-medium text-gray-900">`)
			} else {
				sb.WriteString(`<td class="px-4 py-3 text-sm text-gray-500">`)
			}
			sb.WriteString(inline(cell))
			sb.WriteString(`</td>`)
		}
		sb.WriteString(`</tr>`)
	}

	sb.WriteString(`</tbody></table></div>`)
	return sb.String()
}

func splitCells(row string) []string {
	var cells []string
	for _, c := range strings.Split(row, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// inline renders a short piece of inline markdown without a paragraph wrapper.
func inline(s string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return escape(s)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") {
		return escape(s)
	}
	return strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
}
