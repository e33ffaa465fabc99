package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const competitorSection = `### Market Study

The retail technology market is growing quickly.

[CARTE CONCURRENT 1]
Nom: RetailPro
Part de marché: 18%
Forces: brand, sales team, integrations
Faiblesses: price, complex setup
Stratégie de prix: annual licence
Élément différenciateur: enterprise reporting

| Player | Focus | Price |
|---|---|---|
| RetailPro | Chains | High |
| Us | Small shops | Low |

- Entry barrier one
- Entry barrier two`

func TestFormat(t *testing.T) {
	t.Run("should build tables and drop rows with a different cell count", func(t *testing.T) {
		in := "Intro paragraph.\n\n| Name | Price | Share |\n|---|---|---|\n| Basic | 10 | 60% |\n| Broken | 5 |\n| Pro | 20 | 40% |"

		out := Format(in)

		assert.Contains(t, out, `<p class="my-3">Intro paragraph.</p>`)
		assert.Equal(t, 1, strings.Count(out, "<table "))
		assert.Equal(t, 3, strings.Count(out, "<th "))
		assert.Equal(t, 2, strings.Count(out, `<tr class="hover:bg-gray-50">`))
		assert.Equal(t, 6, strings.Count(out, "<td "))
		assert.Equal(t, 2, strings.Count(out, `<td class="px-4 py-3 text-sm font-medium text-gray-900">`))
		assert.NotContains(t, out, "Broken")
	})

	t.Run("should strip document titles and style subheadings", func(t *testing.T) {
		in := "# Plan Title\n## 2. Market Analysis\n### Market Study\nText here\n## Overview\nMore"

		out := Format(in)

		assert.NotContains(t, out, "Plan Title")
		assert.NotContains(t, out, "2. Market Analysis")
		assert.Contains(t, out, `<h3 class="`+headingH3Class+`">Market Study</h3>`)
		assert.Contains(t, out, `<h3 class="`+headingH2Class+`">Overview</h3>`)
		assert.Contains(t, out, `<p class="my-3">Text here</p>`)
	})

	t.Run("should render persona cards with list fields", func(t *testing.T) {
		in := "[CARTE PERSONA 1]\nNom: Amina\nÂge: 30-40\nProfession: Grocery owner\nRevenus: Middle income\n" +
			"Frustrations principales: cash handling, stock-outs, supplier delays\n" +
			"Motivations d'achat: save time, grow sales\nBudget: Low\n\nAfter the card."

		out := Format(in)

		assert.NotContains(t, out, "[CARTE")
		assert.Contains(t, out, `<h4 class="text-2xl font-bold">Amina</h4>`)
		assert.Contains(t, out, "30-40 • Grocery owner")
		assert.Equal(t, 5, strings.Count(out, `<span class="text-sm">`))
		assert.Contains(t, out, `<p class="my-3">After the card.</p>`)
	})

	t.Run("should render competitor cards", func(t *testing.T) {
		out := Format(competitorSection)

		assert.NotContains(t, out, "[CARTE")
		assert.Contains(t, out, `<h4 class="text-3xl font-bold mb-3">RetailPro</h4>`)
		assert.Contains(t, out, "Part de marché: 18%")
		assert.Equal(t, 5, strings.Count(out, `<span class="text-sm">`))
		assert.Contains(t, out, `<ul class="list-disc pl-5 my-4 space-y-2">`)
	})

	t.Run("should leave markers without a name field untouched", func(t *testing.T) {
		out := Format("[CARTE PERSONA 1]\nAge only")

		assert.Contains(t, out, "[CARTE PERSONA 1]")
	})

	t.Run("should inject classes on generic markdown", func(t *testing.T) {
		out := Format("- a\n- b\n\n1. one\n\n---\n\nText")

		assert.Contains(t, out, `<ul class="list-disc pl-5 my-4 space-y-2">`)
		assert.Contains(t, out, `<li class="ml-2">a</li>`)
		assert.Contains(t, out, `<ol class="list-decimal pl-5 my-4 space-y-2">`)
		assert.Contains(t, out, `<hr class="my-6 border-t border-gray-200">`)
		assert.NotContains(t, out, "<div></div>")
	})

	t.Run("should be idempotent on its own output", func(t *testing.T) {
		once := Format(competitorSection)
		twice := Format(once)

		require.NotEmpty(t, once)
		assert.Equal(t, once, twice)
	})

	t.Run("should keep blank lines inside fenced code", func(t *testing.T) {
		in := "```\ncode\n\nmore\n```"

		once := Format(in)

		assert.Contains(t, once, "<pre><code>code\n\nmore")
		assert.NotContains(t, once, "&lt;div&gt;")
		assert.NotContains(t, once, "<div></div>")
		assert.Equal(t, once, Format(once))
	})

	t.Run("should keep an unclosed fence verbatim", func(t *testing.T) {
		out := Format("Intro.\n\n```\nfirst\n\nsecond")

		assert.Contains(t, out, `<p class="my-3">Intro.</p>`)
		assert.NotContains(t, out, "&lt;div&gt;")
	})

	t.Run("should render bold and bulleted card fields", func(t *testing.T) {
		competitor := Format("[CARTE CONCURRENT 1]\n**Nom:** RetailPro\n- **Forces:** brand, price\n\nAfter.")
		persona := Format("[CARTE PERSONA 2]\n- Nom: Amina\n- Âge: 30-40")

		assert.NotContains(t, competitor, "[CARTE")
		assert.Contains(t, competitor, `<h4 class="text-3xl font-bold mb-3">RetailPro</h4>`)
		assert.NotContains(t, persona, "[CARTE")
		assert.Contains(t, persona, `<h4 class="text-2xl font-bold">Amina</h4>`)
	})

	t.Run("should neutralize script-capable html", func(t *testing.T) {
		out := Format("Hello <script>alert(1)</script> world.\n\n<img src=x onerror=alert(1)>\n\n[click](javascript:alert(1))")

		assert.NotContains(t, out, "<script")
		assert.Contains(t, out, "&lt;script&gt;")
		assert.NotContains(t, out, "<img")
		assert.NotContains(t, out, "javascript:")
		assert.Contains(t, out, `<a href="#">click</a>`)
	})

	t.Run("should keep harmless inline html", func(t *testing.T) {
		out := Format("Some <strong>bold</strong> text.")

		assert.Contains(t, out, "<strong>bold</strong>")
	})

	t.Run("should never panic", func(t *testing.T) {
		inputs := []string{"", "|", "|||\n|-|\n||", "[CARTE PERSONA]", "[CARTE CONCURRENT x]\nNom:", "###", "## ", "\n\n\n"}
		for _, in := range inputs {
			assert.NotPanics(t, func() { Format(in) }, "input %q", in)
		}
	})
}
