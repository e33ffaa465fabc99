package plan

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

var sectionHeader = regexp.MustCompile(`(?m)^## `)

func TestPlan_Markdown(t *testing.T) {
	t.Run("should emit eight headers in canonical order", func(t *testing.T) {
		p := NewPlan("Kenya")
		for _, id := range Sections() {
			p.Set(id, "## Nested heading\n\nBody for "+string(id))
		}

		doc := p.Markdown(DefaultCatalog())

		if got := len(sectionHeader.FindAllStringIndex(doc, -1)); got != 8 {
			t.Fatalf("expected 8 section headers, got %d", got)
		}
		if !strings.HasPrefix(doc, "# COMPREHENSIVE BUSINESS PLAN FOR KENYA") {
			t.Errorf("unexpected document start: %q", doc[:40])
		}
		if HasQualityBanner(doc) {
			t.Error("expected no banner")
		}

		last := -1
		for _, spec := range DefaultCatalog().Specs() {
			idx := strings.Index(doc, "## "+spec.Title+"\n")
			if idx <= last {
				t.Errorf("section %s out of order", spec.ID)
			}
			last = idx
		}
	})

	t.Run("should prepend banner when flagged", func(t *testing.T) {
		p := NewPlan("Peru")
		p.Banner = true

		doc := p.Markdown(DefaultCatalog())
		if !strings.HasPrefix(doc, QualityBanner) {
			t.Error("expected banner at document start")
		}
		if !HasQualityBanner(doc) {
			t.Error("expected banner detection")
		}
	})
}

func TestDemoteHeadings(t *testing.T) {
	in := "# Title\n## Sub\n### Keep\nplain # text"
	want := "### Title\n### Sub\n### Keep\nplain # text"
	if got := DemoteHeadings(in); got != want {
		t.Errorf("DemoteHeadings() = %q, want %q", got, want)
	}
}

func TestContentHash(t *testing.T) {
	composed := "R\u00e9sum\u00e9"
	decomposed := "Re\u0301sume\u0301"

	if !bytes.Equal(ContentHash(composed), ContentHash(decomposed)) {
		t.Error("expected NFC-equivalent strings to hash equally")
	}
	if !bytes.Equal(ContentHash("a\r\nb"), ContentHash("a\nb")) {
		t.Error("expected line endings to be normalized")
	}
	if len(ContentHash("x")) != 32 {
		t.Error("expected 32-byte hash")
	}
}
