package mock

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/specvital/planner/internal/domain/plan"
)

const defaultCountry = "your market"

var (
	contextCountry = regexp.MustCompile(`Country: ([^\n(]+)`)
	inlineCountry  = regexp.MustCompile(`industry in ([^\n]+?) with`)
)

var _ plan.Generator = (*Provider)(nil)

// Provider implements plan.Generator with deterministic mock documents.
// Intended for local development, demo mode and testing without AI API calls.
type Provider struct {
	catalog *plan.Catalog
}

// NewProvider creates a new mock generator.
func NewProvider() *Provider {
	return &Provider{catalog: plan.DefaultCatalog()}
}

// Generate returns a canned document for the prompt kind.
func (p *Provider) Generate(ctx context.Context, prompt plan.Prompt) (string, *plan.TokenUsage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	country := countryFrom(prompt.User)
	usage := &plan.TokenUsage{Model: "mock-model"}

	switch prompt.Kind {
	case plan.PromptKindIdea:
		return ideaDocument(country), usage, nil
	case plan.PromptKindSection:
		return sectionBody(prompt.Section, country), usage, nil
	case plan.PromptKindCompletePlan:
		return p.completePlan(country), usage, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported prompt kind %q", plan.ErrInvalidInput, prompt.Kind)
	}
}

// Close releases resources (no-op for mock).
func (p *Provider) Close() error {
	return nil
}

func countryFrom(prompt string) string {
	for _, re := range []*regexp.Regexp{contextCountry, inlineCountry} {
		if m := re.FindStringSubmatch(prompt); m != nil {
			if c := strings.TrimSpace(m[1]); c != "" {
				return c
			}
		}
	}
	return defaultCountry
}

func ideaDocument(country string) string {
	return strings.Join([]string{
		"## Pain Point Identified",
		"",
		fmt.Sprintf("Small merchants in %s lose sales because they cannot accept digital payments or track stock reliably.", country),
		"",
		"## Target Audience",
		"",
		fmt.Sprintf("Independent shop owners aged 25-55 in the main cities of %s.", country),
		"",
		"## Concept Summary",
		"",
		"A mobile point-of-sale app that combines payments, inventory and supplier reordering.",
		"",
		"## Unique Value Proposition",
		"",
		"One affordable app that replaces three tools and works offline.",
		"",
		"## Revenue Model & Distribution",
		"",
		"Monthly subscription plus a small fee per transaction, sold through merchant associations.",
	}, "\n")
}

func (p *Provider) completePlan(country string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Business Plan for %s\n\n", country)
	for _, spec := range p.catalog.Specs() {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", spec.Title, sectionBody(spec.ID, country))
	}
	return strings.TrimSpace(sb.String())
}

func sectionBody(id plan.SectionID, country string) string {
	var sb strings.Builder

	switch id {
	case plan.SectionExecutiveSummary:
		fmt.Fprintf(&sb, "### Overview\n\nThis business brings an all-in-one mobile point-of-sale to merchants in %s. ", country)
		sb.WriteString("The mission is to help small shops grow with simple digital tools, and the vision is a connected retail network.\n\n")
		sb.WriteString("### Objectives\n\n- Onboard 500 merchants within 3 months\n- Reach break-even within 12 months")
	case plan.SectionMarketAnalysis:
		fmt.Fprintf(&sb, "### Market Study\n\nThe retail technology market in %s is growing quickly as mobile adoption rises. ", country)
		sb.WriteString("Competitors focus on large chains and leave small merchants underserved.\n\n")
		sb.WriteString("[CARTE CONCURRENT 1]\nNom: RetailPro\nPart de marché: 18%\nForces: brand, sales team, integrations\n")
		sb.WriteString("Faiblesses: price, complex setup\nStratégie de prix: annual licence\n")
		sb.WriteString("Canaux de distribution: direct sales\nÉlément différenciateur: enterprise reporting")
	case plan.SectionConcept:
		fmt.Fprintf(&sb, "### How It Works\n\nMerchants in %s install the app, scan products and accept payments from day one. ", country)
		sb.WriteString("The product keeps working offline and syncs when the connection returns.\n\n")
		sb.WriteString("### Value Proposition\n\nOne affordable service replaces a card terminal, a stock book and a supplier phone list.")
	case plan.SectionCustomerProfile:
		fmt.Fprintf(&sb, "### Target Customers\n\nOur customer is the independent shop owner in %s who manages everything alone.\n\n", country)
		sb.WriteString("[CARTE PERSONA 1]\nNom: Amina\nÂge: 30-40\nProfession: Grocery owner\nRevenus: Middle income\n")
		sb.WriteString("Localisation: Capital city\nComportements en ligne: Uses messaging apps daily\n")
		sb.WriteString("Frustrations principales: cash handling, stock-outs, supplier delays\n")
		sb.WriteString("Motivations d'achat: save time, grow sales\nCanaux préférés: WhatsApp, radio\n")
		sb.WriteString("Processus de décision: peer advice then trial\nBudget: Low")
	case plan.SectionBusinessModel:
		fmt.Fprintf(&sb, "### Revenue Model\n\nRevenue comes from subscriptions and transaction fees, priced for merchants in %s.\n\n", country)
		sb.WriteString("| Revenue Stream | Price | Share |\n|---|---|---|\n| Subscription | 10 per month | 60% |\n| Transaction fee | 1% | 40% |\n\n")
		sb.WriteString("### Cost Structure\n\nThe main cost items are development, support staff and customer acquisition.")
	case plan.SectionMarketing:
		fmt.Fprintf(&sb, "### Acquisition Channels\n\nMarketing in %s focuses on merchant associations, field promotion and social media channels. ", country)
		sb.WriteString("Advertising budgets stay small and acquisition is measured weekly.\n\n")
		sb.WriteString("- Referral programme for existing merchants\n- Radio spots in local languages")
	case plan.SectionRoadmap:
		fmt.Fprintf(&sb, "### 0-3 Months\n\nRegister the company in %s, recruit the first team and launch a pilot with 50 merchants.\n\n", country)
		sb.WriteString("### 4-6 Months\n\nExpand to three cities and reach the first milestone of 500 merchants.\n\n")
		sb.WriteString("### 7-12 Months\n\nOptimise operations and prepare the implementation of supplier integrations.")
	case plan.SectionToolkit:
		fmt.Fprintf(&sb, "### Essential Tools\n\nThese software tools and resources are available in %s.\n\n", country)
		sb.WriteString("| Function | Recommended Tool | Cost |\n|---|---|---|\n| CRM | HubSpot Free | 0 |\n| Accounting | Wave | 0 |\n| Payments | Local mobile money API | 1% |\n\n")
		sb.WriteString("### Resources\n\nJoin the national chamber of commerce and local technology hubs.")
	default:
		fmt.Fprintf(&sb, "Generated content for %s in %s.", id, country)
	}

	return sb.String()
}
