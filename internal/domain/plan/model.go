package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Budget is a budget bracket or a raw numeric amount.
type Budget string

const (
	BudgetLow      Budget = "low"
	BudgetMedium   Budget = "medium"
	BudgetHigh     Budget = "high"
	BudgetVeryHigh Budget = "very_high"
)

// UnmarshalJSON accepts a bracket name or amount as a JSON string, or an
// amount as a JSON number.
func (b *Budget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Budget(s)
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("budget must be a string or a number, got %s", data)
	}
	*b = Budget(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Describe returns the human-readable budget range used in prompts.
func (b Budget) Describe() string {
	switch b {
	case BudgetLow:
		return "less than $10,000"
	case BudgetMedium:
		return "between $10,000 and $50,000"
	case BudgetHigh:
		return "between $50,000 and $200,000"
	case BudgetVeryHigh:
		return "more than $200,000"
	default:
		return string(b)
	}
}

// IsValid reports whether b is a known bracket or a non-negative number.
func (b Budget) IsValid() bool {
	switch b {
	case BudgetLow, BudgetMedium, BudgetHigh, BudgetVeryHigh:
		return true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	return err == nil && n >= 0
}

// GenerationRequest is one user submission.
type GenerationRequest struct {
	Budget   Budget
	Country  string
	Criteria []string
	Industry string
}

func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Industry) == "" {
		return fmt.Errorf("%w: industry is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrInvalidInput)
	}
	if r.Budget == "" {
		return fmt.Errorf("%w: budget is required", ErrInvalidInput)
	}
	if !r.Budget.IsValid() {
		return fmt.Errorf("%w: unsupported budget: %s", ErrInvalidInput, r.Budget)
	}
	return nil
}

// DisplayCountry returns the country in title case, e.g. "south africa" -> "South Africa".
func (r GenerationRequest) DisplayCountry() string {
	return cases.Title(language.Und).String(strings.TrimSpace(r.Country))
}

// DisplayIndustry returns the industry lower-cased with underscores as spaces.
func (r GenerationRequest) DisplayIndustry() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Industry)), "_", " ")
}

// KeyInformation holds the facts pulled out of a generated idea.
type KeyInformation struct {
	Concept          string
	OriginalText     string
	Problem          string
	TargetMarket     string
	ValueProposition string
}

// SectionContent is the raw text generated for one section.
type SectionContent struct {
	GeneratedAt time.Time
	ID          SectionID
	RawText     string
}

// SectionStatus tags the outcome of generating one section.
type SectionStatus string

const (
	SectionStatusSuccess  SectionStatus = "success"
	SectionStatusDegraded SectionStatus = "degraded"
	SectionStatusFailed   SectionStatus = "failed"
)

// SectionResult is the outcome of generating a section with retries.
// Degraded carries deterministic fallback text; Failed carries none.
type SectionResult struct {
	Attempts int
	ID       SectionID
	Reason   string
	Status   SectionStatus
	Text     string
}

func Succeeded(id SectionID, text string, attempts int) SectionResult {
	return SectionResult{ID: id, Status: SectionStatusSuccess, Text: text, Attempts: attempts}
}

func Degraded(id SectionID, fallback, reason string, attempts int) SectionResult {
	return SectionResult{ID: id, Status: SectionStatusDegraded, Text: fallback, Reason: reason, Attempts: attempts}
}

func Failed(id SectionID, reason string, attempts int) SectionResult {
	return SectionResult{ID: id, Status: SectionStatusFailed, Reason: reason, Attempts: attempts}
}

// ExtractedSection is a section's text as located within a combined document.
// Method names the extraction strategy that produced it.
type ExtractedSection struct {
	ID     SectionID `json:"id"`
	Method string    `json:"method"`
	Text   string    `json:"text"`
}

// RecordStatus tracks a stored plan through asynchronous assembly.
type RecordStatus string

const (
	RecordStatusPending RecordStatus = "pending"
	RecordStatusReady   RecordStatus = "ready"
	RecordStatusFailed  RecordStatus = "failed"
)

// PlanRecord is the persisted plan blob.
type PlanRecord struct {
	Budget       Budget       `json:"budget,omitempty"`
	BusinessIdea string       `json:"businessIdea,omitempty"`
	Country      string       `json:"country,omitempty"`
	FullContent  string       `json:"fullContent"`
	GeneratedAt  time.Time    `json:"generatedAt"`
	ID           string       `json:"id"`
	Industry     string       `json:"industry,omitempty"`
	IsDemo       bool         `json:"isDemo,omitempty"`
	IsExample    bool         `json:"isExample,omitempty"`
	Name         string       `json:"name,omitempty"`
	Status       RecordStatus `json:"status,omitempty"`
}

// Request rebuilds the generation request the record was created from.
func (r PlanRecord) Request() GenerationRequest {
	return GenerationRequest{
		Budget:   r.Budget,
		Country:  r.Country,
		Industry: r.Industry,
	}
}

// TokenUsage reports the tokens consumed by one generation call.
type TokenUsage struct {
	CandidatesTokens int32
	Model            string
	PromptTokens     int32
	TotalTokens      int32
}
