package plan

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerationRequest
		wantErr bool
	}{
		{name: "valid bracket", req: GenerationRequest{Industry: "technology", Country: "Kenya", Budget: BudgetMedium}},
		{name: "valid numeric budget", req: GenerationRequest{Industry: "food", Country: "Peru", Budget: "5000"}},
		{name: "missing industry", req: GenerationRequest{Country: "Kenya", Budget: BudgetLow}, wantErr: true},
		{name: "missing country", req: GenerationRequest{Industry: "food", Budget: BudgetLow}, wantErr: true},
		{name: "missing budget", req: GenerationRequest{Industry: "food", Country: "Kenya"}, wantErr: true},
		{name: "unknown budget", req: GenerationRequest{Industry: "food", Country: "Kenya", Budget: "huge"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBudget_Describe(t *testing.T) {
	tests := []struct {
		budget Budget
		want   string
	}{
		{BudgetLow, "less than $10,000"},
		{BudgetMedium, "between $10,000 and $50,000"},
		{BudgetHigh, "between $50,000 and $200,000"},
		{BudgetVeryHigh, "more than $200,000"},
		{"7500", "7500"},
	}

	for _, tt := range tests {
		if got := tt.budget.Describe(); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.budget, got, tt.want)
		}
	}
}

func TestGenerationRequest_Display(t *testing.T) {
	req := GenerationRequest{Industry: "FOOD_SERVICE", Country: "south africa"}

	if got := req.DisplayCountry(); got != "South Africa" {
		t.Errorf("DisplayCountry() = %q", got)
	}
	if got := req.DisplayIndustry(); got != "food service" {
		t.Errorf("DisplayIndustry() = %q", got)
	}
}

func TestBudget_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Budget
		wantErr bool
	}{
		{name: "should keep a bracket string", input: `{"budget":"very_high"}`, want: BudgetVeryHigh},
		{name: "should keep a numeric string", input: `{"budget":"5000"}`, want: "5000"},
		{name: "should format an integer number", input: `{"budget":25000}`, want: "25000"},
		{name: "should format a fractional number", input: `{"budget":1500.5}`, want: "1500.5"},
		{name: "should leave null empty", input: `{"budget":null}`, want: ""},
		{name: "should reject booleans", input: `{"budget":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Budget Budget `json:"budget"`
			}
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Budget != tt.want {
				t.Errorf("Budget = %q, want %q", got.Budget, tt.want)
			}
		})
	}

	t.Run("should validate a decoded number", func(t *testing.T) {
		var b Budget
		if err := json.Unmarshal([]byte("25000"), &b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.IsValid() {
			t.Errorf("expected %q to be a valid budget", b)
		}
	})
}
