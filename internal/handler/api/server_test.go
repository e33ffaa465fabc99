package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/specvital/planner/internal/adapter/ai/mock"
	"github.com/specvital/planner/internal/adapter/repository/memory"
	"github.com/specvital/planner/internal/domain/plan"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

type mockGenerator struct {
	completePlanFn func(ctx context.Context, idea string, req plan.GenerationRequest) (string, error)
	detailedPlanFn func(ctx context.Context, idea string, req plan.GenerationRequest) (string, error)
	ideaFn         func(ctx context.Context, req plan.GenerationRequest) (*planuc.IdeaResult, error)
	sectionFn      func(ctx context.Context, rawID, userPrompt string) (string, error)
}

func (m *mockGenerator) CompletePlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error) {
	if m.completePlanFn != nil {
		return m.completePlanFn(ctx, idea, req)
	}
	return "complete plan", nil
}

func (m *mockGenerator) DetailedPlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error) {
	if m.detailedPlanFn != nil {
		return m.detailedPlanFn(ctx, idea, req)
	}
	return "detailed plan", nil
}

func (m *mockGenerator) Idea(ctx context.Context, req plan.GenerationRequest) (*planuc.IdeaResult, error) {
	if m.ideaFn != nil {
		return m.ideaFn(ctx, req)
	}
	return &planuc.IdeaResult{Idea: "idea", Sources: []string{}}, nil
}

func (m *mockGenerator) Section(ctx context.Context, rawID, userPrompt string) (string, error) {
	if m.sectionFn != nil {
		return m.sectionFn(ctx, rawID, userPrompt)
	}
	return "section content", nil
}

func newMockServer(gen Generator) *Server {
	uc := planuc.NewPlanUseCase(memory.NewPlanRepository(), nil, nil)
	return NewServer(gen, uc)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

const validPlanBody = `{"businessIdea":"A marketplace","industry":"technology","country":"Kenya","budget":"medium"}`

func TestServer_GenerationRoutes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		generator  Generator
		wantStatus int
		wantKey    string
		wantError  string
	}{
		{
			name:       "should return an idea",
			path:       "/generate",
			body:       `{"industry":"technology","country":"Kenya","budget":"low"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusOK,
			wantKey:    "idea",
		},
		{
			name:       "should reject ideas without a country",
			path:       "/generate",
			body:       `{"industry":"technology","budget":"low"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "should return a detailed plan",
			path:       "/generate-plan",
			body:       validPlanBody,
			generator:  &mockGenerator{},
			wantStatus: http.StatusOK,
			wantKey:    "detailedPlan",
		},
		{
			name:       "should return a complete plan",
			path:       "/generate-complete-plan",
			body:       validPlanBody,
			generator:  &mockGenerator{},
			wantStatus: http.StatusOK,
			wantKey:    "plan",
		},
		{
			name:       "should reject plans without an idea",
			path:       "/generate-complete-plan",
			body:       `{"industry":"technology","country":"Kenya","budget":"medium"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "should return section content",
			path:       "/generate-section",
			body:       `{"sectionId":"marketing","prompt":"write it"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusOK,
			wantKey:    "content",
		},
		{
			name:       "should reject unknown section ids",
			path:       "/generate-section",
			body:       `{"sectionId":"appendix","prompt":"write it"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "should reject missing prompts",
			path:       "/generate-section",
			body:       `{"sectionId":"marketing"}`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "should reject malformed JSON",
			path:       "/generate",
			body:       `{`,
			generator:  &mockGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "should report a missing API key",
			path:       "/generate-plan",
			body:       validPlanBody,
			generator:  nil,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgMissingAPIKey,
		},
		{
			name: "should report generation failures",
			path: "/generate-complete-plan",
			body: validPlanBody,
			generator: &mockGenerator{
				completePlanFn: func(context.Context, string, plan.GenerationRequest) (string, error) {
					return "", plan.ErrContentTooShort
				},
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  plan.ErrContentTooShort.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(tt.generator)

			rr := doRequest(t, srv, http.MethodPost, tt.path, tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			body := decodeBody(t, rr)
			if tt.wantKey != "" {
				if _, ok := body[tt.wantKey]; !ok {
					t.Errorf("expected key %q in %v", tt.wantKey, body)
				}
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestServer_NumericBudget(t *testing.T) {
	var got plan.Budget
	gen := &mockGenerator{
		ideaFn: func(_ context.Context, req plan.GenerationRequest) (*planuc.IdeaResult, error) {
			got = req.Budget
			return &planuc.IdeaResult{Idea: "idea", Sources: []string{}}, nil
		},
	}

	rr := doRequest(t, newMockServer(gen), http.MethodPost, "/generate", `{"industry":"technology","country":"Kenya","budget":25000}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got != "25000" {
		t.Errorf("budget = %q, want 25000", got)
	}
}

func TestServer_MissingKeyStillValidates(t *testing.T) {
	srv := NewServer(nil, planuc.NewPlanUseCase(memory.NewPlanRepository(), nil, nil))

	rr := doRequest(t, srv, http.MethodPost, "/generate-plan", `{"industry":"technology"}`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestServer_PlanRoutes(t *testing.T) {
	provider := mock.NewProvider()
	assembler := planuc.NewAssembleUseCase(provider)
	plans := planuc.NewPlanUseCase(memory.NewPlanRepository(), assembler, nil)
	srv := NewServer(planuc.NewGenerateUseCase(provider), plans)

	t.Run("should create and render a plan synchronously", func(t *testing.T) {
		rr := doRequest(t, srv, http.MethodPost, "/plans", validPlanBody)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var created struct {
			Plan plan.PlanRecord `json:"plan"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if created.Plan.Status != plan.RecordStatusReady {
			t.Fatalf("status = %s, want ready", created.Plan.Status)
		}

		rr = doRequest(t, srv, http.MethodGet, "/plans/"+created.Plan.ID+"/render", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("render status = %d", rr.Code)
		}
		etag := rr.Header().Get("ETag")
		if etag == "" {
			t.Fatal("expected ETag header")
		}
		var rendered planuc.RenderedPlan
		if err := json.NewDecoder(rr.Body).Decode(&rendered); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(rendered.Sections) != len(plan.Sections()) {
			t.Errorf("expected %d sections, got %d", len(plan.Sections()), len(rendered.Sections))
		}

		req := httptest.NewRequest(http.MethodGet, "/plans/"+created.Plan.ID+"/render", nil)
		req.Header.Set("If-None-Match", etag)
		notModified := httptest.NewRecorder()
		srv.ServeHTTP(notModified, req)
		if notModified.Code != http.StatusNotModified {
			t.Errorf("conditional render status = %d, want 304", notModified.Code)
		}
	})

	t.Run("should reject asynchronous creation without a queue", func(t *testing.T) {
		body := strings.TrimSuffix(validPlanBody, "}") + `,"async":true}`

		rr := doRequest(t, srv, http.MethodPost, "/plans", body)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rr.Code)
		}
	})

	t.Run("should serve the demo plan and its sections", func(t *testing.T) {
		rr := doRequest(t, srv, http.MethodPost, "/plans/demo", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		id := decodeBody(t, rr)["plan"].(map[string]any)["id"].(string)

		rr = doRequest(t, srv, http.MethodGet, "/plans/"+id+"/sections/market-analysis", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("section status = %d, body %s", rr.Code, rr.Body.String())
		}
		view := decodeBody(t, rr)
		if view["method"] != "heading" {
			t.Errorf("method = %v, want heading", view["method"])
		}
		if !strings.Contains(view["html"].(string), "<table") {
			t.Error("expected rendered table")
		}

		rr = doRequest(t, srv, http.MethodGet, "/plans/"+id+"/sections/appendix", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("unknown section status = %d, want 400", rr.Code)
		}
	})

	t.Run("should list stored plans", func(t *testing.T) {
		rr := doRequest(t, srv, http.MethodGet, "/plans?limit=10", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if plans := decodeBody(t, rr)["plans"].([]any); len(plans) < 2 {
			t.Errorf("expected at least 2 plans, got %d", len(plans))
		}
	})

	t.Run("should return 404 for unknown plans", func(t *testing.T) {
		for _, path := range []string{"/plans/missing", "/plans/missing/render", "/plans/missing/sections/toolkit"} {
			rr := doRequest(t, srv, http.MethodGet, path, "")
			if rr.Code != http.StatusNotFound {
				t.Errorf("%s: status = %d, want 404", path, rr.Code)
			}
		}
	})
}

func TestServer_Healthz(t *testing.T) {
	rr := doRequest(t, newMockServer(nil), http.MethodGet, "/healthz", "")

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{plan.ErrInvalidInput, http.StatusBadRequest},
		{plan.ErrPlanNotFound, http.StatusNotFound},
		{plan.ErrNotConfigured, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		if rr.Code != tt.want {
			t.Errorf("writeError(%v) = %d, want %d", tt.err, rr.Code, tt.want)
		}
	}
}
