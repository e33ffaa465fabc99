package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/specvital/planner/internal/domain/plan"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

const (
	maxBodyBytes = 1 << 20

	msgMissingAPIKey = "Server configuration incomplete. Missing API key."
)

// Generator serves the single-call generation endpoints.
type Generator interface {
	CompletePlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error)
	DetailedPlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error)
	Idea(ctx context.Context, req plan.GenerationRequest) (*planuc.IdeaResult, error)
	Section(ctx context.Context, rawID, userPrompt string) (string, error)
}

// PlanStore serves the stored-plan endpoints.
type PlanStore interface {
	Create(ctx context.Context, in planuc.CreateInput) (*plan.PlanRecord, error)
	CreateDemo(ctx context.Context) (*plan.PlanRecord, error)
	ExtractSection(ctx context.Context, id, rawSectionID string) (*planuc.SectionView, error)
	Get(ctx context.Context, id string) (*plan.PlanRecord, error)
	List(ctx context.Context, limit int) ([]plan.PlanRecord, error)
	Render(ctx context.Context, id string) (*planuc.RenderedPlan, error)
}

// Server is the planner HTTP API.
type Server struct {
	generator Generator
	plans     PlanStore
	router    chi.Router
}

// NewServer builds the router. generator is nil when no AI provider is
// configured; generation routes then answer 500 while stored plans stay
// readable.
func NewServer(generator Generator, plans PlanStore) *Server {
	s := &Server{
		generator: generator,
		plans:     plans,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Post("/generate", s.handleGenerateIdea)
	s.router.Post("/generate-plan", s.handleGeneratePlan)
	s.router.Post("/generate-complete-plan", s.handleGenerateCompletePlan)
	s.router.Post("/generate-section", s.handleGenerateSection)

	s.router.Route("/plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Post("/", s.handleCreatePlan)
		r.Post("/demo", s.handleCreateDemo)
		r.Get("/{id}", s.handleGetPlan)
		r.Get("/{id}/render", s.handleRenderPlan)
		r.Get("/{id}/sections/{sectionId}", s.handleGetSection)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeError maps use case errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plan.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, plan.ErrPlanNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeErrorMessage(w, status, err.Error())
}
