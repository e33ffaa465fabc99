package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	planuc "github.com/specvital/planner/internal/usecase/plan"
)

type createPlanRequest struct {
	planRequest
	Async bool   `json:"async"`
	Name  string `json:"name"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var body createPlanRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if s.generator == nil {
		if err := body.generationRequest().Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		writeErrorMessage(w, http.StatusInternalServerError, msgMissingAPIKey)
		return
	}

	record, err := s.plans.Create(r.Context(), planuc.CreateInput{
		Async:        body.Async,
		BusinessIdea: body.BusinessIdea,
		Name:         body.Name,
		Request:      body.generationRequest(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if body.Async {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{"success": true, "plan": record})
}

func (s *Server) handleCreateDemo(w http.ResponseWriter, r *http.Request) {
	record, err := s.plans.CreateDemo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": record})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.plans.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": records})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	record, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleRenderPlan(w http.ResponseWriter, r *http.Request) {
	rendered, err := s.plans.Render(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if rendered.ETag != "" {
		etag := `"` + rendered.ETag + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	view, err := s.plans.ExtractSection(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sectionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
