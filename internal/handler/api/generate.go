package api

import (
	"net/http"
	"strings"

	"github.com/specvital/planner/internal/domain/plan"
)

type ideaRequest struct {
	Budget   plan.Budget `json:"budget"`
	Country  string      `json:"country"`
	Criteria []string    `json:"criteria"`
	Industry string      `json:"industry"`
}

func (r ideaRequest) generationRequest() plan.GenerationRequest {
	return plan.GenerationRequest{
		Budget:   r.Budget,
		Country:  r.Country,
		Criteria: r.Criteria,
		Industry: r.Industry,
	}
}

type planRequest struct {
	ideaRequest
	BusinessIdea string `json:"businessIdea"`
}

type sectionRequest struct {
	Prompt    string `json:"prompt"`
	SectionID string `json:"sectionId"`
}

func (s *Server) handleGenerateIdea(w http.ResponseWriter, r *http.Request) {
	var body ideaRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req := body.generationRequest()
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if s.generator == nil {
		writeErrorMessage(w, http.StatusInternalServerError, msgMissingAPIKey)
		return
	}

	result, err := s.generator.Idea(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodePlanRequest(w, r)
	if !ok {
		return
	}

	doc, err := s.generator.DetailedPlan(r.Context(), body.BusinessIdea, body.generationRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "detailedPlan": doc})
}

func (s *Server) handleGenerateCompletePlan(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodePlanRequest(w, r)
	if !ok {
		return
	}

	doc, err := s.generator.CompletePlan(r.Context(), body.BusinessIdea, body.generationRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": doc})
}

func (s *Server) handleGenerateSection(w http.ResponseWriter, r *http.Request) {
	var body sectionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.SectionID == "" || strings.TrimSpace(body.Prompt) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing parameters. Please provide sectionId and prompt.")
		return
	}
	if _, err := plan.ParseSectionID(body.SectionID); err != nil {
		writeError(w, r, err)
		return
	}
	if s.generator == nil {
		writeErrorMessage(w, http.StatusInternalServerError, msgMissingAPIKey)
		return
	}

	content, err := s.generator.Section(r.Context(), body.SectionID, body.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})
}

// decodePlanRequest validates input before the provider check so missing
// fields are reported as 400 even on an unconfigured server.
func (s *Server) decodePlanRequest(w http.ResponseWriter, r *http.Request) (planRequest, bool) {
	var body planRequest
	if !decodeJSON(w, r, &body) {
		return body, false
	}
	if strings.TrimSpace(body.BusinessIdea) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing parameters. Please provide businessIdea, industry, country and budget.")
		return body, false
	}
	if err := body.generationRequest().Validate(); err != nil {
		writeError(w, r, err)
		return body, false
	}
	if s.generator == nil {
		writeErrorMessage(w, http.StatusInternalServerError, msgMissingAPIKey)
		return body, false
	}
	return body, true
}
