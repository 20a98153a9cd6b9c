package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/wardwatch/internal/domain/model"
)

func (s *Server) registerCatalog(r chi.Router) {
	r.Get("/catalog/maintenance", s.handleMaintenanceCards)
	r.Get("/catalog/safety", s.handleSafetyCards)
	r.Route("/questionnaires", func(r chi.Router) {
		r.Get("/", s.handleQuestionnaires)
		r.Get("/{id}/responses", s.handleListResponses)
		r.Post("/{id}/responses", s.handleSubmitResponse)
		r.Get("/{id}/score", s.handleQuestionnaireScore)
	})
}

func (s *Server) handleMaintenanceCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.MaintenanceCards())
}

func (s *Server) handleSafetyCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.SafetyCards())
}

func (s *Server) handleQuestionnaires(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Questionnaires())
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListResponses(r.Context(), chi.URLParam(r, "id"), scopeFrom(r)))
}

// handleSubmitResponse takes the questionnaire id from the path; a body id
// that disagrees is reported by validation.
func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var resp model.QuestionnaireResponse
	if err := decodeJSON(w, r, &resp); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if resp.QuestionnaireID == "" {
		resp.QuestionnaireID = id
	} else if resp.QuestionnaireID != id {
		s.fail(r.Context(), w, validationError("questionnaireId", "does not match the path"))
		return
	}
	saved, err := s.svc.SubmitResponse(r.Context(), resp)
	s.respond(w, r, http.StatusCreated, saved, err)
}

func (s *Server) handleQuestionnaireScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.QuestionnaireScore(r.Context(), chi.URLParam(r, "id"), scopeFrom(r))
	s.respond(w, r, http.StatusOK, score, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary(r.Context(), scopeFrom(r)))
}
