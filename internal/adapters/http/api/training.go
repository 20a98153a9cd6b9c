package api

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/wardwatch/internal/app"
)

type attendanceRequest struct {
	Present []string `json:"present"`
	Excused []string `json:"excused"`
}

type proofRequest struct {
	URL string `json:"url"`
}

type complianceResponse struct {
	Year    int `json:"year"`
	Month   int `json:"month,omitempty"`
	Percent int `json:"percent"`
}

func (s *Server) registerTraining(r chi.Router) {
	r.Route("/training", func(r chi.Router) {
		r.Get("/", s.handleListTraining)
		r.Post("/", s.handleAddTraining)
		r.Post("/import", s.handleImportTraining)
		r.Get("/compliance", s.handleTrainingCompliance)
		r.Put("/{id}/attendance", s.handleRecordAttendance)
		r.Put("/{id}/proof", s.handleAttachProof)
		r.Post("/{id}/finalize", s.handleFinalizeTraining)
	})
}

func (s *Server) handleListTraining(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListTraining(r.Context(), r.URL.Query().Get("department")))
}

func (s *Server) handleAddTraining(w http.ResponseWriter, r *http.Request) {
	var in service.TrainingInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	row, err := s.svc.AddTraining(r.Context(), in)
	s.respond(w, r, http.StatusCreated, row, err)
}

// handleImportTraining accepts the attendance export either as the raw
// request body or as the "file" part of a multipart form.
func (s *Server) handleImportTraining(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBody)
	body := r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			s.fail(r.Context(), w, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		defer file.Close()
		body = file
	}
	report, err := s.svc.ImportTrainingCSV(r.Context(), body)
	s.respond(w, r, http.StatusOK, report, err)
}

// handleTrainingCompliance reports ?year=&month=, or the current year and
// month when neither is given.
func (s *Server) handleTrainingCompliance(w http.ResponseWriter, r *http.Request) {
	period, ok, err := periodFrom(r)
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, s.svc.CurrentTrainingCompliance(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, complianceResponse{
		Year:    period.Year,
		Month:   period.Month,
		Percent: s.svc.TrainingCompliance(r.Context(), period),
	})
}

func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	row, err := s.svc.RecordAttendance(r.Context(), chi.URLParam(r, "id"), req.Present, req.Excused)
	s.respond(w, r, http.StatusOK, row, err)
}

func (s *Server) handleAttachProof(w http.ResponseWriter, r *http.Request) {
	var req proofRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	row, err := s.svc.AttachProof(r.Context(), chi.URLParam(r, "id"), req.URL)
	s.respond(w, r, http.StatusOK, row, err)
}

func (s *Server) handleFinalizeTraining(w http.ResponseWriter, r *http.Request) {
	row, err := s.svc.FinalizeTraining(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, row, err)
}
