package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/wardwatch/internal/app"
)

type statusRequest struct {
	Status string `json:"status"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (s *Server) registerTasks(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleAddTask)
		r.Get("/counts", s.handleTaskCounts)
		r.Get("/today", s.handleCountTodoToday)
		r.Patch("/{id}", s.handleUpdateTask)
		r.Put("/{id}/status", s.handleSetTaskStatus)
		r.Delete("/{id}", s.handleDeleteTask)
	})
	r.Route("/suggestions", func(r chi.Router) {
		r.Get("/", s.handleListSuggestions)
		r.Post("/", s.handleAddSuggestion)
		r.Put("/{id}/status", s.handleSetSuggestionStatus)
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListTasks(r.Context(), scopeFrom(r)))
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	task, err := s.svc.AddTask(r.Context(), in)
	s.respond(w, r, http.StatusCreated, task, err)
}

func (s *Server) handleTaskCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.TaskCounts(r.Context(), scopeFrom(r)))
}

func (s *Server) handleCountTodoToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, countResponse{Count: s.svc.CountTodoToday(r.Context(), scopeFrom(r))})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	task, err := s.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	s.respond(w, r, http.StatusOK, task, err)
}

func (s *Server) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	task, err := s.svc.SetTaskStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	s.respond(w, r, http.StatusOK, task, err)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListSuggestions(r.Context(), scopeFrom(r)))
}

func (s *Server) handleAddSuggestion(w http.ResponseWriter, r *http.Request) {
	var in service.SuggestionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	sg, err := s.svc.AddSuggestion(r.Context(), in)
	s.respond(w, r, http.StatusCreated, sg, err)
}

func (s *Server) handleSetSuggestionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	sg, err := s.svc.SetSuggestionStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	s.respond(w, r, http.StatusOK, sg, err)
}
