package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/wardwatch/internal/app"
)

func (s *Server) registerRegisters(r chi.Router) {
	mountRegister(s, r, "/equipment", s.svc.Equipment())
	mountRegister(s, r, "/incidents", s.svc.Incidents())
	mountRegister(s, r, "/audits", s.svc.Audits())
	mountRegister(s, r, "/eip", s.svc.EIP())
	mountRegister(s, r, "/evacuations", s.svc.Evacuations())
	mountRegister(s, r, "/permits", s.svc.Permits())
	mountRegister(s, r, "/kpi", s.svc.KPIReports())
	mountRegister(s, r, "/contracts", s.svc.Contracts())

	mountRegister(s, r, "/waste", s.svc.Waste(), func(r chi.Router) {
		r.Get("/top", s.handleTopWaste)
	})
	mountRegister(s, r, "/risks", s.svc.Risks(), func(r chi.Router) {
		r.Put("/{id}/measures/{measureID}/status", s.handleSetMeasureStatus)
	})
}

// mountRegister exposes list, get, add, replace and delete for reg under
// path, plus any extra routes of that register.
func mountRegister[T service.Record](s *Server, r chi.Router, path string, reg *service.Register[T], extra ...func(chi.Router)) {
	r.Route(path, func(r chi.Router) {
		for _, fn := range extra {
			fn(r)
		}
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, reg.List(r.Context()))
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var item T
			if err := decodeJSON(w, r, &item); err != nil {
				s.fail(r.Context(), w, err)
				return
			}
			saved, err := reg.Add(r.Context(), item)
			s.respond(w, r, http.StatusCreated, saved, err)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			item, err := reg.Get(r.Context(), chi.URLParam(r, "id"))
			s.respond(w, r, http.StatusOK, item, err)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			var item T
			if err := decodeJSON(w, r, &item); err != nil {
				s.fail(r.Context(), w, err)
				return
			}
			saved, err := reg.Replace(r.Context(), chi.URLParam(r, "id"), item)
			s.respond(w, r, http.StatusOK, saved, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := reg.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
				s.fail(r.Context(), w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func (s *Server) handleSetMeasureStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	risk, err := s.svc.SetMeasureStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "measureID"), req.Status)
	s.respond(w, r, http.StatusOK, risk, err)
}

// handleTopWaste serves ?by=department|type&n=&year=&month=. Without a
// period every entry counts.
func (s *Server) handleTopWaste(w http.ResponseWriter, r *http.Request) {
	n, err := intQuery(r, "n")
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	period, _, err := periodFrom(r)
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	top, err := s.svc.TopWaste(r.Context(), r.URL.Query().Get("by"), n, period)
	s.respond(w, r, http.StatusOK, top, err)
}
