// Package api exposes the compliance service as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/wardwatch/internal/app"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/pkg/logger"
)

// Request headers understood by the API.
const (
	HeaderRole           = "X-Role"
	HeaderActor          = "X-Actor"
	HeaderIdempotencyKey = "Idempotency-Key"
)

const (
	maxJSONBody = 1 << 20
	maxCSVBody  = 10 << 20
)

// Server wires HTTP routes for the compliance API.
type Server struct {
	svc    *service.Service
	stats  StatsProvider
	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates the API server. stats defaults to the service itself.
func NewServer(svc *service.Service, stats StatsProvider, opts ...Option) *Server {
	s := &Server{svc: svc, stats: stats, logger: logger.Discard()}
	if s.stats == nil {
		s.stats = svc
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches every route to r.
func (s *Server) Register(r chi.Router) {
	r.Use(MetricsMiddleware)

	r.Get("/healthz", NewHealthHandler().HandleHealth)
	r.Get("/stats", NewStatsHandler(s.stats).HandleStats)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requestContext)

		r.Get("/summary", s.handleSummary)
		s.registerTasks(r)
		s.registerTraining(r)
		s.registerCatalog(r)
		s.registerRegisters(r)
	})
}

// Handler returns a standalone router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// requestContext moves the idempotency key header into the request context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(HeaderIdempotencyKey); key != "" {
			r = r.WithContext(service.WithIdempotencyKey(r.Context(), key))
		}
		next.ServeHTTP(w, r)
	})
}

func actorFrom(r *http.Request) service.Actor {
	return service.Actor{
		Name: strings.TrimSpace(r.Header.Get(HeaderActor)),
		Role: strings.TrimSpace(r.Header.Get(HeaderRole)),
	}
}

// scopeFrom reads ?area= and ?subdomain=. A present but empty subdomain
// selects the area's general bucket, same as leaving it out.
func scopeFrom(r *http.Request) model.Scope {
	q := r.URL.Query()
	scope := model.Scope{Area: strings.TrimSpace(q.Get("area"))}
	if sub := strings.TrimSpace(q.Get("subdomain")); sub != "" {
		scope.Subdomain = &sub
	}
	return scope
}

// periodFrom reads ?year= and ?month=. ok is false when neither is set.
func periodFrom(r *http.Request) (p calendar.Period, ok bool, err error) {
	q := r.URL.Query()
	year, month := q.Get("year"), q.Get("month")
	if year == "" && month == "" {
		return p, false, nil
	}
	if p.Year, err = strconv.Atoi(year); err != nil || p.Year < 1 {
		return p, false, fmt.Errorf("%w: invalid year %q", ErrBadRequest, year)
	}
	if month != "" {
		if p.Month, err = strconv.Atoi(month); err != nil || p.Month < 1 || p.Month > 12 {
			return p, false, fmt.Errorf("%w: invalid month %q", ErrBadRequest, month)
		}
	}
	return p, true, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return n, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error, details map[string]any) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Details: details})
}

// fail translates a service error into the JSON error envelope.
func (s *Server) fail(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for k, v := range verr.Fields {
			details[k] = v
		}
		writeError(w, http.StatusBadRequest, "validation_failed", service.ErrValidation, details)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err, nil)
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err, nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err, nil)
	case errors.Is(err, service.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "duplicate_request", err, nil)
	default:
		s.logger.Error(ctx, "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", errors.New("internal error"), nil)
	}
}

// respond writes v with status, or the error envelope when err is set.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, status, v)
}
