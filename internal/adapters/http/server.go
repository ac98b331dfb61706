// Package http exposes the wizard engine over a JSON API. It exists for
// clients that drive the wizard remotely; the CLI talks to the engine
// directly.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/internal/runtime"
	"github.com/veladahq/velada/pkg/domain"
)

// Server handles the wizard API routes.
type Server struct {
	engine  *runtime.Engine
	logger  *slog.Logger
	metrics *metrics
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the wizard engine. Prometheus
// collectors register against reg; pass nil for the default registry.
func NewHandler(engine *runtime.Engine, reg prometheus.Registerer, opts ...Option) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	server := &Server{
		engine:  engine,
		logger:  logging.NewNop(),
		metrics: newMetrics(reg),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/categories", server.categories)

	r.Route("/flows", func(r chi.Router) {
		r.Post("/", server.startFlow)
		r.Route("/{flowID}", func(r chi.Router) {
			r.Get("/", server.getFlow)
			r.Delete("/", server.cancelFlow)
			r.Post("/jump", server.jump)
			r.Post("/submit", server.submit)
			r.Route("/sections/{sectionID}", func(r chi.Router) {
				r.Put("/", server.saveSection)
				r.Post("/advance", server.advance)
				r.Post("/back", server.back)
			})
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startFlowRequest struct {
	Kind    string `json:"kind"`
	EventID int    `json:"event_id,omitempty"`
}

type flowResponse struct {
	FlowID    string               `json:"flow_id"`
	Kind      domain.FlowKind      `json:"kind"`
	Current   string               `json:"current_section"`
	Status    domain.FlowStatus    `json:"status"`
	Sections  []domain.Section     `json:"sections"`
	Progress  domain.Progress      `json:"progress"`
	Completed domain.CompletionMap `json:"completed"`
}

func (s *Server) startFlow(w http.ResponseWriter, r *http.Request) {
	var body startFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		state *domain.FlowState
		err   error
	)
	switch body.Kind {
	case "edit":
		if body.EventID == 0 {
			http.Error(w, "event_id is required for edit flows", http.StatusBadRequest)
			return
		}
		state, err = s.engine.StartEdit(r.Context(), body.EventID)
	case "create", "":
		state, err = s.engine.StartCreate(r.Context())
	default:
		http.Error(w, "unknown flow kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error("starting flow failed", "kind", body.Kind, "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeFlow(w, r, state, http.StatusCreated)
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.Flow(chi.URLParam(r, "flowID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeFlow(w, r, state, http.StatusOK)
}

func (s *Server) writeFlow(w http.ResponseWriter, r *http.Request, state *domain.FlowState, status int) {
	progress, err := s.engine.Progress(state.FlowID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	completed, err := s.engine.Completion(r.Context(), state.FlowID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sections, err := s.engine.Sections(state.FlowID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, status, flowResponse{
		FlowID:    state.FlowID,
		Kind:      state.Kind,
		Current:   state.CurrentSectionID,
		Status:    state.Status,
		Sections:  sections,
		Progress:  progress,
		Completed: completed,
	})
}

func (s *Server) saveSection(w http.ResponseWriter, r *http.Request) {
	var draft domain.SectionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flowID := chi.URLParam(r, "flowID")
	sectionID := chi.URLParam(r, "sectionID")
	if err := s.engine.SaveSection(r.Context(), flowID, sectionID, draft); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionResponse struct {
	Next   *domain.Section `json:"next,omitempty"`
	Errors domain.ErrorMap `json:"errors,omitempty"`
	Done   bool            `json:"done,omitempty"`
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	sectionID := chi.URLParam(r, "sectionID")

	next, errs, err := s.engine.Advance(r.Context(), flowID, sectionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !errs.Valid() {
		s.metrics.validationFailures.WithLabelValues(sectionID).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, transitionResponse{Errors: errs})
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Next: next, Done: next == nil})
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	sectionID := chi.URLParam(r, "sectionID")

	prev, err := s.engine.Back(r.Context(), flowID, sectionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Next: prev})
}

type jumpRequest struct {
	Target string `json:"target"`
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	var body jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := s.engine.JumpTo(r.Context(), chi.URLParam(r, "flowID"), body.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		http.Error(w, "section not reachable yet", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitResponse struct {
	Result *domain.SubmitResult `json:"result,omitempty"`
	Errors domain.ErrorMap      `json:"errors,omitempty"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	state, err := s.engine.Flow(flowID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	kind := string(state.Kind)

	result, errs, err := s.engine.Submit(r.Context(), flowID)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrStaleSubmit) {
			outcome = "stale"
		}
		s.metrics.submissions.WithLabelValues(kind, outcome).Inc()
		s.writeError(w, err)
		return
	}
	if !errs.Valid() {
		s.metrics.submissions.WithLabelValues(kind, "invalid").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{Errors: errs})
		return
	}

	s.metrics.submissions.WithLabelValues(kind, "success").Inc()
	writeJSON(w, http.StatusOK, submitResponse{Result: result})
}

func (s *Server) cancelFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Cancel(r.Context(), chi.URLParam(r, "flowID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.engine.Categories(r.Context())
	if err != nil {
		s.logger.Error("fetching categories failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var composeErr *domain.ComposeError
	var submitErr *domain.SubmitError

	switch {
	case errors.Is(err, domain.ErrFlowNotFound):
		http.Error(w, "flow not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrSubmitInFlight):
		http.Error(w, "a submission is already in flight", http.StatusConflict)
	case errors.Is(err, domain.ErrStaleSubmit):
		http.Error(w, "a newer submission superseded this one", http.StatusConflict)
	case errors.As(err, &composeErr):
		http.Error(w, composeErr.Reason, http.StatusUnprocessableEntity)
	case errors.As(err, &submitErr):
		s.logger.Error("submit step failed", "step", submitErr.Step, "err", submitErr.Err)
		http.Error(w, submitErr.Error(), http.StatusBadGateway)
	default:
		s.logger.Error("request failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response failed", "err", err)
	}
}
