package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frusal/deploy-my-schema/internal/logging"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a WorkspaceStore over HTTP so that several clients can share it.
//
//	GET    /workspaces          list names
//	GET    /workspaces/{name}   load a snapshot
//	PUT    /workspaces/{name}   commit a snapshot (409 on a stale version)
//	DELETE /workspaces/{name}   delete
type Server struct {
	Store   ports.WorkspaceStore
	Version string

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the given registry on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for store.
func NewHandler(store ports.WorkspaceStore, opts ...Option) http.Handler {
	s := &Server{
		Store:   store,
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.ListWorkspaces)
		r.Get("/{name}", s.LoadWorkspace)
		r.Put("/{name}", s.CommitWorkspace)
		r.Delete("/{name}", s.DeleteWorkspace)
	})
	return r
}

// commitResponse is the body of a successful PUT.
type commitResponse struct {
	Version int64 `json:"version"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	names, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusOK, names)
}

func (s *Server) LoadWorkspace(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusOK, snap)
}

func (s *Server) CommitWorkspace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.reply(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		s.logger.Warn("Commit: invalid request body", "workspace", name, "err", err)
		return
	}
	if snap.Name != name {
		s.reply(w, http.StatusBadRequest, errorResponse{Error: "snapshot name does not match the URL"})
		return
	}
	if snap.Members == nil {
		snap.Members = make(map[string]string)
	}
	if snap.Entities == nil {
		snap.Entities = make(map[domain.ID]*domain.Entity)
	}

	version, err := s.Store.Commit(r.Context(), &snap)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusOK, commitResponse{Version: version})
}

func (s *Server) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{
		"app":     "deploy-my-schema",
		"version": s.Version,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		s.reply(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		s.reply(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.reply(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
