// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	repository "github.com/okian/podclips/internal/adapters/repository"
	service "github.com/okian/podclips/internal/app"
	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/internal/domain/types"
	"github.com/okian/podclips/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	ListClips(ctx context.Context, sortBy string) ([]model.Clip, error)
	GetClip(ctx context.Context, clipID string) (model.Clip, error)
	ApplyVote(ctx context.Context, clipID, voteType, voter string) (model.Clip, error)
	PlatformStats(ctx context.Context) (types.PlatformStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps          Dependencies
	statsProvider StatsProvider

	defaultLimit int
	maxLimit     int
	logger       logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		statsProvider: statsProvider,
		defaultLimit:  defaultListLimit,
		maxLimit:      maxListLimit,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /debug/stats", MetricsMiddleware(s.statsHandler.HandleStats, "debug_stats"))

	mux.HandleFunc("GET /api/clips", MetricsMiddleware(s.handleListClips, "list_clips"))
	mux.HandleFunc("GET /api/clips/{clip_id}", MetricsMiddleware(s.handleGetClip, "get_clip"))
	mux.HandleFunc("POST /api/clips/{clip_id}/vote", MetricsMiddleware(s.handleVote, "vote"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.handlePlatformStats, "stats"))
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, statusResponse{Status: "error", Message: message})
}

// fail maps err onto a status code and writes it. Server errors are logged
// with their full chain; clients only see a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Clip not found")
	case errors.Is(err, service.ErrInvalidVoteType), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "Vote conflicted with concurrent updates, retry")
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "")
	}
}

// clientMessage drops the op prefixes of a wrapped error.
func clientMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) && oe.err != nil {
		return clientMessage(oe.err)
	}
	return err.Error()
}

// voterID identifies the client for the vote log: the X-Voter-ID header,
// else the first X-Forwarded-For hop, else the remote address.
func voterID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Voter-ID")); v != "" {
		return v
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
