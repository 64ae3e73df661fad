// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/archive"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/repository"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/ranking"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Write operations against the live store.
	SubmitTime(ctx context.Context, actor model.UserID, course int, rawTime string, advanced bool) error
	RegisterUser(ctx context.Context, actor model.UserID) error
	RegisterUsers(ctx context.Context, users []model.UserID) error

	// Read operations expose standings and registrants.
	RegisteredUsers(ctx context.Context) ([]model.UserID, error)
	Leaderboard(ctx context.Context, course int) (ranking.Board, []ranking.Placement, error)
	ArchivedLeaderboard(ctx context.Context, course, year int, month time.Month) (ranking.Board, []ranking.Placement, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	submitHandler      *SubmitHandler
	registerHandler    *RegisterHandler
	leaderboardHandler *LeaderboardHandler
	registrantsHandler *RegistrantsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		submitHandler:      NewSubmitHandler(deps),
		registerHandler:    NewRegisterHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		registrantsHandler: NewRegistrantsHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(ctx context.Context, r *mux.Router) {
	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/times", MetricsMiddleware(s.submitHandler.HandleSubmitTime, "times")).Methods(http.MethodPost)
	sub.HandleFunc("/register", MetricsMiddleware(s.registerHandler.HandleRegister, "register")).Methods(http.MethodPost)
	sub.HandleFunc("/registrants", MetricsMiddleware(s.registrantsHandler.HandleGetRegistrants, "registrants")).Methods(http.MethodGet)
	sub.HandleFunc("/leaderboard/{course}", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard")).Methods(http.MethodGet)
	sub.HandleFunc("/leaderboard/{course}/{year}/{month}", MetricsMiddleware(s.leaderboardHandler.HandleGetArchivedLeaderboard, "leaderboard_archive")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates a store error into the HTTP response the
// collaborator layer should surface: validation failures are 400,
// a non-improving time is 409, a missing archive period is 404 and
// anything else is an internal storage failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCourse),
		errors.Is(err, racetime.ErrInvalidTime),
		errors.Is(err, repository.ErrNoUsers):
		writeError(w, http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, repository.ErrNotAnImprovement):
		writeError(w, http.StatusConflict, "not_an_improvement", err)
	case errors.Is(err, archive.ErrNotFound):
		writeError(w, http.StatusNotFound, "archive_not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
	}
}
