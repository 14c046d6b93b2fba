// Package api exposes the roster, rating, team, balance and simulation
// operations over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

const (
	maxBodyBytes       = 1 << 20
	defaultLeaderboard = 10
)

// Dependencies is what the handlers need from the service layer.
type Dependencies interface {
	CreatePlayer(ctx context.Context, in service.CreatePlayerInput) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
	UpdatePlayer(ctx context.Context, id string, in service.UpdatePlayerInput) (model.Player, error)
	DeletePlayer(ctx context.Context, id string) error

	SubmitRating(ctx context.Context, in service.RatingInput) (service.RatingReceipt, error)
	Leaderboard(ctx context.Context, limit int) ([]repository.Entry, error)
	Rank(ctx context.Context, playerID string) (repository.Entry, error)

	CreateTeam(ctx context.Context, in service.CreateTeamInput) (model.Team, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	DeleteTeam(ctx context.Context, id string) error

	Balance(ctx context.Context, in service.BalanceInput) (service.BalanceOutput, error)
	Simulate(ctx context.Context, in service.SimulateInput) (service.SimulateOutput, error)

	GetStats(ctx context.Context) (service.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	maxLimit int
	logger   logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps the limit query parameter.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, maxLimit: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", HandleHealth)
	mux.Handle("GET /metrics", MetricsHandler())
	route("GET /stats", "stats", s.handleStats)

	route("POST /players", "players", s.handleCreatePlayer)
	route("GET /players", "players", s.handleListPlayers)
	route("GET /players/{id}", "player", s.handleGetPlayer)
	route("PATCH /players/{id}", "player", s.handleUpdatePlayer)
	route("DELETE /players/{id}", "player", s.handleDeletePlayer)
	route("POST /players/{id}/ratings", "ratings", s.handleSubmitRating)

	route("GET /leaderboard", "leaderboard", s.handleLeaderboard)
	route("GET /rank/{id}", "rank", s.handleRank)

	route("POST /teams", "teams", s.handleCreateTeam)
	route("GET /teams", "teams", s.handleListTeams)
	route("GET /teams/{id}", "team", s.handleGetTeam)
	route("DELETE /teams/{id}", "team", s.handleDeleteTeam)

	route("POST /balance", "balance", s.handleBalance)
	route("POST /simulate", "simulate", s.handleSimulate)
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

// fail classifies err and writes it. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a JSON body into v, rejecting trailing data.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("invalid JSON body: %w", err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewKind(op, ErrBadRequest)
	}
	return nil
}
