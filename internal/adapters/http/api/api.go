// Package api exposes the recorder's HTTP surface: rosters, games, shot
// ingest, stat reads, and the rendered chart formats.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/dedupe"
	"github.com/openhoops/shotchart/internal/domain/model"
)

// Dependencies required by the ingest handlers. An interface bundle
// keeps the handler layer loosely coupled to the service wiring.
type Dependencies interface {
	dedupe.Tracker

	// Enqueue hands a validated shot event to the classification
	// pipeline. Returns false on backpressure.
	Enqueue(ctx context.Context, ev model.ShotEvent) bool

	// DefaultLevel is the court level applied when a team does not pick
	// one.
	DefaultLevel() court.Level
}

// LiveHub accepts WebSocket subscriptions to a game's classified shots.
type LiveHub interface {
	Subscribe(w http.ResponseWriter, r *http.Request, gameID string) error
	Subscribers(gameID string) int
}

const (
	defaultMaxListLimit = 500
	defaultChartWidth   = 800.0
)

// Server wires HTTP routes for the recorder API.
type Server struct {
	maxLimit   int
	chartWidth float64

	teams   *TeamsHandler
	shots   *ShotsHandler
	stats   *GameStatsHandler
	courts  *CourtHandler
	charts  *RenderHandler
	live    *LiveHandler
	health  *HealthHandler
	service *StatsHandler
}

// NewServer creates an API server over the given wiring.
func NewServer(deps Dependencies, store repository.Store, hub LiveHub, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxLimit:   defaultMaxListLimit,
		chartWidth: defaultChartWidth,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.teams = NewTeamsHandler(store, deps)
	s.shots = NewShotsHandler(store, deps, s.maxLimit)
	s.stats = NewGameStatsHandler(store)
	s.courts = NewCourtHandler()
	s.charts = NewRenderHandler(store, s.chartWidth)
	s.live = NewLiveHandler(store, hub)
	s.health = NewHealthHandler()
	s.service = NewStatsHandler(stats)
	return s
}

// Register attaches all HTTP routes to the router. Operational endpoints
// sit at the root; the business API lives under /v1.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.health.HandleHealth)
	r.Get("/metrics", s.health.HandleMetrics)
	r.Get("/stats", s.service.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/teams", func(r chi.Router) {
			r.Post("/", s.teams.HandleCreateTeam)
			r.Get("/", s.teams.HandleListTeams)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", s.teams.HandleGetTeam)
				r.Post("/players", s.teams.HandleCreatePlayer)
				r.Get("/players", s.teams.HandleListPlayers)
				r.Post("/games", s.teams.HandleCreateGame)
				r.Get("/games", s.teams.HandleListGames)
			})
		})

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", s.teams.HandleGetGame)
			r.Post("/shots", s.shots.HandleRecordShot)
			r.Get("/shots", s.shots.HandleListShots)
			r.Delete("/shots/{shotID}", s.shots.HandleDeleteShot)
			r.Post("/subs", s.shots.HandleRecordSub)
			r.Get("/subs", s.shots.HandleListSubs)
			r.Get("/stats", s.stats.HandleGameStats)
			r.Get("/heatmap", s.stats.HandleHeatmap)
			r.Get("/chart.svg", s.charts.HandleChartSVG)
			r.Get("/report.pdf", s.charts.HandleReportPDF)
			r.Get("/live", s.live.HandleLive)
		})

		r.Get("/players/{playerID}/stats", s.stats.HandlePlayerStats)

		r.Route("/court/{level}", func(r chi.Router) {
			r.Get("/lines", s.courts.HandleLines)
			r.Get("/zones", s.courts.HandleZones)
		})
	})
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

// writeStoreError maps repository errors onto API statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
