package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/stats"
)

// GameStatsHandler aggregates stored shots into box score shapes.
type GameStatsHandler struct {
	store repository.Store
}

// NewGameStatsHandler creates a new game stats handler.
func NewGameStatsHandler(store repository.Store) *GameStatsHandler {
	return &GameStatsHandler{store: store}
}

type gameStatsResponse struct {
	GameID string      `json:"game_id"`
	Level  court.Level `json:"level"`
	stats.Summary
}

// HandleGameStats handles GET /v1/games/{gameID}/stats requests.
func (h *GameStatsHandler) HandleGameStats(w http.ResponseWriter, r *http.Request) {
	game, err := h.store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	shots, err := h.store.ListShots(r.Context(), game.ID, repository.ShotFilter{})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStatsResponse{
		GameID:  game.ID,
		Level:   game.Level,
		Summary: stats.Compute(shots),
	})
}

type playerStatsResponse struct {
	PlayerID string             `json:"player_id"`
	Games    int                `json:"games"`
	Career   stats.Line         `json:"career"`
	Quarters []stats.QuarterLine `json:"quarters"`
	Zones    []stats.ZoneLine   `json:"zones"`
}

// HandlePlayerStats handles GET /v1/players/{playerID}/stats requests,
// a career line across every recorded game.
func (h *GameStatsHandler) HandlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	shots, err := h.store.ListPlayerShots(r.Context(), playerID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	games := make(map[string]struct{})
	for _, s := range shots {
		games[s.GameID] = struct{}{}
	}

	sum := stats.Compute(shots)
	writeJSON(w, http.StatusOK, playerStatsResponse{
		PlayerID: playerID,
		Games:    len(games),
		Career:   sum.Team,
		Quarters: sum.Quarters,
		Zones:    sum.Zones,
	})
}

type heatmapResponse struct {
	GameID string `json:"game_id"`
	stats.Heatmap
}

// HandleHeatmap handles GET /v1/games/{gameID}/heatmap requests.
func (h *GameStatsHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	game, err := h.store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	cols, err := parseGridParam(r.URL.Query().Get("cols"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := parseGridParam(r.URL.Query().Get("rows"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	shots, err := h.store.ListShots(r.Context(), game.ID, repository.ShotFilter{})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmapResponse{
		GameID:  game.ID,
		Heatmap: stats.ComputeHeatmap(shots, cols, rows),
	})
}

// parseGridParam reads a grid dimension; zero means the default and the
// stats package clamps out-of-range values.
func parseGridParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid grid size")
	}
	return n, nil
}
