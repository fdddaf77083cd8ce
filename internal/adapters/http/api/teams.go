package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
)

// TeamDependencies supplies the configured defaults team creation needs.
type TeamDependencies interface {
	DefaultLevel() court.Level
}

// TeamsHandler manages teams, rosters, and games.
type TeamsHandler struct {
	store repository.Store
	deps  TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(store repository.Store, deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{store: store, deps: deps}
}

type createTeamRequest struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

func (t createTeamRequest) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// HandleCreateTeam handles POST /v1/teams requests.
func (h *TeamsHandler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	level := h.deps.DefaultLevel()
	if req.Level != "" {
		parsed, err := court.ParseLevel(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		level = parsed
	}

	team := repository.Team{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(req.Name),
		Level: level,
	}
	if err := h.store.CreateTeam(r.Context(), team); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// HandleListTeams handles GET /v1/teams requests.
func (h *TeamsHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.store.ListTeams(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if teams == nil {
		teams = []repository.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleGetTeam handles GET /v1/teams/{teamID} requests.
func (h *TeamsHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.store.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

type createPlayerRequest struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

func (p createPlayerRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("missing name")
	case p.Number < 0 || p.Number > 99:
		return errors.New("number must be between 0 and 99")
	}
	return nil
}

// HandleCreatePlayer handles POST /v1/teams/{teamID}/players requests.
func (h *TeamsHandler) HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if _, err := h.store.GetTeam(r.Context(), teamID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	player := repository.Player{
		ID:     uuid.NewString(),
		TeamID: teamID,
		Number: req.Number,
		Name:   strings.TrimSpace(req.Name),
	}
	if err := h.store.CreatePlayer(r.Context(), player); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

// HandleListPlayers handles GET /v1/teams/{teamID}/players requests.
func (h *TeamsHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if _, err := h.store.GetTeam(r.Context(), teamID); err != nil {
		writeStoreError(w, err)
		return
	}

	players, err := h.store.ListPlayers(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if players == nil {
		players = []repository.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

type createGameRequest struct {
	Opponent string `json:"opponent"`
	PlayedAt string `json:"played_at"`
}

func (g createGameRequest) validate() error {
	if strings.TrimSpace(g.Opponent) == "" {
		return errors.New("missing opponent")
	}
	if g.PlayedAt != "" {
		if _, err := time.Parse(time.RFC3339, g.PlayedAt); err != nil {
			return errors.New("invalid played_at; must be RFC3339")
		}
	}
	return nil
}

// HandleCreateGame handles POST /v1/teams/{teamID}/games requests. The
// game locks in the team's current court level so the team can move up
// a division without reclassifying its history.
func (h *TeamsHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	team, err := h.store.GetTeam(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	playedAt := time.Now().UTC()
	if req.PlayedAt != "" {
		playedAt, _ = time.Parse(time.RFC3339, req.PlayedAt)
	}

	game := repository.Game{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		Opponent: strings.TrimSpace(req.Opponent),
		PlayedAt: playedAt,
		Level:    team.Level,
	}
	if err := h.store.CreateGame(r.Context(), game); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// HandleListGames handles GET /v1/teams/{teamID}/games requests.
func (h *TeamsHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if _, err := h.store.GetTeam(r.Context(), teamID); err != nil {
		writeStoreError(w, err)
		return
	}

	games, err := h.store.ListGames(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if games == nil {
		games = []repository.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleGetGame handles GET /v1/games/{gameID} requests.
func (h *TeamsHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}
