package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/dedupe"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// ShotDependencies defines what shot ingest needs: the idempotency
// tracker and the pipeline enqueue.
type ShotDependencies interface {
	dedupe.Tracker
	Enqueue(ctx context.Context, ev model.ShotEvent) bool
}

// ShotsHandler records and reads a game's shots and substitutions.
type ShotsHandler struct {
	store    repository.Store
	deps     ShotDependencies
	maxLimit int
}

// NewShotsHandler creates a new shots handler.
func NewShotsHandler(store repository.Store, deps ShotDependencies, maxLimit int) *ShotsHandler {
	return &ShotsHandler{store: store, deps: deps, maxLimit: maxLimit}
}

// shotRequest mirrors the OpenAPI schema for POST shots.
type shotRequest struct {
	EventID  string  `json:"event_id"`
	PlayerID string  `json:"player_id"`
	Quarter  int     `json:"quarter"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Made     bool    `json:"made"`
	Layup    *bool   `json:"layup,omitempty"`
	TS       string  `json:"ts,omitempty"`
}

func (e shotRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.PlayerID) == "":
		return errors.New("missing player_id")
	case e.Quarter < 1:
		return errors.New("quarter must be positive")
	case e.X < 0 || e.X > 1:
		return errors.New("x must be within [0,1]")
	case e.Y < 0 || e.Y > 1:
		return errors.New("y must be within [0,1]")
	}
	if e.TS != "" {
		if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// event converts a validated request into the queue payload.
func (e shotRequest) event(gameID string) model.ShotEvent {
	ev := model.ShotEvent{
		EventID:  e.EventID,
		GameID:   gameID,
		PlayerID: e.PlayerID,
		Quarter:  e.Quarter,
		Pos:      court.Position{X: e.X, Y: e.Y},
		Made:     e.Made,
	}
	if e.Layup != nil {
		ev.Layup = *e.Layup
		ev.LayupSet = true
	}
	if e.TS != "" {
		ev.TS, _ = time.Parse(time.RFC3339, e.TS)
	}
	return ev
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleRecordShot handles POST /v1/games/{gameID}/shots requests.
func (h *ShotsHandler) HandleRecordShot(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req shotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Mark seen before enqueueing so concurrent replays of the same
	// offline sync entry collapse to one accepted event.
	// Accepted and duplicate counters are recorded by deps, not here.
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.event(gameID)); !ok {
		// Roll back the seen mark so the client can retry this event id.
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	metrics.UpdateDedupeSize(int(h.deps.Size()))
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// parseShotFilter compiles list query parameters into a store filter.
func parseShotFilter(q url.Values) (repository.ShotFilter, error) {
	var f repository.ShotFilter
	f.PlayerID = q.Get("player")
	if s := q.Get("quarter"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return f, errors.New("invalid quarter")
		}
		f.Quarter = n
	}
	if s := q.Get("type"); s != "" {
		st, err := court.ParseShotType(s)
		if err != nil {
			return f, err
		}
		f.Type = st
	}
	if s := q.Get("made"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, errors.New("invalid made flag")
		}
		f.Made = &b
	}
	return f, nil
}

// HandleListShots handles GET /v1/games/{gameID}/shots requests.
func (h *ShotsHandler) HandleListShots(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeStoreError(w, err)
		return
	}

	filter, err := parseShotFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	limit := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}

	shots, err := h.store.ListShots(r.Context(), gameID, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(shots) > limit {
		shots = shots[:limit]
	}
	if shots == nil {
		shots = []model.LiveShot{}
	}
	writeJSON(w, http.StatusOK, shots)
}

// HandleDeleteShot handles DELETE /v1/games/{gameID}/shots/{shotID}
// requests, the undo affordance for a mistapped shot.
func (h *ShotsHandler) HandleDeleteShot(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	shotID := chi.URLParam(r, "shotID")
	if err := h.store.DeleteShot(r.Context(), gameID, shotID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subRequest struct {
	PlayerIn  string `json:"player_in"`
	PlayerOut string `json:"player_out"`
	Quarter   int    `json:"quarter"`
}

func (s subRequest) validate() error {
	switch {
	case strings.TrimSpace(s.PlayerIn) == "":
		return errors.New("missing player_in")
	case strings.TrimSpace(s.PlayerOut) == "":
		return errors.New("missing player_out")
	case s.PlayerIn == s.PlayerOut:
		return errors.New("player_in and player_out must differ")
	case s.Quarter < 1:
		return errors.New("quarter must be positive")
	}
	return nil
}

// HandleRecordSub handles POST /v1/games/{gameID}/subs requests.
func (h *ShotsHandler) HandleRecordSub(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req subRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sub := repository.Substitution{
		ID:        uuid.NewString(),
		GameID:    gameID,
		PlayerIn:  req.PlayerIn,
		PlayerOut: req.PlayerOut,
		Quarter:   req.Quarter,
		TS:        time.Now().UTC(),
	}
	if err := h.store.InsertSubstitution(r.Context(), sub); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// HandleListSubs handles GET /v1/games/{gameID}/subs requests.
func (h *ShotsHandler) HandleListSubs(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeStoreError(w, err)
		return
	}

	subs, err := h.store.ListSubstitutions(r.Context(), gameID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if subs == nil {
		subs = []repository.Substitution{}
	}
	writeJSON(w, http.StatusOK, subs)
}
