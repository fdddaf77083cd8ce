package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openhoops/shotchart/internal/adapters/repository"
)

// LiveHandler upgrades spectators onto the live shot feed.
type LiveHandler struct {
	store repository.Store
	hub   LiveHub
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(store repository.Store, hub LiveHub) *LiveHandler {
	return &LiveHandler{store: store, hub: hub}
}

// HandleLive handles GET /v1/games/{gameID}/live requests. The game is
// checked before the upgrade so unknown ids answer 404 over plain HTTP.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeStoreError(w, err)
		return
	}

	// Subscribe owns the handshake and writes its own upgrade errors.
	// It blocks until the spectator disconnects.
	_ = h.hub.Subscribe(w, r, gameID)
}
