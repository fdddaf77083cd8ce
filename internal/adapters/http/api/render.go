package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openhoops/shotchart/internal/adapters/render/pdfreport"
	"github.com/openhoops/shotchart/internal/adapters/render/svgchart"
	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
)

// RenderHandler serves the server-rendered chart formats. Output is
// buffered so render failures can still answer with an error status.
type RenderHandler struct {
	store      repository.Store
	chartWidth float64
}

// NewRenderHandler creates a new render handler.
func NewRenderHandler(store repository.Store, chartWidth float64) *RenderHandler {
	return &RenderHandler{store: store, chartWidth: chartWidth}
}

// HandleChartSVG handles GET /v1/games/{gameID}/chart.svg requests.
// Optional query parameters: player narrows to one shooter, width sets
// the pixel width, theme picks the palette.
func (h *RenderHandler) HandleChartSVG(w http.ResponseWriter, r *http.Request) {
	game, err := h.store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	width := h.chartWidth
	if s := r.URL.Query().Get("width"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		width = v
	}

	filter := repository.ShotFilter{PlayerID: r.URL.Query().Get("player")}
	shots, err := h.store.ListShots(r.Context(), game.ID, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	renderer := svgchart.New(
		svgchart.WithWidth(width),
		svgchart.WithTheme(court.ThemeByName(r.URL.Query().Get("theme"))),
	)
	var buf bytes.Buffer
	if err := renderer.Chart(&buf, game.Level, shots); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

// HandleReportPDF handles GET /v1/games/{gameID}/report.pdf requests.
func (h *RenderHandler) HandleReportPDF(w http.ResponseWriter, r *http.Request) {
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

	players, err := h.store.ListPlayers(r.Context(), game.TeamID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = fmt.Sprintf("#%d %s", p.Number, p.Name)
	}

	report := pdfreport.New(pdfreport.WithTheme(court.ThemeByName(r.URL.Query().Get("theme"))))
	info := pdfreport.GameInfo{
		Opponent:    game.Opponent,
		Level:       game.Level,
		PlayedAt:    game.PlayedAt,
		PlayerNames: names,
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, info, shots); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "shot-report-"+game.ID+".pdf"))
	_, _ = w.Write(buf.Bytes())
}
