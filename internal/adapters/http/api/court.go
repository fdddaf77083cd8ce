package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openhoops/shotchart/internal/domain/court"
)

// CourtHandler serves the drawing contract that client render surfaces
// consume: markings and zone regions per court level.
type CourtHandler struct{}

// NewCourtHandler creates a new court handler.
func NewCourtHandler() *CourtHandler {
	return &CourtHandler{}
}

type courtLinesResponse struct {
	Level  court.Level  `json:"level"`
	Spec   court.Spec   `json:"spec"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Paths  []court.Path `json:"paths"`
}

// HandleLines handles GET /v1/court/{level}/lines requests. Without
// width and height the primitives come back in feet; with them, scaled
// into the requested pixel frame.
func (h *CourtHandler) HandleLines(w http.ResponseWriter, r *http.Request) {
	level, err := court.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	spec := court.SpecFor(level)

	width, err := parseDimension(r.URL.Query().Get("width"), court.WidthFt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	height, err := parseDimension(r.URL.Query().Get("height"), width*court.DepthFt/court.WidthFt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	c := court.Canvas{Width: width, Height: height}
	writeJSON(w, http.StatusOK, courtLinesResponse{
		Level:  level,
		Spec:   spec,
		Width:  width,
		Height: height,
		Paths:  court.ScaledLines(spec, c),
	})
}

type courtZonesResponse struct {
	Level court.Level      `json:"level"`
	Spec  court.Spec       `json:"spec"`
	Theme court.Theme      `json:"theme"`
	Fills []court.ZoneFill `json:"fills"`
}

// HandleZones handles GET /v1/court/{level}/zones requests. Fills are
// in feet and must be painted in order; the theme maps each zone to its
// fill color.
func (h *CourtHandler) HandleZones(w http.ResponseWriter, r *http.Request) {
	level, err := court.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	spec := court.SpecFor(level)

	writeJSON(w, http.StatusOK, courtZonesResponse{
		Level: level,
		Spec:  spec,
		Theme: court.ThemeByName(r.URL.Query().Get("theme")),
		Fills: court.ZoneFills(spec),
	})
}

func parseDimension(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid dimension")
	}
	return v, nil
}
