// Package svgchart renders shot charts as standalone SVG documents.
// Rendering is pure: the court package supplies the geometry, shots come
// from the caller, and the output is deterministic for a given input.
package svgchart

import (
	"fmt"
	"io"
	"math"
	"time"

	svg "github.com/ajstarks/svgo/float"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// defaultWidthPx is the canvas width when the caller does not pick one.
// Height always follows from the court's aspect ratio so circles stay
// round.
const defaultWidthPx = 800

// Marker dimensions in feet, so markers scale with the canvas.
const (
	markerRadiusFt = 0.6
	crossArmFt     = 0.5
)

const (
	lineColor = "#1f2937"
	madeColor = "#16a34a"
	missColor = "#dc2626"
)

// Renderer draws shot charts. A Renderer holds only its options and is
// safe for concurrent use.
type Renderer struct {
	width float64
	theme court.Theme
}

// New builds a Renderer with the default canvas width and theme.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		width: defaultWidthPx,
		theme: court.DefaultTheme(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chart writes a complete SVG shot chart for the given level. Shots are
// drawn in input order, made attempts as filled dots and misses as
// crosses, on top of the themed zone fills and court markings.
func (r *Renderer) Chart(w io.Writer, level court.Level, shots []model.LiveShot) error {
	start := time.Now()

	// svgo swallows writer errors, so intercept them here and report the
	// first one after the document is flushed.
	ew := &errWriter{w: w}

	spec := court.SpecFor(level)
	c := court.Canvas{Width: r.width, Height: r.width * court.DepthFt / court.WidthFt}

	canvas := svg.New(ew)
	canvas.Start(c.Width, c.Height)
	canvas.Title("Shot chart")

	canvas.Gid("zones")
	for _, f := range court.ScaledZoneFills(spec, c) {
		r.fill(canvas, f.Shape, r.theme.Color(f.Zone))
	}
	canvas.Gend()

	canvas.Gid("court")
	for _, p := range court.ScaledLines(spec, c) {
		r.stroke(canvas, p)
	}
	canvas.Gend()

	canvas.Gid("shots")
	for _, s := range shots {
		r.marker(canvas, c, s)
	}
	canvas.Gend()

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("writing chart: %w", ew.err)
	}

	metrics.RecordChartRendered("svg")
	metrics.RecordRenderLatency("svg", float64(time.Since(start).Milliseconds()))
	return nil
}

// fill paints one zone region. The canvas viewport clips regions that
// extend past the court, which is what carves the above-break disc down
// to the visible wedge.
func (r *Renderer) fill(canvas *svg.SVG, p court.Path, color string) {
	style := fmt.Sprintf("fill:%s;stroke:none", color)
	switch p.Kind {
	case court.KindRect:
		canvas.Rect(p.X1, p.Y1, p.W, p.H, style)
	case court.KindCircle:
		canvas.Circle(p.CX, p.CY, p.R, style)
	}
}

func (r *Renderer) stroke(canvas *svg.SVG, p court.Path) {
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", lineColor, r.strokeWidth())
	switch p.Kind {
	case court.KindLine:
		canvas.Line(p.X1, p.Y1, p.X2, p.Y2, style)
	case court.KindRect:
		canvas.Rect(p.X1, p.Y1, p.W, p.H, style)
	case court.KindCircle:
		canvas.Circle(p.CX, p.CY, p.R, style)
	case court.KindArc:
		canvas.Path(arcPath(p), style)
	}
}

func (r *Renderer) marker(canvas *svg.SVG, c court.Canvas, s model.LiveShot) {
	x, y := c.Point(s.Pos.FeetX(), s.Pos.FeetY())
	if s.Made {
		canvas.Circle(x, y, c.ScaleX(markerRadiusFt), fmt.Sprintf("fill:%s;stroke:none", madeColor))
		return
	}
	arm := c.ScaleX(crossArmFt)
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", missColor, r.strokeWidth())
	canvas.Line(x-arm, y-arm, x+arm, y+arm, style)
	canvas.Line(x-arm, y+arm, x+arm, y-arm, style)
}

// strokeWidth keeps line weight proportional to the canvas, two pixels
// at the default width.
func (r *Renderer) strokeWidth() float64 {
	return r.width / 400
}

// arcPath converts an arc primitive to an SVG path. Arc angles sweep by
// increasing value in the screen frame, which is SVG's positive sweep
// direction.
func arcPath(p court.Path) string {
	x1, y1 := p.ArcPoint(p.Start)
	x2, y2 := p.ArcPoint(p.End)
	large := 0
	if p.End-p.Start > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d,1 %.2f,%.2f", x1, y1, p.R, p.R, large, x2, y2)
}

// errWriter passes writes through and remembers the first failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
