// Package pdfreport renders post-game reports as PDF documents: a shot
// chart page followed by a box score page. Output goes straight to the
// caller's writer.
package pdfreport

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/internal/domain/stats"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Page layout in millimeters on A4 portrait.
const (
	marginMm     = 15.0
	courtWidthMm = 180.0
)

// Marker dimensions in feet, matching the SVG chart.
const (
	markerRadiusFt = 0.6
	crossArmFt     = 0.5
)

// GameInfo carries the header fields for a report. PlayerNames maps
// player IDs to display names; IDs without an entry print as-is.
type GameInfo struct {
	Opponent    string
	Level       court.Level
	PlayedAt    time.Time
	PlayerNames map[string]string
}

// Report renders game reports. A Report holds only its options and is
// safe for concurrent use.
type Report struct {
	theme court.Theme
}

// New builds a Report with the default theme.
func New(opts ...Option) *Report {
	r := &Report{
		theme: court.DefaultTheme(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the full report for one game: the themed shot chart on
// page one, team, player, quarter, and zone lines on page two.
func (r *Report) Render(w io.Writer, info GameInfo, shots []model.LiveShot) error {
	start := time.Now()
	sum := stats.Compute(shots)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shot chart report", false)
	pdf.SetMargins(marginMm, marginMm, marginMm)

	r.chartPage(pdf, info, shots)
	r.statsPage(pdf, info, sum)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	metrics.RecordChartRendered("pdf")
	metrics.RecordRenderLatency("pdf", float64(time.Since(start).Milliseconds()))
	return nil
}

func (r *Report) chartPage(pdf *fpdf.Fpdf, info GameInfo, shots []model.LiveShot) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, title(info), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, subtitle(info), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	oy := pdf.GetY() + 4
	c := court.Canvas{Width: courtWidthMm, Height: courtWidthMm * court.DepthFt / court.WidthFt}

	r.drawCourt(pdf, marginMm, oy, c, court.SpecFor(info.Level))
	drawShots(pdf, marginMm, oy, c, shots)
	legend(pdf, marginMm, oy+c.Height+6)
}

func title(info GameInfo) string {
	if info.Opponent != "" {
		return "Shot chart vs " + info.Opponent
	}
	return "Shot chart"
}

func subtitle(info GameInfo) string {
	s := court.SpecFor(info.Level)
	out := fmt.Sprintf("%s court, %.2f ft arc", info.Level, s.ThreePointArcFt)
	if !info.PlayedAt.IsZero() {
		out += ", " + info.PlayedAt.Format("Jan 2, 2006")
	}
	return out
}

func (r *Report) drawCourt(pdf *fpdf.Fpdf, ox, oy float64, c court.Canvas, spec court.Spec) {
	// Zone discs extend past the court rectangle; the page does not clip
	// for free the way an SVG viewport does.
	pdf.ClipRect(ox, oy, c.Width, c.Height, false)
	for _, f := range court.ScaledZoneFills(spec, c) {
		pdf.SetFillColor(rgb(r.theme.Color(f.Zone)))
		fillShape(pdf, ox, oy, f.Shape)
	}
	pdf.ClipEnd()

	pdf.SetDrawColor(31, 41, 55)
	pdf.SetLineWidth(0.4)
	for _, p := range court.ScaledLines(spec, c) {
		strokeShape(pdf, ox, oy, p)
	}
}

func fillShape(pdf *fpdf.Fpdf, ox, oy float64, p court.Path) {
	switch p.Kind {
	case court.KindRect:
		pdf.Rect(ox+p.X1, oy+p.Y1, p.W, p.H, "F")
	case court.KindCircle:
		pdf.Circle(ox+p.CX, oy+p.CY, p.R, "F")
	}
}

func strokeShape(pdf *fpdf.Fpdf, ox, oy float64, p court.Path) {
	switch p.Kind {
	case court.KindLine:
		pdf.Line(ox+p.X1, oy+p.Y1, ox+p.X2, oy+p.Y2)
	case court.KindRect:
		pdf.Rect(ox+p.X1, oy+p.Y1, p.W, p.H, "D")
	case court.KindCircle:
		pdf.Circle(ox+p.CX, oy+p.CY, p.R, "D")
	case court.KindArc:
		// fpdf measures arc angles counter-clockwise in a y-up frame;
		// court angles sweep the other way in a y-down frame, so the
		// bounds negate and swap.
		pdf.Arc(ox+p.CX, oy+p.CY, p.R, p.R, 0, -deg(p.End), -deg(p.Start), "D")
	}
}

func deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func drawShots(pdf *fpdf.Fpdf, ox, oy float64, c court.Canvas, shots []model.LiveShot) {
	for _, s := range shots {
		x, y := c.Point(s.Pos.FeetX(), s.Pos.FeetY())
		x += ox
		y += oy
		if s.Made {
			pdf.SetFillColor(22, 163, 74)
			pdf.Circle(x, y, c.ScaleX(markerRadiusFt), "F")
			continue
		}
		arm := c.ScaleX(crossArmFt)
		pdf.SetDrawColor(220, 38, 38)
		pdf.SetLineWidth(0.5)
		pdf.Line(x-arm, y-arm, x+arm, y+arm)
		pdf.Line(x-arm, y+arm, x+arm, y-arm)
	}
}

func legend(pdf *fpdf.Fpdf, x, y float64) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFillColor(22, 163, 74)
	pdf.Circle(x+2, y+2, 1.5, "F")
	pdf.SetXY(x+5, y)
	pdf.CellFormat(18, 4, "made", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(220, 38, 38)
	pdf.SetLineWidth(0.5)
	pdf.Line(x+28, y+0.5, x+31, y+3.5)
	pdf.Line(x+28, y+3.5, x+31, y+0.5)
	pdf.SetXY(x+34, y)
	pdf.CellFormat(18, 4, "missed", "", 0, "L", false, 0, "")
}

// row is one line of a stat table.
type row struct {
	label string
	line  stats.Line
}

// lineCols define the stat table layout; widths sum to the content
// width inside the margins.
var lineCols = []struct {
	title string
	width float64
}{
	{"", 46},
	{"FG", 24},
	{"3PT", 24},
	{"FT", 24},
	{"PTS", 14},
	{"FG%", 16},
	{"eFG%", 16},
	{"Layups", 16},
}

func (r *Report) statsPage(pdf *fpdf.Fpdf, info GameInfo, sum stats.Summary) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Box score", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	lineTable(pdf, "Team", []row{{label: "Total", line: sum.Team}})

	players := make([]row, 0, len(sum.Players))
	for _, p := range sum.Players {
		players = append(players, row{label: playerLabel(info, p.PlayerID), line: p.Line})
	}
	lineTable(pdf, "Players", players)

	quarters := make([]row, 0, len(sum.Quarters))
	for _, q := range sum.Quarters {
		quarters = append(quarters, row{label: q.Label, line: q.Line})
	}
	lineTable(pdf, "Quarters", quarters)

	zones := make([]row, 0, len(sum.Zones))
	for _, z := range sum.Zones {
		zones = append(zones, row{label: z.Zone.String(), line: z.Line})
	}
	lineTable(pdf, "Zones", zones)
}

func lineTable(pdf *fpdf.Fpdf, caption string, rows []row) {
	if len(rows) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, caption, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(243, 244, 246)
	for _, col := range lineCols {
		pdf.CellFormat(col.width, 6, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, rw := range rows {
		l := rw.line
		cells := []string{
			rw.label,
			fmt.Sprintf("%d-%d", l.FGM, l.FGA),
			fmt.Sprintf("%d-%d", l.TPM, l.TPA),
			fmt.Sprintf("%d-%d", l.FTM, l.FTA),
			strconv.Itoa(l.Points),
			pctCell(l.FGPct),
			pctCell(l.EFGPct),
			fmt.Sprintf("%d-%d", l.LayupM, l.LayupA),
		}
		for i, cell := range cells {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(lineCols[i].width, 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func pctCell(pct float64) string {
	return fmt.Sprintf("%.1f", pct*100)
}

func playerLabel(info GameInfo, id string) string {
	if name, ok := info.PlayerNames[id]; ok && name != "" {
		return name
	}
	return id
}

// rgb splits a #rrggbb color into fpdf's channel triple.
func rgb(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
