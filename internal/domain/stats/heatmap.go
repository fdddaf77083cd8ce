package stats

import "github.com/openhoops/shotchart/internal/domain/model"

// Heatmap grid bounds. Requests outside these are clamped rather than
// rejected so sliders on the client can be sloppy.
const (
	MinGrid = 2
	MaxGrid = 50

	DefaultCols = 10
	DefaultRows = 10
)

// HeatCell is one grid bin. Intensity is the cell's attempt count
// normalized against the busiest cell, 0 when the chart is empty.
type HeatCell struct {
	Col       int     `json:"col"`
	Row       int     `json:"row"`
	Attempts  int     `json:"attempts"`
	Makes     int     `json:"makes"`
	Intensity float64 `json:"intensity"`
}

// Heatmap is a dense row-major grid over the normalized half court.
type Heatmap struct {
	Cols  int        `json:"cols"`
	Rows  int        `json:"rows"`
	Cells []HeatCell `json:"cells"`
}

// ComputeHeatmap bins shots into a cols x rows grid. Free throws are
// included; they cluster at the line, which is what a tap heatmap should
// show. Positions outside [0,1] clamp into the edge cells.
func ComputeHeatmap(shots []model.LiveShot, cols, rows int) Heatmap {
	cols = clampGrid(cols, DefaultCols)
	rows = clampGrid(rows, DefaultRows)

	hm := Heatmap{Cols: cols, Rows: rows, Cells: make([]HeatCell, cols*rows)}
	for i := range hm.Cells {
		hm.Cells[i].Col = i % cols
		hm.Cells[i].Row = i / cols
	}

	maxAttempts := 0
	for _, s := range shots {
		col := binIndex(s.Pos.X, cols)
		row := binIndex(s.Pos.Y, rows)
		cell := &hm.Cells[row*cols+col]
		cell.Attempts++
		if s.Made {
			cell.Makes++
		}
		if cell.Attempts > maxAttempts {
			maxAttempts = cell.Attempts
		}
	}

	if maxAttempts > 0 {
		for i := range hm.Cells {
			hm.Cells[i].Intensity = float64(hm.Cells[i].Attempts) / float64(maxAttempts)
		}
	}
	return hm
}

func clampGrid(n, def int) int {
	switch {
	case n == 0:
		return def
	case n < MinGrid:
		return MinGrid
	case n > MaxGrid:
		return MaxGrid
	}
	return n
}

func binIndex(v float64, n int) int {
	idx := int(v * float64(n))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
