// Package court models the half-court used for shot classification and
// chart rendering. All geometry is closed-form math over a fixed 50x47 ft
// half court; functions here are pure, hold no state, and are safe to call
// concurrently from tap handlers and render paths alike.
package court

import (
	"fmt"
	"strings"
)

// Half-court dimensions in feet. Normalized positions map onto this frame
// with (0,0) at the left end of the baseline and the basket near y=0.
const (
	WidthFt = 50.0
	DepthFt = 47.0

	// BasketXFt is the horizontal center of the court; the basket always
	// sits on this axis.
	BasketXFt = WidthFt / 2

	// BasketYFt is the standard basket distance from the baseline. Every
	// supported rule set places the basket here.
	BasketYFt = 5.25
)

// Level identifies a rule set. Court markings differ between levels, so the
// level picks which Spec the classifier and renderer run against.
type Level string

// Supported levels of play.
const (
	HighSchool Level = "highschool"
	College    Level = "college"
	NBA        Level = "nba"
)

// ParseLevel maps a user-supplied string onto a Level.
// Accepts a few common spellings (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "highschool", "high-school", "high_school", "hs":
		return HighSchool, nil
	case "college", "ncaa":
		return College, nil
	case "nba", "pro":
		return NBA, nil
	default:
		return "", fmt.Errorf("unknown court level: %q", s)
	}
}

// Valid reports whether l is one of the supported levels.
func (l Level) Valid() bool {
	switch l {
	case HighSchool, College, NBA:
		return true
	}
	return false
}

func (l Level) String() string { return string(l) }

// Spec carries the per-level court constants, all in feet. Values are
// tabulated rather than derived; the corner distance in particular encodes
// rule-book geometry that cannot be recomputed from the arc radius (high
// school reuses the arc radius so the corner and arc thresholds agree).
type Spec struct {
	KeyWidthFt      float64 `json:"key_width_ft"`
	ThreePointArcFt float64 `json:"three_point_arc_ft"`
	CornerWidthFt   float64 `json:"corner_width_ft"`
	CornerDistFt    float64 `json:"corner_dist_ft"`
	FreeThrowLineFt float64 `json:"free_throw_line_ft"`
	BasketCenterFt  float64 `json:"basket_center_ft"`
}

var specs = map[Level]Spec{
	HighSchool: {
		KeyWidthFt:      12,
		ThreePointArcFt: 19.75,
		CornerWidthFt:   3,
		CornerDistFt:    19.75,
		FreeThrowLineFt: 19,
		BasketCenterFt:  BasketYFt,
	},
	College: {
		KeyWidthFt:      12,
		ThreePointArcFt: 22.146,
		CornerWidthFt:   3,
		CornerDistFt:    21.65,
		FreeThrowLineFt: 19,
		BasketCenterFt:  BasketYFt,
	},
	NBA: {
		KeyWidthFt:      16,
		ThreePointArcFt: 23.75,
		CornerWidthFt:   3,
		CornerDistFt:    22.0,
		FreeThrowLineFt: 19,
		BasketCenterFt:  BasketYFt,
	},
}

// SpecFor returns the constants for a level. Unknown levels fall back to
// the high-school court, the application default.
func SpecFor(l Level) Spec {
	if s, ok := specs[l]; ok {
		return s
	}
	return specs[HighSchool]
}

// Position is a tap location normalized to [0,1] on both axes. X*50 and
// Y*47 convert it to feet from the top-left of the half court.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FeetX returns the horizontal position in feet.
func (p Position) FeetX() float64 { return p.X * WidthFt }

// FeetY returns the vertical position in feet from the baseline.
func (p Position) FeetY() float64 { return p.Y * DepthFt }

// Mirror reflects the position across the court's vertical center line.
func (p Position) Mirror() Position { return Position{X: 1 - p.X, Y: p.Y} }

// FoldX returns the horizontal coordinate reflected onto the right half
// of the court. For x in [0.5,1] the subtraction 1-x is exact and folding
// its result lands back on the same bits, so a position and its Mirror
// always fold to an identical coordinate. Classification and zone lookup
// run on the folded value; computing them from raw x would let rounding
// in 1-x flip a sideline-boundary tap across the corner threshold on one
// side only.
func (p Position) FoldX() float64 {
	if m := 1 - p.X; m > p.X {
		return m
	}
	return p.X
}
