package court

import "math"

// Kind discriminates drawing primitives.
type Kind string

// Primitive kinds.
const (
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindArc    Kind = "arc"
)

// Element names the court marking a primitive belongs to, so render
// surfaces can style markings independently.
type Element string

// Court markings.
const (
	ElementBoundary        Element = "boundary"
	ElementLane            Element = "lane"
	ElementBackboard       Element = "backboard"
	ElementRim             Element = "rim"
	ElementFreeThrowCircle Element = "free_throw_circle"
	ElementLaneHash        Element = "lane_hash"
	ElementBlock           Element = "block"
	ElementThreePoint      Element = "three_point"
	ElementCenterCircle    Element = "center_circle"
)

// Path is one drawable primitive. Coordinates are in feet until scaled
// through a Canvas. Only the fields for the primitive's Kind are set:
// lines use (X1,Y1)-(X2,Y2), rects use (X1,Y1) plus W and H, circles use
// the center and R, arcs add Start and End angles in radians measured in
// the screen frame (x right, y down, sweep by increasing angle).
type Path struct {
	Kind    Kind    `json:"kind"`
	Element Element `json:"element,omitempty"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	CX      float64 `json:"cx"`
	CY      float64 `json:"cy"`
	R       float64 `json:"r"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Fixed marking dimensions in feet. The per-level Spec carries only what
// varies between rule sets; these are shared by every court.
const (
	backboardYFt     = 4.0
	backboardWidthFt = 6.0
	rimRadiusFt      = 0.75
	circleRadiusFt   = 6.0
	blockYFt         = 7.0
	blockOutFt       = 0.7
	blockDepthFt     = 1.0
	hashLenFt        = 0.7
)

// laneHashYFt are the lane hash mark offsets from the baseline.
var laneHashYFt = [...]float64{7, 11, 14, 17}

// Lines returns the court markings for a spec as feet-space primitives in
// draw order.
func Lines(spec Spec) []Path {
	laneLeft := BasketXFt - spec.KeyWidthFt/2
	laneRight := BasketXFt + spec.KeyWidthFt/2

	paths := make([]Path, 0, 24)

	paths = append(paths,
		Path{Kind: KindRect, Element: ElementBoundary, W: WidthFt, H: DepthFt},
		Path{Kind: KindRect, Element: ElementLane, X1: laneLeft, W: spec.KeyWidthFt, H: spec.FreeThrowLineFt},
		Path{
			Kind: KindLine, Element: ElementBackboard,
			X1: BasketXFt - backboardWidthFt/2, Y1: backboardYFt,
			X2: BasketXFt + backboardWidthFt/2, Y2: backboardYFt,
		},
		Path{Kind: KindCircle, Element: ElementRim, CX: BasketXFt, CY: spec.BasketCenterFt, R: rimRadiusFt},
		// Free-throw semicircle opens away from the basket.
		Path{
			Kind: KindArc, Element: ElementFreeThrowCircle,
			CX: BasketXFt, CY: spec.FreeThrowLineFt, R: circleRadiusFt,
			Start: 0, End: math.Pi,
		},
	)

	for _, y := range laneHashYFt {
		paths = append(paths,
			Path{Kind: KindLine, Element: ElementLaneHash, X1: laneLeft - hashLenFt, Y1: y, X2: laneLeft, Y2: y},
			Path{Kind: KindLine, Element: ElementLaneHash, X1: laneRight, Y1: y, X2: laneRight + hashLenFt, Y2: y},
		)
	}

	paths = append(paths,
		Path{Kind: KindRect, Element: ElementBlock, X1: laneLeft - blockOutFt, Y1: blockYFt, W: blockOutFt, H: blockDepthFt},
		Path{Kind: KindRect, Element: ElementBlock, X1: laneRight, Y1: blockYFt, W: blockOutFt, H: blockDepthFt},
	)

	paths = append(paths, threePointLine(spec)...)

	// Half center circle at the far baseline, opening into the court.
	paths = append(paths, Path{
		Kind: KindArc, Element: ElementCenterCircle,
		CX: BasketXFt, CY: DepthFt, R: circleRadiusFt,
		Start: math.Pi, End: 2 * math.Pi,
	})

	return paths
}

// threePointLine picks the three-point construction by whether the arc
// radius reaches the corner line.
func threePointLine(spec Spec) []Path {
	if spec.ThreePointArcFt >= BasketXFt-spec.CornerWidthFt {
		return truncatedThree(spec)
	}
	return untruncatedThree(spec)
}

// truncatedThree draws corner verticals at the corner line up to where the
// arc crosses it, then the arc between the two crossings.
func truncatedThree(spec Spec) []Path {
	r := spec.ThreePointArcFt
	dx := BasketXFt - spec.CornerWidthFt
	yCut := spec.BasketCenterFt + math.Sqrt(r*r-dx*dx)
	start := math.Atan2(yCut-spec.BasketCenterFt, dx)

	return []Path{
		{Kind: KindLine, Element: ElementThreePoint, X1: spec.CornerWidthFt, X2: spec.CornerWidthFt, Y2: yCut},
		{Kind: KindLine, Element: ElementThreePoint, X1: WidthFt - spec.CornerWidthFt, X2: WidthFt - spec.CornerWidthFt, Y2: yCut},
		{
			Kind: KindArc, Element: ElementThreePoint,
			CX: BasketXFt, CY: spec.BasketCenterFt, R: r,
			Start: start, End: math.Pi - start,
		},
	}
}

// untruncatedThree draws verticals at the arc's own horizontal extent down
// to the basket level and closes them with a full semicircle. High school
// courts use this shape.
func untruncatedThree(spec Spec) []Path {
	r := spec.ThreePointArcFt

	return []Path{
		{Kind: KindLine, Element: ElementThreePoint, X1: BasketXFt - r, X2: BasketXFt - r, Y2: spec.BasketCenterFt},
		{Kind: KindLine, Element: ElementThreePoint, X1: BasketXFt + r, X2: BasketXFt + r, Y2: spec.BasketCenterFt},
		{
			Kind: KindArc, Element: ElementThreePoint,
			CX: BasketXFt, CY: spec.BasketCenterFt, R: r,
			Start: 0, End: math.Pi,
		},
	}
}

// Canvas is a pixel-space render target. Feet map linearly onto it; keep
// the aspect near 50:47 or circles render as ellipses since radii scale on
// the x axis only.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScaleX converts a horizontal feet measure to pixels.
func (c Canvas) ScaleX(ft float64) float64 { return ft / WidthFt * c.Width }

// ScaleY converts a vertical feet measure to pixels.
func (c Canvas) ScaleY(ft float64) float64 { return ft / DepthFt * c.Height }

// Point converts a feet-space point to pixel space.
func (c Canvas) Point(xFt, yFt float64) (float64, float64) {
	return c.ScaleX(xFt), c.ScaleY(yFt)
}

// Scale maps a feet-space primitive into pixel space.
func (p Path) Scale(c Canvas) Path {
	p.X1 = c.ScaleX(p.X1)
	p.X2 = c.ScaleX(p.X2)
	p.CX = c.ScaleX(p.CX)
	p.W = c.ScaleX(p.W)
	p.Y1 = c.ScaleY(p.Y1)
	p.Y2 = c.ScaleY(p.Y2)
	p.CY = c.ScaleY(p.CY)
	p.H = c.ScaleY(p.H)
	p.R = c.ScaleX(p.R)
	return p
}

// ScaledLines returns the court markings mapped into pixel space.
func ScaledLines(spec Spec, c Canvas) []Path {
	paths := Lines(spec)
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = p.Scale(c)
	}
	return out
}

// ArcPoint returns the point at the given angle on an arc or circle
// primitive, in the primitive's own coordinate space.
func (p Path) ArcPoint(angle float64) (float64, float64) {
	return p.CX + p.R*math.Cos(angle), p.CY + p.R*math.Sin(angle)
}
