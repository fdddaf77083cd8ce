package court

import "math"

// Zone is a named scoring region used for theming and heatmaps. Zones are
// never stored on shots; they are recomputed from position and spec.
type Zone string

// Scoring zones.
const (
	ZoneRestricted  Zone = "restricted"
	ZonePaint       Zone = "paint"
	ZoneMidRange    Zone = "midrange"
	ZoneCorner3     Zone = "corner3"
	ZoneAboveBreak3 Zone = "abovebreak3"
	ZoneDeep        Zone = "deep"
)

// Zones lists every zone, front-most first.
var Zones = [...]Zone{
	ZoneRestricted,
	ZonePaint,
	ZoneMidRange,
	ZoneCorner3,
	ZoneAboveBreak3,
	ZoneDeep,
}

func (z Zone) String() string { return string(z) }

// Zone region constants in feet. The above-break region extends the arc
// radius by a fixed margin; the restricted area is the circle at the rim.
const (
	aboveBreakExtendFt = 4.0
	restrictedFt       = 4.0
)

// ZoneFill pairs a zone with one fillable region. Regions overlap; the
// paint order resolves the overlaps.
type ZoneFill struct {
	Zone  Zone `json:"zone"`
	Shape Path `json:"shape"`
}

// ZoneFills returns the zone regions for a spec in back-to-front paint
// order. Later fills cover earlier ones, which is what carves "inside X
// but outside Y" shapes without boolean subtraction; render surfaces must
// preserve the order.
func ZoneFills(spec Spec) []ZoneFill {
	laneLeft := BasketXFt - spec.KeyWidthFt/2

	return []ZoneFill{
		{Zone: ZoneDeep, Shape: Path{Kind: KindRect, W: WidthFt, H: DepthFt}},
		{Zone: ZoneAboveBreak3, Shape: Path{
			Kind: KindCircle, CX: BasketXFt, CY: spec.BasketCenterFt,
			R: spec.ThreePointArcFt + aboveBreakExtendFt,
		}},
		{Zone: ZoneCorner3, Shape: Path{Kind: KindRect, W: spec.CornerWidthFt, H: cornerZoneHeight(spec)}},
		{Zone: ZoneCorner3, Shape: Path{
			Kind: KindRect, X1: WidthFt - spec.CornerWidthFt,
			W: spec.CornerWidthFt, H: cornerZoneHeight(spec),
		}},
		{Zone: ZoneMidRange, Shape: Path{
			Kind: KindCircle, CX: BasketXFt, CY: spec.BasketCenterFt, R: spec.ThreePointArcFt,
		}},
		{Zone: ZonePaint, Shape: Path{
			Kind: KindRect, X1: laneLeft, W: spec.KeyWidthFt, H: spec.FreeThrowLineFt,
		}},
		{Zone: ZoneRestricted, Shape: Path{
			Kind: KindCircle, CX: BasketXFt, CY: spec.BasketCenterFt, R: restrictedFt,
		}},
	}
}

// cornerZoneHeight is the y where the extended arc crosses the corner
// line; the corner strips stop there so the above-break region takes over.
func cornerZoneHeight(spec Spec) float64 {
	r := spec.ThreePointArcFt + aboveBreakExtendFt
	dx := BasketXFt - spec.CornerWidthFt
	if r <= dx {
		return spec.BasketCenterFt
	}
	return spec.BasketCenterFt + math.Sqrt(r*r-dx*dx)
}

// ScaledZoneFills returns the zone regions mapped into pixel space, same
// order as ZoneFills.
func ScaledZoneFills(spec Spec, c Canvas) []ZoneFill {
	fills := ZoneFills(spec)
	out := make([]ZoneFill, len(fills))
	for i, f := range fills {
		out[i] = ZoneFill{Zone: f.Zone, Shape: f.Shape.Scale(c)}
	}
	return out
}

// ZoneFor resolves the zone a normalized position falls in. The position
// is folded onto the right half first so mirrored taps resolve to the
// same zone. Resolution walks the fills front-to-back (reverse paint
// order), so a point on a boundary lands in the zone a viewer sees
// painted there.
func ZoneFor(p Position, spec Spec) Zone {
	fills := ZoneFills(spec)
	xFt := p.FoldX() * WidthFt
	yFt := p.FeetY()
	for i := len(fills) - 1; i >= 0; i-- {
		if fills[i].Shape.contains(xFt, yFt) {
			return fills[i].Zone
		}
	}
	return ZoneDeep
}

// contains tests feet-space membership for rect and circle shapes.
func (p Path) contains(xFt, yFt float64) bool {
	switch p.Kind {
	case KindRect:
		return xFt >= p.X1 && xFt <= p.X1+p.W && yFt >= p.Y1 && yFt <= p.Y1+p.H
	case KindCircle:
		return math.Hypot(xFt-p.CX, yFt-p.CY) <= p.R
	default:
		return false
	}
}

// Theme assigns fill colors to zones for themed chart rendering.
type Theme map[Zone]string

// DefaultTheme is the palette used by the bundled chart renderers.
func DefaultTheme() Theme {
	return Theme{
		ZoneDeep:        "#f3f4f6",
		ZoneAboveBreak3: "#bfdbfe",
		ZoneCorner3:     "#93c5fd",
		ZoneMidRange:    "#fde68a",
		ZonePaint:       "#fca5a5",
		ZoneRestricted:  "#f87171",
	}
}

// MonoTheme is a grayscale palette for print-friendly charts.
func MonoTheme() Theme {
	return Theme{
		ZoneDeep:        "#ffffff",
		ZoneAboveBreak3: "#f5f5f5",
		ZoneCorner3:     "#ededed",
		ZoneMidRange:    "#e0e0e0",
		ZonePaint:       "#d1d1d1",
		ZoneRestricted:  "#bfbfbf",
	}
}

// ThemeByName resolves a named palette. Unknown names get the default.
func ThemeByName(name string) Theme {
	if name == "mono" {
		return MonoTheme()
	}
	return DefaultTheme()
}

// Color returns the theme color for a zone, falling back to the deep
// zone's color for unknown zones.
func (t Theme) Color(z Zone) string {
	if c, ok := t[z]; ok {
		return c
	}
	return t[ZoneDeep]
}
