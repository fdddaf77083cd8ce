package court

import (
	"fmt"
	"math"
	"strings"
)

// ShotType is the classification of an attempt.
type ShotType string

// Shot types.
const (
	TwoPointer   ShotType = "2PT"
	ThreePointer ShotType = "3PT"
	FreeThrow    ShotType = "FT"
)

// ParseShotType maps a user-supplied string onto a ShotType.
func ParseShotType(s string) (ShotType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2", "2PT", "TWO":
		return TwoPointer, nil
	case "3", "3PT", "THREE":
		return ThreePointer, nil
	case "FT", "1", "FREE", "FREETHROW", "FREE_THROW":
		return FreeThrow, nil
	default:
		return "", fmt.Errorf("unknown shot type: %q", s)
	}
}

// Valid reports whether t is one of the three shot types.
func (t ShotType) Valid() bool {
	switch t {
	case TwoPointer, ThreePointer, FreeThrow:
		return true
	}
	return false
}

// PointValue returns the points a made shot of this type is worth.
func (t ShotType) PointValue() int {
	switch t {
	case ThreePointer:
		return 3
	case FreeThrow:
		return 1
	default:
		return 2
	}
}

func (t ShotType) String() string { return string(t) }

// Classification tolerances, in feet. The free-throw box is 2 ft deep and
// 6 ft to either side of center (the lane half-width). The corner slack of
// 1 ft (0.02 of normalized width) keeps taps just inside the sideline in
// the corner zone. The line margins subtract roughly half a painted line
// so a tap on the line counts as the attempt the line represents, a three.
// These values carry an implicit tie-break policy; keep them as-is.
const (
	ftBoxHalfDepthFt = 2.0
	ftBoxHalfWidthFt = 6.0
	cornerSlackFt    = 1.0
	cornerLineFt     = 0.5
	arcLineFt        = 0.25
)

// Layup radii, in feet. Ingest auto-flags attempts inside LayupAutoFt and
// honors an explicit flag only inside LayupEligibleFt. Classification
// itself never sets the flag.
const (
	LayupAutoFt     = 5.0
	LayupEligibleFt = 8.0
)

// Classify maps a normalized tap position to a shot type under the given
// spec. The position is folded onto the right half first, so mirrored
// taps classify identically. The free-throw box is checked next and
// short-circuits the distance tests, so a tap at the line is never read
// as a long two. Corner membership depends on x alone; corner threes sit
// closer to the basket than the arc, so the corner threshold decides
// there. The function is total: out-of-range positions are not rejected.
func Classify(p Position, spec Spec) ShotType {
	xFt := p.FoldX() * WidthFt
	yFt := p.FeetY()

	if math.Abs(yFt-spec.FreeThrowLineFt) < ftBoxHalfDepthFt &&
		math.Abs(xFt-BasketXFt) < ftBoxHalfWidthFt {
		return FreeThrow
	}

	dist := math.Hypot(xFt-BasketXFt, yFt-spec.BasketCenterFt)

	inCorner := xFt > WidthFt-spec.CornerWidthFt-cornerSlackFt
	if inCorner {
		if dist > spec.CornerDistFt-cornerLineFt {
			return ThreePointer
		}
		return TwoPointer
	}

	if dist > spec.ThreePointArcFt-arcLineFt {
		return ThreePointer
	}
	return TwoPointer
}

// DistanceFromBasket returns the distance in feet from a normalized
// position to the basket. The basket sits at the standard spot regardless
// of level, so distances stay comparable across rule sets; callers use
// this for layup flagging and chart labels.
func DistanceFromBasket(x, y float64) float64 {
	return math.Hypot(x*WidthFt-BasketXFt, y*DepthFt-BasketYFt)
}
