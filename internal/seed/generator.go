package seed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	eventIDDivisor     = 10000
	shotMixDivisor     = 10
	quarterCount       = 4
)

// Shot mix cases. Rim attempts dominate, the way real charts look.
const (
	caseRimAttempt1 = 0
	caseRimAttempt2 = 1
	caseRimAttempt3 = 2
	casePaint1      = 3
	casePaint2      = 4
	caseMidRange1   = 5
	caseMidRange2   = 6
	caseCornerThree = 7
	caseArcThree    = 8
	caseFreeThrow   = 9
)

// Make probabilities per region.
const (
	rimMakePct       = 0.60
	paintMakePct     = 0.45
	midMakePct       = 0.40
	cornerMakePct    = 0.37
	arcMakePct       = 0.34
	freeThrowMakePct = 0.74
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateTaps creates the configured number of taps spread over the
// roster, with a realistic spatial mix for the game's court level.
func generateTaps(ctx context.Context, config *Config, playerIDs []string, stats *Stats) ([]Tap, error) {
	logger.Get().Info(ctx, "generating shot taps",
		logger.Int("numShots", config.NumShots),
		logger.Int("roster", len(playerIDs)),
		logger.String("level", config.Level))

	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("no players to attribute taps to")
	}

	level, err := court.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid level: %w", err)
	}
	spec := court.SpecFor(level)

	taps := make([]Tap, config.NumShots)

	type tapResult struct {
		index int
		tap   Tap
		err   error
	}

	resultChan := make(chan tapResult, config.NumShots)

	// Use worker pool for tap generation
	workerCount := minInt(config.Workers, config.NumShots)
	if workerCount < 1 {
		workerCount = 1
	}
	tapsPerWorker := config.NumShots / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * tapsPerWorker
		end := start + tapsPerWorker
		if worker == workerCount-1 {
			end = config.NumShots // Last worker gets remaining taps
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- tapResult{index: i, err: ctx.Err()}
					return
				default:
					tap := generateSingleTap(i, playerIDs[i%len(playerIDs)], spec)
					resultChan <- tapResult{index: i, tap: tap}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumShots; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during tap generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate tap %d: %w", result.index, result.err)
			}
			taps[result.index] = result.tap
		}
	}

	stats.TapsGenerated = len(taps)
	logger.Get().Info(ctx, "generated taps successfully", logger.Int("count", len(taps)))

	return taps, nil
}

// generateSingleTap creates one tap with the given index and player.
func generateSingleTap(index int, playerID string, spec court.Spec) Tap {
	xFt, yFt, makePct := generateTapPosition(spec)

	quarterRand, _ := rand.Int(rand.Reader, big.NewInt(quarterCount))
	randNum, _ := rand.Int(rand.Reader, big.NewInt(eventIDDivisor))
	eventID := "tap_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(randNum.Int64(), 10)

	return Tap{
		EventID:  eventID,
		PlayerID: playerID,
		Quarter:  int(quarterRand.Int64()) + 1,
		X:        clamp01(xFt / court.WidthFt),
		Y:        clamp01(yFt / court.DepthFt),
		Made:     getRandomFloat() < makePct,
		TS:       time.Now().UTC().Format(time.RFC3339),
	}
}

// generateTapPosition picks a spot in feet plus its make probability.
func generateTapPosition(spec court.Spec) (xFt, yFt, makePct float64) {
	mix, _ := rand.Int(rand.Reader, big.NewInt(shotMixDivisor))
	switch mix.Int64() {
	case caseRimAttempt1, caseRimAttempt2, caseRimAttempt3:
		// At the rim: within 4 ft of the basket, in front of it.
		r := getRandomFloat() * 4.0
		off := (getRandomFloat() - 0.5) * 2 * r
		return court.BasketXFt + off, court.BasketYFt + r*getRandomFloat(), rimMakePct
	case casePaint1, casePaint2:
		// In the lane, short of the free-throw line.
		half := spec.KeyWidthFt / 2
		x := court.BasketXFt - half + getRandomFloat()*spec.KeyWidthFt
		y := court.BasketYFt + 4.0 + getRandomFloat()*(spec.FreeThrowLineFt-court.BasketYFt-4.0)
		return x, y, paintMakePct
	case caseMidRange1, caseMidRange2:
		// Between the lane and the arc, fanned across the floor.
		dist := 12.0 + getRandomFloat()*(spec.ThreePointArcFt-13.0)
		spread := (getRandomFloat() - 0.5) * 2 * dist
		x := court.BasketXFt + spread
		if x < spec.CornerWidthFt+2 {
			x = spec.CornerWidthFt + 2
		}
		if x > court.WidthFt-spec.CornerWidthFt-2 {
			x = court.WidthFt - spec.CornerWidthFt - 2
		}
		return x, court.BasketYFt + dist*0.8, midMakePct
	case caseCornerThree:
		// Hugging a sideline, deep enough to clear the corner threshold.
		x := getRandomFloat() * (spec.CornerWidthFt - 0.5)
		if getRandomFloat() < 0.5 {
			x = court.WidthFt - x
		}
		y := court.BasketYFt + spec.CornerDistFt + getRandomFloat()*2.0
		return x, y, cornerMakePct
	case caseArcThree:
		// A step beyond the arc, above the break.
		dist := spec.ThreePointArcFt + 0.5 + getRandomFloat()*3.0
		spread := (getRandomFloat() - 0.5) * dist
		return court.BasketXFt + spread, court.BasketYFt + dist*0.85, arcMakePct
	case caseFreeThrow:
		// Clustered at the stripe.
		x := court.BasketXFt + (getRandomFloat()-0.5)*2.0
		y := spec.FreeThrowLineFt + (getRandomFloat()-0.5)*1.0
		return x, y, freeThrowMakePct
	default:
		return court.BasketXFt, court.BasketYFt + 10, midMakePct
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
