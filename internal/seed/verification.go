package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/openhoops/shotchart/pkg/logger"
)

// StoredShot mirrors the service's classified shot JSON.
type StoredShot struct {
	ShotID   string `json:"shot_id"`
	EventID  string `json:"event_id"`
	PlayerID string `json:"player_id"`
	Quarter  int    `json:"quarter"`
	Made     bool   `json:"made"`
	Layup    bool   `json:"layup"`
	ShotType string `json:"shot_type"`
	Zone     string `json:"zone"`
}

// waitForDrain polls the game's shots until the expected count lands or
// the drain timeout hits, then returns whatever is stored.
func waitForDrain(ctx context.Context, config *Config, gameID string, expected int) ([]StoredShot, error) {
	logger.Get().Info(ctx, "waiting for classification queue to drain", logger.Int("expected", expected))

	deadline := time.Now().Add(DrainTimeout)
	var shots []StoredShot
	for {
		var err error
		shots, err = fetchShots(ctx, config, gameID)
		if err != nil {
			return nil, err
		}
		if len(shots) >= expected || time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(DrainPollInterval):
		}
	}

	logger.Get().Info(ctx, "classification drained", logger.Int("stored", len(shots)))
	return shots, nil
}

// fetchShots lists the game's classified shots.
func fetchShots(ctx context.Context, config *Config, gameID string) ([]StoredShot, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/v1/games/%s/shots", config.BaseURL, gameID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var shots []StoredShot
	if err := json.Unmarshal(body, &shots); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return shots, nil
}

// fetchSummary retrieves the game's stat summary.
func fetchSummary(ctx context.Context, config *Config, gameID string) (*Summary, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/v1/games/%s/stats", config.BaseURL, gameID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var summary Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &summary, nil
}

// verifyResults cross-checks stored shots and the stat summary against
// what was submitted.
func verifyResults(ctx context.Context, config *Config, taps []Tap, stored []StoredShot, summary *Summary, stats *Stats) error {
	log.Println("verifying results...")

	if len(stored) == 0 {
		return fmt.Errorf("no shots stored")
	}

	// Every successfully accepted tap should be stored exactly once.
	if len(stored) != stats.TapsSuccessful {
		return fmt.Errorf("stored %d shots, expected %d accepted taps", len(stored), stats.TapsSuccessful)
	}

	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		if seen[s.EventID] {
			return fmt.Errorf("event id %s stored more than once", s.EventID)
		}
		seen[s.EventID] = true
	}

	// The summary's attempt counts must add back up to the stored shots.
	attempts := summary.Team.FGA + summary.Team.FTA
	if attempts != len(stored) {
		return fmt.Errorf("summary counts %d attempts, stored %d shots", attempts, len(stored))
	}

	// Made counts must match the submitted flags.
	made := 0
	for _, tap := range taps {
		if seen[tap.EventID] && tap.Made {
			made++
		}
	}
	if got := summary.Team.FGM + summary.Team.FTM; got != made {
		return fmt.Errorf("summary counts %d makes, submitted %d", got, made)
	}

	displayBreakdown(stored, summary, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// displayBreakdown shows the classified shot mix and top scorers.
func displayBreakdown(stored []StoredShot, summary *Summary, verbose bool) {
	byType := make(map[string]int)
	byZone := make(map[string]int)
	layups := 0
	for _, s := range stored {
		byType[s.ShotType]++
		byZone[s.Zone]++
		if s.Layup {
			layups++
		}
	}

	log.Printf("classified mix: %v (layups: %d)", byType, layups)
	log.Printf("team line: %d/%d FG, %d/%d 3PT, %d/%d FT, %d points",
		summary.Team.FGM, summary.Team.FGA,
		summary.Team.TPM, summary.Team.TPA,
		summary.Team.FTM, summary.Team.FTA,
		summary.Team.Points)

	if verbose {
		log.Printf("zone mix: %v", byZone)
		for _, p := range summary.Players {
			log.Printf("  %s: %d pts on %d/%d FG", p.PlayerID, p.Points, p.FGM, p.FGA)
		}
	}
}
