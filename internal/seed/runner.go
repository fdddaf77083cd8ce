package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/openhoops/shotchart/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// seededGame is what entity setup hands the rest of the run.
type seededGame struct {
	TeamID    string
	GameID    string
	PlayerIDs []string
}

// Run executes the complete seeding flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting shot chart seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("shots", config.NumShots),
		logger.Int("players", config.NumPlayers),
		logger.Int("workers", config.Workers),
		logger.String("level", config.Level),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create team, roster, and game
	game, err := createEntities(ctx, config)
	if err != nil {
		return fmt.Errorf("entity setup failed: %w", err)
	}

	// Step 3: Generate taps
	taps, err := generateTaps(ctx, config, game.PlayerIDs, stats)
	if err != nil {
		return fmt.Errorf("tap generation failed: %w", err)
	}

	// Step 4: Submit taps concurrently
	if err := submitTaps(ctx, config, game.GameID, taps, stats); err != nil {
		return fmt.Errorf("tap submission failed: %w", err)
	}

	// Step 5: Replay a slice of the taps to exercise idempotency
	if config.Replays > 0 {
		n := minInt(config.Replays, len(taps))
		logger.Get().Info(ctx, "replaying taps to exercise idempotency", logger.Int("count", n))
		if err := submitTaps(ctx, config, game.GameID, taps[:n], stats); err != nil {
			return fmt.Errorf("tap replay failed: %w", err)
		}
	}

	// Step 6: Wait for the classification queue to drain
	stored, err := waitForDrain(ctx, config, game.GameID, stats.TapsSuccessful)
	if err != nil {
		return fmt.Errorf("waiting for classification failed: %w", err)
	}
	stats.ShotsStored = len(stored)

	// Step 7: Fetch the stat summary and verify against submissions
	summary, err := fetchSummary(ctx, config, game.GameID)
	if err != nil {
		return fmt.Errorf("stat retrieval failed: %w", err)
	}
	if err := verifyResults(ctx, config, taps, stored, summary, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save taps to file
	if err := saveTapsToFile(ctx, config, taps); err != nil {
		logger.Get().Warn(ctx, "failed to save taps to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully",
		logger.String("gameID", game.GameID),
		logger.String("teamID", game.TeamID))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// createEntities sets up the team, its roster, and one game over the API.
func createEntities(ctx context.Context, config *Config) (*seededGame, error) {
	client := newHTTPClient(config.Timeout)

	var team struct {
		ID string `json:"id"`
	}
	teamReq := map[string]string{"name": config.TeamName, "level": config.Level}
	if err := postCreated(ctx, client, config.BaseURL+"/v1/teams", teamReq, &team); err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	logger.Get().Info(ctx, "created team", logger.String("teamID", team.ID))

	playerIDs := make([]string, 0, config.NumPlayers)
	for i := 0; i < config.NumPlayers; i++ {
		var player struct {
			ID string `json:"id"`
		}
		playerReq := map[string]interface{}{
			"number": i + 4, // jersey numbers start at 4
			"name":   "Seed Player " + strconv.Itoa(i+1),
		}
		url := fmt.Sprintf("%s/v1/teams/%s/players", config.BaseURL, team.ID)
		if err := postCreated(ctx, client, url, playerReq, &player); err != nil {
			return nil, fmt.Errorf("creating player %d: %w", i, err)
		}
		playerIDs = append(playerIDs, player.ID)
	}
	logger.Get().Info(ctx, "created roster", logger.Int("players", len(playerIDs)))

	var game struct {
		ID string `json:"id"`
	}
	gameReq := map[string]string{
		"opponent":  config.Opponent,
		"played_at": time.Now().UTC().Format(time.RFC3339),
	}
	url := fmt.Sprintf("%s/v1/teams/%s/games", config.BaseURL, team.ID)
	if err := postCreated(ctx, client, url, gameReq, &game); err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	logger.Get().Info(ctx, "created game", logger.String("gameID", game.ID))

	return &seededGame{TeamID: team.ID, GameID: game.ID, PlayerIDs: playerIDs}, nil
}

// saveTapsToFile saves the generated taps to a JSON file.
func saveTapsToFile(ctx context.Context, config *Config, taps []Tap) error {
	if len(taps) == 0 {
		return fmt.Errorf("no taps to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_taps_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, tap := range taps {
		jsonData, err := json.Marshal(tap)
		if err != nil {
			return fmt.Errorf("failed to marshal tap %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write tap %d: %w", i, err)
		}

		if i < len(taps)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "taps saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, tapsPerSecond float64

	if stats.TapsSubmitted > 0 {
		successRate = float64(stats.TapsSuccessful) / float64(stats.TapsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		tapsPerSecond = float64(stats.TapsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("tapsGenerated", stats.TapsGenerated),
		logger.Int("tapsSubmitted", stats.TapsSubmitted),
		logger.Int("tapsSuccessful", stats.TapsSuccessful),
		logger.Int("tapsDuplicate", stats.TapsDuplicate),
		logger.Int("tapsFailed", stats.TapsFailed),
		logger.Int("shotsStored", stats.ShotsStored),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("tapsPerSecond", tapsPerSecond))
}
