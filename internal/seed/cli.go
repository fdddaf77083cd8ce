package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/openhoops/shotchart/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Shot Chart Seed Tool
====================

Seeds a running shot chart service with a team, roster, game, and a
realistic spread of classified shot taps, then verifies the stored
totals against what was submitted.

Usage:
  go run cmd/seed-shots/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -shots int
        Number of shot taps to generate and submit (default 500)
  -players int
        Roster size for the seeded team (default 8)
  -workers int
        Number of concurrent submit workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -level string
        Court level for the seeded team: highschool, college, nba (default "nba")
  -team string
        Team name (default "Seed Hoopers")
  -opponent string
        Opponent name (default "Scrimmage XI")
  -replays int
        Taps resubmitted afterwards to exercise idempotency (default 25)
  -output string
        Output file for generated taps (default: generated_taps_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-shots/main.go

  # Seed a high school game with a big sample
  go run cmd/seed-shots/main.go -shots 5000 -level highschool

  # Seed against a remote instance with verbose output
  go run cmd/seed-shots/main.go -url http://10.0.0.5:9080 -verbose
`)
}
