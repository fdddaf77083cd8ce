package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/openhoops/shotchart/internal/seed"
)

// Default configuration constants.
const (
	defaultNumShots   = 500
	defaultNumPlayers = 8
	defaultReplays    = 25
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numShots   = flag.Int("shots", defaultNumShots, "Number of shot taps to generate and submit")
		numPlayers = flag.Int("players", defaultNumPlayers, "Roster size for the seeded team")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		level      = flag.String("level", "nba", "Court level: highschool, college, nba")
		teamName   = flag.String("team", "Seed Hoopers", "Team name")
		opponent   = flag.String("opponent", "Scrimmage XI", "Opponent name")
		replays    = flag.Int("replays", defaultReplays, "Taps resubmitted to exercise idempotency")
		outputFile = flag.String("output", "", "Output file for generated taps (default: generated_taps_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	// Setup logging
	if err := seed.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seed configuration
	config := &seed.Config{
		BaseURL:    *baseURL,
		NumShots:   *numShots,
		NumPlayers: *numPlayers,
		Workers:    *workers,
		Timeout:    *timeout,
		Level:      *level,
		TeamName:   *teamName,
		Opponent:   *opponent,
		Replays:    *replays,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the seeding flow
	if err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
