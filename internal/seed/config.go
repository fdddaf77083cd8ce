package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumShots   int           // Number of shot taps to generate
	NumPlayers int           // Roster size for the seeded team
	Workers    int           // Number of concurrent submit workers
	Timeout    time.Duration // HTTP request timeout
	Level      string        // Court level for the seeded team
	TeamName   string        // Name of the seeded team
	Opponent   string        // Opponent name on the seeded game
	Replays    int           // Taps resubmitted to exercise idempotency
	OutputFile string        // Output file for generated taps
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Tap is one generated shot submission.
type Tap struct {
	EventID  string  `json:"event_id"`
	PlayerID string  `json:"player_id"`
	Quarter  int     `json:"quarter"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Made     bool    `json:"made"`
	TS       string  `json:"ts"`
}

// AckResponse is the service's answer to a shot submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Line mirrors the service's shooting-line JSON for verification.
type Line struct {
	FGM    int `json:"fgm"`
	FGA    int `json:"fga"`
	TPM    int `json:"tpm"`
	TPA    int `json:"tpa"`
	FTM    int `json:"ftm"`
	FTA    int `json:"fta"`
	Points int `json:"points"`
}

// Summary mirrors the service's game stat summary for verification.
type Summary struct {
	Team    Line `json:"team"`
	Players []struct {
		PlayerID string `json:"player_id"`
		Line
	} `json:"players"`
}

// Stats holds run statistics.
type Stats struct {
	TapsGenerated  int
	TapsSubmitted  int
	TapsSuccessful int
	TapsDuplicate  int
	TapsFailed     int
	ShotsStored    int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
