// Package repository defines the persistence contracts for teams, rosters,
// games, and recorded shots.
package repository

import (
	"context"
	"time"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
)

// Team is a coached roster playing at one court level.
type Team struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Level court.Level `json:"level"`
}

// Player belongs to one team.
type Player struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Game is one tracked game. Level is copied from the team at creation so
// later team edits do not reclassify old shots.
type Game struct {
	ID       string      `json:"id"`
	TeamID   string      `json:"team_id"`
	Opponent string      `json:"opponent"`
	PlayedAt time.Time   `json:"played_at"`
	Level    court.Level `json:"level"`
}

// Substitution records a player swap during a game.
type Substitution struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerIn  string    `json:"player_in"`
	PlayerOut string    `json:"player_out"`
	Quarter   int       `json:"quarter"`
	TS        time.Time `json:"ts"`
}

// ShotFilter narrows ListShots. Zero values mean "any".
type ShotFilter struct {
	PlayerID string
	Quarter  int
	Type     court.ShotType
	Made     *bool
}

// Store provides read/write access to recorded state. Implementations
// must be safe for concurrent use; workers write while handlers read.
type Store interface {
	CreateTeam(ctx context.Context, t Team) error
	// GetTeam returns ErrNotFound for unknown ids.
	GetTeam(ctx context.Context, id string) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)

	CreatePlayer(ctx context.Context, p Player) error
	ListPlayers(ctx context.Context, teamID string) ([]Player, error)

	CreateGame(ctx context.Context, g Game) error
	// GetGame returns ErrNotFound for unknown ids.
	GetGame(ctx context.Context, id string) (Game, error)
	ListGames(ctx context.Context, teamID string) ([]Game, error)
	// GameLevel resolves the court rules a game was recorded under.
	GameLevel(ctx context.Context, gameID string) (court.Level, error)

	// InsertShot stores a classified shot. Replaying an event id that is
	// already stored is a no-op, which keeps offline-sync replays
	// harmless even past the dedupe window.
	InsertShot(ctx context.Context, s model.LiveShot) error
	// ListShots returns a game's shots in chronological order.
	ListShots(ctx context.Context, gameID string, f ShotFilter) ([]model.LiveShot, error)
	// ListPlayerShots returns a player's shots across all games.
	ListPlayerShots(ctx context.Context, playerID string) ([]model.LiveShot, error)
	// DeleteShot undoes a recorded shot. Returns ErrNotFound if the shot
	// is not part of the game.
	DeleteShot(ctx context.Context, gameID, shotID string) error

	InsertSubstitution(ctx context.Context, s Substitution) error
	ListSubstitutions(ctx context.Context, gameID string) ([]Substitution, error)

	// CountShots returns the number of stored shots.
	CountShots(ctx context.Context) int

	Close() error
}
