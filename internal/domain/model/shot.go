// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/openhoops/shotchart/internal/domain/court"
)

// ShotEvent is a raw tap submitted by clients, queued for classification.
// Fields mirror the OpenAPI schema for the shot endpoint. EventID comes
// from the client so replays out of an offline sync queue stay idempotent.
type ShotEvent struct {
	EventID  string         // client-generated id for idempotency
	GameID   string
	PlayerID string
	Quarter  int
	Pos      court.Position // normalized tap position
	Made     bool
	Layup    bool // explicit layup flag from the client
	LayupSet bool // whether the client sent the flag at all
	TS       time.Time
}

// LiveShot is a classified shot fanned out to live subscribers and
// returned on reads.
type LiveShot struct {
	ShotID     string         `json:"shot_id"`
	EventID    string         `json:"event_id"`
	GameID     string         `json:"game_id"`
	PlayerID   string         `json:"player_id"`
	Quarter    int            `json:"quarter"`
	Pos        court.Position `json:"pos"`
	Made       bool           `json:"made"`
	Layup      bool           `json:"layup"`
	ShotType   court.ShotType `json:"shot_type"`
	Zone       court.Zone     `json:"zone"`
	DistanceFt float64        `json:"distance_ft"`
	TS         time.Time      `json:"ts"`
}
