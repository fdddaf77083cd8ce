package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite" // pure-Go sqlite driver

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/logger"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultMetricsUpdateInterval = 30 * time.Second
)

// Timestamps are persisted as unix nanoseconds so SQL ordering and Go
// time round-trip without format parsing.
const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	level TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id      TEXT PRIMARY KEY,
	team_id TEXT NOT NULL REFERENCES teams(id),
	number  INTEGER NOT NULL,
	name    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_players_team ON players(team_id);

CREATE TABLE IF NOT EXISTS games (
	id        TEXT PRIMARY KEY,
	team_id   TEXT NOT NULL REFERENCES teams(id),
	opponent  TEXT NOT NULL,
	played_at INTEGER NOT NULL,
	level     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_team ON games(team_id);

CREATE TABLE IF NOT EXISTS shots (
	id        TEXT PRIMARY KEY,
	event_id  TEXT NOT NULL UNIQUE,
	game_id   TEXT NOT NULL REFERENCES games(id),
	player_id TEXT NOT NULL,
	quarter   INTEGER NOT NULL,
	x         REAL NOT NULL,
	y         REAL NOT NULL,
	made      INTEGER NOT NULL,
	layup     INTEGER NOT NULL,
	shot_type TEXT NOT NULL,
	ts        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shots_game ON shots(game_id);
CREATE INDEX IF NOT EXISTS idx_shots_player ON shots(player_id);

CREATE TABLE IF NOT EXISTS substitutions (
	id         TEXT PRIMARY KEY,
	game_id    TEXT NOT NULL REFERENCES games(id),
	player_in  TEXT NOT NULL,
	player_out TEXT NOT NULL,
	quarter    INTEGER NOT NULL,
	ts         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subs_game ON substitutions(game_id);
`

// SQLiteStore implements Store on an embedded SQLite database. Zones and
// distances are never persisted; reads recompute them from the stored
// position and the game's court level.
type SQLiteStore struct {
	db *sql.DB

	metricsUpdateInterval time.Duration

	done      chan struct{}
	closeOnce sync.Once

	logger logger.Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	// One connection: the pure-Go driver serializes writes anyway, and a
	// pool would split ":memory:" databases across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite store: %w", err)
	}

	s := &SQLiteStore{
		db:                    db,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		done:                  make(chan struct{}),
		logger:                logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	go s.updateMetricsLoop()

	return s, nil
}

// updateMetricsLoop keeps the stored-shot gauge current.
func (s *SQLiteStore) updateMetricsLoop() {
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			metrics.UpdateStoreShotCount(s.CountShots(context.Background()))
		}
	}
}

// Close stops background work and closes the database.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.db.Close()
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, t Team) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, level) VALUES (?, ?, ?)`,
		t.ID, t.Name, string(t.Level),
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("create_team")
		return fmt.Errorf("creating team: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTeam(ctx context.Context, id string) (Team, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, level FROM teams WHERE id = ?`, id,
	)
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.Level)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get_team")
		return Team{}, fmt.Errorf("getting team: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]Team, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, level FROM teams ORDER BY name`,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_teams")
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := make([]Team, 0)
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Level); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, p Player) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, team_id, number, name) VALUES (?, ?, ?, ?)`,
		p.ID, p.TeamID, p.Number, p.Name,
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("create_player")
		return fmt.Errorf("creating player: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPlayers(ctx context.Context, teamID string) ([]Player, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, number, name FROM players WHERE team_id = ? ORDER BY number`,
		teamID,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_players")
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]Player, 0)
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Number, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g Game) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, team_id, opponent, played_at, level) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.TeamID, g.Opponent, g.PlayedAt.UnixNano(), string(g.Level),
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("create_game")
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (Game, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, opponent, played_at, level FROM games WHERE id = ?`, id,
	)
	g, err := scanGame(row)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get_game")
		return Game{}, fmt.Errorf("getting game: %w", err)
	}
	return g, nil
}

func (s *SQLiteStore) ListGames(ctx context.Context, teamID string) ([]Game, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, opponent, played_at, level FROM games WHERE team_id = ? ORDER BY played_at DESC`,
		teamID,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_games")
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := make([]Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) GameLevel(ctx context.Context, gameID string) (court.Level, error) {
	row := s.db.QueryRowContext(ctx, `SELECT level FROM games WHERE id = ?`, gameID)
	var level string
	err := row.Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving game level: %w", err)
	}
	return court.Level(level), nil
}

func (s *SQLiteStore) InsertShot(ctx context.Context, shot model.LiveShot) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shots (id, event_id, game_id, player_id, quarter, x, y, made, layup, shot_type, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(event_id) DO NOTHING`,
		shot.ShotID, shot.EventID, shot.GameID, shot.PlayerID, shot.Quarter,
		shot.Pos.X, shot.Pos.Y, shot.Made, shot.Layup, string(shot.ShotType),
		shot.TS.UnixNano(),
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("insert_shot")
		return fmt.Errorf("inserting shot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListShots(ctx context.Context, gameID string, f ShotFilter) ([]model.LiveShot, error) {
	where, args := buildShotFilter(f)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.event_id, s.game_id, s.player_id, s.quarter, s.x, s.y,
		        s.made, s.layup, s.shot_type, s.ts, g.level
		 FROM shots s JOIN games g ON g.id = s.game_id
		 WHERE s.game_id = ?`+where+`
		 ORDER BY s.ts, s.rowid`,
		append([]any{gameID}, args...)...,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_shots")
		return nil, fmt.Errorf("listing shots: %w", err)
	}
	defer rows.Close()

	return collectShots(rows)
}

func (s *SQLiteStore) ListPlayerShots(ctx context.Context, playerID string) ([]model.LiveShot, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.event_id, s.game_id, s.player_id, s.quarter, s.x, s.y,
		        s.made, s.layup, s.shot_type, s.ts, g.level
		 FROM shots s JOIN games g ON g.id = s.game_id
		 WHERE s.player_id = ?
		 ORDER BY s.ts, s.rowid`,
		playerID,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_player_shots")
		return nil, fmt.Errorf("listing player shots: %w", err)
	}
	defer rows.Close()

	return collectShots(rows)
}

func (s *SQLiteStore) DeleteShot(ctx context.Context, gameID, shotID string) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shots WHERE id = ? AND game_id = ?`, shotID, gameID,
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("delete_shot")
		return fmt.Errorf("deleting shot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting shot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) InsertSubstitution(ctx context.Context, sub Substitution) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO substitutions (id, game_id, player_in, player_out, quarter, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.GameID, sub.PlayerIn, sub.PlayerOut, sub.Quarter, sub.TS.UnixNano(),
	)
	metrics.RecordStoreWriteLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("insert_substitution")
		return fmt.Errorf("inserting substitution: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubstitutions(ctx context.Context, gameID string) ([]Substitution, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, player_in, player_out, quarter, ts
		 FROM substitutions WHERE game_id = ? ORDER BY ts, rowid`,
		gameID,
	)
	metrics.RecordStoreQueryLatency(time.Since(start).Seconds() * 1000)
	if err != nil {
		metrics.RecordStoreError("list_substitutions")
		return nil, fmt.Errorf("listing substitutions: %w", err)
	}
	defer rows.Close()

	subs := make([]Substitution, 0)
	for rows.Next() {
		var sub Substitution
		var ns int64
		if err := rows.Scan(&sub.ID, &sub.GameID, &sub.PlayerIn, &sub.PlayerOut, &sub.Quarter, &ns); err != nil {
			return nil, fmt.Errorf("scanning substitution: %w", err)
		}
		sub.TS = time.Unix(0, ns).UTC()
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) CountShots(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shots`).Scan(&n); err != nil {
		s.logger.Warn(ctx, "counting shots", logger.Error(err))
		return 0
	}
	return n
}

// buildShotFilter compiles a ShotFilter into WHERE clauses.
func buildShotFilter(f ShotFilter) (string, []any) {
	var sb strings.Builder
	var args []any

	if f.PlayerID != "" {
		sb.WriteString(" AND s.player_id = ?")
		args = append(args, f.PlayerID)
	}
	if f.Quarter > 0 {
		sb.WriteString(" AND s.quarter = ?")
		args = append(args, f.Quarter)
	}
	if f.Type != "" {
		sb.WriteString(" AND s.shot_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Made != nil {
		sb.WriteString(" AND s.made = ?")
		args = append(args, *f.Made)
	}
	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (Game, error) {
	var g Game
	var ns int64
	if err := row.Scan(&g.ID, &g.TeamID, &g.Opponent, &ns, &g.Level); err != nil {
		return Game{}, err
	}
	g.PlayedAt = time.Unix(0, ns).UTC()
	return g, nil
}

// collectShots scans joined shot rows, recomputing zone and distance from
// the stored position and each game's level.
func collectShots(rows *sql.Rows) ([]model.LiveShot, error) {
	shots := make([]model.LiveShot, 0)
	for rows.Next() {
		var shot model.LiveShot
		var ns int64
		var level string
		if err := rows.Scan(
			&shot.ShotID, &shot.EventID, &shot.GameID, &shot.PlayerID, &shot.Quarter,
			&shot.Pos.X, &shot.Pos.Y, &shot.Made, &shot.Layup, &shot.ShotType,
			&ns, &level,
		); err != nil {
			return nil, fmt.Errorf("scanning shot: %w", err)
		}
		shot.TS = time.Unix(0, ns).UTC()
		spec := court.SpecFor(court.Level(level))
		shot.Zone = court.ZoneFor(shot.Pos, spec)
		shot.DistanceFt = court.DistanceFromBasket(shot.Pos.X, shot.Pos.Y)
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}
