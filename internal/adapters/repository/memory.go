package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
)

// MemStore implements Store with mutex-guarded maps. It backs the service
// when no database path is configured, and most tests.
type MemStore struct {
	mu sync.RWMutex

	teams    map[string]Team
	players  map[string][]Player       // by team id
	games    map[string]Game
	shots    map[string][]model.LiveShot // by game id, insertion order
	subs     map[string][]Substitution   // by game id
	eventIDs map[string]bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		teams:    make(map[string]Team),
		players:  make(map[string][]Player),
		games:    make(map[string]Game),
		shots:    make(map[string][]model.LiveShot),
		subs:     make(map[string][]Substitution),
		eventIDs: make(map[string]bool),
	}
}

func (s *MemStore) CreateTeam(ctx context.Context, t Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
	return nil
}

func (s *MemStore) GetTeam(ctx context.Context, id string) (Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return Team{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) ListTeams(ctx context.Context) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (s *MemStore) CreatePlayer(ctx context.Context, p Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.TeamID] = append(s.players[p.TeamID], p)
	return nil
}

func (s *MemStore) ListPlayers(ctx context.Context, teamID string) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]Player, len(s.players[teamID]))
	copy(players, s.players[teamID])
	sort.Slice(players, func(i, j int) bool { return players[i].Number < players[j].Number })
	return players, nil
}

func (s *MemStore) CreateGame(ctx context.Context, g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
	return nil
}

func (s *MemStore) GetGame(ctx context.Context, id string) (Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return Game{}, ErrNotFound
	}
	return g, nil
}

func (s *MemStore) ListGames(ctx context.Context, teamID string) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]Game, 0)
	for _, g := range s.games {
		if g.TeamID == teamID {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].PlayedAt.After(games[j].PlayedAt) })
	return games, nil
}

func (s *MemStore) GameLevel(ctx context.Context, gameID string) (court.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return "", ErrNotFound
	}
	return g.Level, nil
}

func (s *MemStore) InsertShot(ctx context.Context, shot model.LiveShot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventIDs[shot.EventID] {
		return nil
	}
	s.eventIDs[shot.EventID] = true
	s.shots[shot.GameID] = append(s.shots[shot.GameID], shot)
	return nil
}

func (s *MemStore) ListShots(ctx context.Context, gameID string, f ShotFilter) ([]model.LiveShot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	level := court.Level("")
	if g, ok := s.games[gameID]; ok {
		level = g.Level
	}

	shots := make([]model.LiveShot, 0)
	for _, shot := range s.shots[gameID] {
		if !matchesFilter(shot, f) {
			continue
		}
		shots = append(shots, enrich(shot, level))
	}
	return shots, nil
}

func (s *MemStore) ListPlayerShots(ctx context.Context, playerID string) ([]model.LiveShot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shots := make([]model.LiveShot, 0)
	for gameID, gameShots := range s.shots {
		level := court.Level("")
		if g, ok := s.games[gameID]; ok {
			level = g.Level
		}
		for _, shot := range gameShots {
			if shot.PlayerID == playerID {
				shots = append(shots, enrich(shot, level))
			}
		}
	}
	sort.Slice(shots, func(i, j int) bool { return shots[i].TS.Before(shots[j].TS) })
	return shots, nil
}

func (s *MemStore) DeleteShot(ctx context.Context, gameID, shotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shots := s.shots[gameID]
	for i, shot := range shots {
		if shot.ShotID == shotID {
			s.shots[gameID] = append(shots[:i], shots[i+1:]...)
			delete(s.eventIDs, shot.EventID)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) InsertSubstitution(ctx context.Context, sub Substitution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.GameID] = append(s.subs[sub.GameID], sub)
	return nil
}

func (s *MemStore) ListSubstitutions(ctx context.Context, gameID string) ([]Substitution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]Substitution, len(s.subs[gameID]))
	copy(subs, s.subs[gameID])
	return subs, nil
}

func (s *MemStore) CountShots(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, shots := range s.shots {
		n += len(shots)
	}
	return n
}

// Close is a no-op; the store holds no external resources.
func (s *MemStore) Close() error { return nil }

func matchesFilter(shot model.LiveShot, f ShotFilter) bool {
	if f.PlayerID != "" && shot.PlayerID != f.PlayerID {
		return false
	}
	if f.Quarter > 0 && shot.Quarter != f.Quarter {
		return false
	}
	if f.Type != "" && shot.ShotType != f.Type {
		return false
	}
	if f.Made != nil && shot.Made != *f.Made {
		return false
	}
	return true
}

// enrich recomputes the derived fields the same way the SQL store does on
// read, so both stores present identical shots.
func enrich(shot model.LiveShot, level court.Level) model.LiveShot {
	spec := court.SpecFor(level)
	shot.Zone = court.ZoneFor(shot.Pos, spec)
	shot.DistanceFt = court.DistanceFromBasket(shot.Pos.X, shot.Pos.Y)
	return shot
}
