package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-9
	return math.Abs(a-b) < tolerance
}

// eachStore runs a subtest against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	stores := []struct {
		name  string
		build func(t *testing.T) Store
	}{
		{
			name:  "mem",
			build: func(t *testing.T) Store { return NewMemStore() },
		},
		{
			name: "sqlite",
			build: func(t *testing.T) Store {
				s, err := NewSQLiteStore(":memory:", WithMetricsUpdateInterval(time.Hour))
				if err != nil {
					t.Fatalf("opening sqlite store: %v", err)
				}
				return s
			},
		},
	}

	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.build(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

// seedGame creates a team and a game to hang shots off.
func seedGame(t *testing.T, s Store, level court.Level) (Team, Game) {
	t.Helper()
	ctx := context.Background()

	team := Team{ID: "team-1", Name: "Wildcats", Level: level}
	if err := s.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	game := Game{
		ID:       "game-1",
		TeamID:   team.ID,
		Opponent: "Eagles",
		PlayedAt: time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC),
		Level:    level,
	}
	if err := s.CreateGame(ctx, game); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return team, game
}

func shotAt(eventID, playerID string, quarter int, x, y float64, made bool, st court.ShotType, ts time.Time) model.LiveShot {
	return model.LiveShot{
		ShotID:   "shot-" + eventID,
		EventID:  eventID,
		GameID:   "game-1",
		PlayerID: playerID,
		Quarter:  quarter,
		Pos:      court.Position{X: x, Y: y},
		Made:     made,
		ShotType: st,
		TS:       ts,
	}
}

func TestStoreTeamsAndRosters(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		if _, err := s.GetTeam(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetTeam(unknown) = %v, want ErrNotFound", err)
		}

		teams := []Team{
			{ID: "team-b", Name: "Bears", Level: court.HighSchool},
			{ID: "team-a", Name: "Aces", Level: court.NBA},
		}
		for _, team := range teams {
			if err := s.CreateTeam(ctx, team); err != nil {
				t.Fatalf("CreateTeam(%s): %v", team.ID, err)
			}
		}

		got, err := s.GetTeam(ctx, "team-a")
		if err != nil {
			t.Fatalf("GetTeam: %v", err)
		}
		if got.Name != "Aces" || got.Level != court.NBA {
			t.Fatalf("GetTeam = %+v", got)
		}

		listed, err := s.ListTeams(ctx)
		if err != nil {
			t.Fatalf("ListTeams: %v", err)
		}
		if len(listed) != 2 || listed[0].Name != "Aces" || listed[1].Name != "Bears" {
			t.Fatalf("ListTeams order = %+v", listed)
		}

		players := []Player{
			{ID: "p-23", TeamID: "team-a", Number: 23, Name: "Jordan Reed"},
			{ID: "p-3", TeamID: "team-a", Number: 3, Name: "Sam Okafor"},
			{ID: "p-11", TeamID: "team-b", Number: 11, Name: "Casey Lin"},
		}
		for _, p := range players {
			if err := s.CreatePlayer(ctx, p); err != nil {
				t.Fatalf("CreatePlayer(%s): %v", p.ID, err)
			}
		}

		roster, err := s.ListPlayers(ctx, "team-a")
		if err != nil {
			t.Fatalf("ListPlayers: %v", err)
		}
		if len(roster) != 2 || roster[0].Number != 3 || roster[1].Number != 23 {
			t.Fatalf("ListPlayers order = %+v", roster)
		}

		empty, err := s.ListPlayers(ctx, "team-none")
		if err != nil || len(empty) != 0 {
			t.Fatalf("ListPlayers(unknown) = %v, %v", empty, err)
		}
	})
}

func TestStoreGames(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		team, game := seedGame(t, s, court.College)

		later := Game{
			ID:       "game-2",
			TeamID:   team.ID,
			Opponent: "Hawks",
			PlayedAt: game.PlayedAt.Add(7 * 24 * time.Hour),
			Level:    team.Level,
		}
		if err := s.CreateGame(ctx, later); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}

		got, err := s.GetGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGame: %v", err)
		}
		if got.Opponent != "Eagles" || !got.PlayedAt.Equal(game.PlayedAt) || got.Level != court.College {
			t.Fatalf("GetGame = %+v", got)
		}

		if _, err := s.GetGame(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetGame(unknown) = %v, want ErrNotFound", err)
		}

		games, err := s.ListGames(ctx, team.ID)
		if err != nil {
			t.Fatalf("ListGames: %v", err)
		}
		if len(games) != 2 || games[0].ID != "game-2" || games[1].ID != "game-1" {
			t.Fatalf("ListGames order = %+v", games)
		}

		level, err := s.GameLevel(ctx, game.ID)
		if err != nil || level != court.College {
			t.Fatalf("GameLevel = %v, %v", level, err)
		}
		if _, err := s.GameLevel(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GameLevel(unknown) = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreShots(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedGame(t, s, court.NBA)

		base := time.Date(2026, 1, 10, 19, 5, 0, 0, time.UTC)
		shots := []model.LiveShot{
			shotAt("ev-1", "p-1", 1, 0.5, 0.12, true, court.TwoPointer, base),
			shotAt("ev-2", "p-2", 1, 0.02, 0.1, false, court.ThreePointer, base.Add(time.Minute)),
			shotAt("ev-3", "p-1", 2, 0.5, 19.0/court.DepthFt, true, court.FreeThrow, base.Add(2*time.Minute)),
		}
		for _, shot := range shots {
			if err := s.InsertShot(ctx, shot); err != nil {
				t.Fatalf("InsertShot(%s): %v", shot.EventID, err)
			}
		}

		// Replaying a stored event id must be a no-op.
		replay := shots[0]
		replay.ShotID = "shot-replayed"
		if err := s.InsertShot(ctx, replay); err != nil {
			t.Fatalf("InsertShot(replay): %v", err)
		}
		if n := s.CountShots(ctx); n != 3 {
			t.Fatalf("CountShots after replay = %d, want 3", n)
		}

		all, err := s.ListShots(ctx, "game-1", ShotFilter{})
		if err != nil {
			t.Fatalf("ListShots: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("ListShots = %d shots, want 3", len(all))
		}
		for i, want := range []string{"ev-1", "ev-2", "ev-3"} {
			if all[i].EventID != want {
				t.Fatalf("ListShots[%d] = %s, want %s", i, all[i].EventID, want)
			}
		}

		// Derived fields come back recomputed from the stored position.
		if all[0].Zone != court.ZoneRestricted {
			t.Errorf("rim shot zone = %s, want %s", all[0].Zone, court.ZoneRestricted)
		}
		if !floatEqual(all[0].DistanceFt, court.DistanceFromBasket(0.5, 0.12)) {
			t.Errorf("rim shot distance = %v", all[0].DistanceFt)
		}
		if all[1].Zone != court.ZoneCorner3 {
			t.Errorf("corner shot zone = %s, want %s", all[1].Zone, court.ZoneCorner3)
		}
		if all[2].Zone != court.ZonePaint {
			t.Errorf("free throw zone = %s, want %s", all[2].Zone, court.ZonePaint)
		}
		if !all[0].TS.Equal(base) {
			t.Errorf("shot ts = %v, want %v", all[0].TS, base)
		}

		filters := []struct {
			name   string
			filter ShotFilter
			want   []string
		}{
			{"by player", ShotFilter{PlayerID: "p-1"}, []string{"ev-1", "ev-3"}},
			{"by quarter", ShotFilter{Quarter: 2}, []string{"ev-3"}},
			{"by type", ShotFilter{Type: court.ThreePointer}, []string{"ev-2"}},
			{"by made", ShotFilter{Made: boolPtr(true)}, []string{"ev-1", "ev-3"}},
			{"by missed", ShotFilter{Made: boolPtr(false)}, []string{"ev-2"}},
			{"combined", ShotFilter{PlayerID: "p-1", Quarter: 1}, []string{"ev-1"}},
			{"no match", ShotFilter{PlayerID: "p-1", Quarter: 3}, nil},
		}
		for _, tc := range filters {
			got, err := s.ListShots(ctx, "game-1", tc.filter)
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("%s: %d shots, want %d", tc.name, len(got), len(tc.want))
			}
			for i, want := range tc.want {
				if got[i].EventID != want {
					t.Errorf("%s[%d] = %s, want %s", tc.name, i, got[i].EventID, want)
				}
			}
		}

		// Undo.
		if err := s.DeleteShot(ctx, "game-1", "shot-ev-2"); err != nil {
			t.Fatalf("DeleteShot: %v", err)
		}
		if err := s.DeleteShot(ctx, "game-1", "shot-ev-2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("DeleteShot(again) = %v, want ErrNotFound", err)
		}
		if n := s.CountShots(ctx); n != 2 {
			t.Fatalf("CountShots after delete = %d, want 2", n)
		}

		// A deleted shot's event id may legitimately come back (the undo
		// then re-record flow).
		if err := s.InsertShot(ctx, shots[1]); err != nil {
			t.Fatalf("InsertShot(after delete): %v", err)
		}
		if n := s.CountShots(ctx); n != 3 {
			t.Fatalf("CountShots after re-record = %d, want 3", n)
		}
	})
}

func TestStorePlayerShots(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		team, game := seedGame(t, s, court.HighSchool)

		second := Game{
			ID:       "game-2",
			TeamID:   team.ID,
			Opponent: "Lions",
			PlayedAt: game.PlayedAt.Add(48 * time.Hour),
			Level:    team.Level,
		}
		if err := s.CreateGame(ctx, second); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}

		base := time.Date(2026, 1, 10, 19, 5, 0, 0, time.UTC)
		first := shotAt("ev-a", "p-9", 1, 0.5, 0.3, true, court.TwoPointer, base)
		later := shotAt("ev-b", "p-9", 4, 0.5, 0.6, false, court.ThreePointer, base.Add(49*time.Hour))
		later.GameID = "game-2"
		other := shotAt("ev-c", "p-4", 1, 0.4, 0.2, true, court.TwoPointer, base.Add(time.Minute))

		for _, shot := range []model.LiveShot{later, first, other} {
			if err := s.InsertShot(ctx, shot); err != nil {
				t.Fatalf("InsertShot(%s): %v", shot.EventID, err)
			}
		}

		career, err := s.ListPlayerShots(ctx, "p-9")
		if err != nil {
			t.Fatalf("ListPlayerShots: %v", err)
		}
		if len(career) != 2 || career[0].EventID != "ev-a" || career[1].EventID != "ev-b" {
			t.Fatalf("ListPlayerShots = %+v", career)
		}
		if career[0].GameID != "game-1" || career[1].GameID != "game-2" {
			t.Fatalf("ListPlayerShots games = %s, %s", career[0].GameID, career[1].GameID)
		}
	})
}

func TestStoreSubstitutions(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedGame(t, s, court.HighSchool)

		base := time.Date(2026, 1, 10, 19, 20, 0, 0, time.UTC)
		subs := []Substitution{
			{ID: "sub-1", GameID: "game-1", PlayerIn: "p-5", PlayerOut: "p-2", Quarter: 2, TS: base},
			{ID: "sub-2", GameID: "game-1", PlayerIn: "p-2", PlayerOut: "p-5", Quarter: 3, TS: base.Add(10 * time.Minute)},
		}
		for _, sub := range subs {
			if err := s.InsertSubstitution(ctx, sub); err != nil {
				t.Fatalf("InsertSubstitution(%s): %v", sub.ID, err)
			}
		}

		got, err := s.ListSubstitutions(ctx, "game-1")
		if err != nil {
			t.Fatalf("ListSubstitutions: %v", err)
		}
		if len(got) != 2 || got[0].ID != "sub-1" || got[1].ID != "sub-2" {
			t.Fatalf("ListSubstitutions = %+v", got)
		}
		if got[0].PlayerIn != "p-5" || got[0].Quarter != 2 || !got[0].TS.Equal(base) {
			t.Fatalf("ListSubstitutions[0] = %+v", got[0])
		}

		none, err := s.ListSubstitutions(ctx, "game-none")
		if err != nil || len(none) != 0 {
			t.Fatalf("ListSubstitutions(unknown) = %v, %v", none, err)
		}
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedGame(t, s, court.NBA)

		const writers = 4
		const perWriter = 25

		var wg sync.WaitGroup
		base := time.Date(2026, 1, 10, 19, 5, 0, 0, time.UTC)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(writer int) {
				defer wg.Done()
				for j := 0; j < perWriter; j++ {
					shot := shotAt(
						fmt.Sprintf("ev-%d-%d", writer, j),
						fmt.Sprintf("p-%d", writer),
						1+j%4, 0.5, 0.3, j%2 == 0, court.TwoPointer,
						base.Add(time.Duration(writer*perWriter+j)*time.Second),
					)
					if err := s.InsertShot(ctx, shot); err != nil {
						t.Errorf("InsertShot: %v", err)
						return
					}
					if _, err := s.ListShots(ctx, "game-1", ShotFilter{}); err != nil {
						t.Errorf("ListShots: %v", err)
						return
					}
				}
			}(i)
		}
		wg.Wait()

		if n := s.CountShots(ctx); n != writers*perWriter {
			t.Fatalf("CountShots = %d, want %d", n, writers*perWriter)
		}
	})
}

func boolPtr(b bool) *bool { return &b }
