// Package stats aggregates classified shots into shooting lines and the
// breakdowns the chart screens show. Everything here is a pure function
// of its inputs; callers fetch shots from storage and hand them over.
package stats

import (
	"fmt"
	"sort"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
)

// Line is one shooting line: field goals split by type, free throws, and
// the derived percentages. Field-goal counts exclude free throws.
type Line struct {
	FGM    int     `json:"fgm"`
	FGA    int     `json:"fga"`
	TPM    int     `json:"tpm"`
	TPA    int     `json:"tpa"`
	FTM    int     `json:"ftm"`
	FTA    int     `json:"fta"`
	LayupM int     `json:"layup_m"`
	LayupA int     `json:"layup_a"`
	Points int     `json:"points"`
	FGPct  float64 `json:"fg_pct"`
	TPPct  float64 `json:"tp_pct"`
	FTPct  float64 `json:"ft_pct"`
	EFGPct float64 `json:"efg_pct"`
}

func (l *Line) add(s model.LiveShot) {
	switch s.ShotType {
	case court.FreeThrow:
		l.FTA++
		if s.Made {
			l.FTM++
		}
	case court.ThreePointer:
		l.FGA++
		l.TPA++
		if s.Made {
			l.FGM++
			l.TPM++
		}
	default:
		l.FGA++
		if s.Made {
			l.FGM++
		}
	}
	if s.Layup {
		l.LayupA++
		if s.Made {
			l.LayupM++
		}
	}
	if s.Made {
		l.Points += s.ShotType.PointValue()
	}
}

func (l *Line) finalize() {
	l.FGPct = pct(l.FGM, l.FGA)
	l.TPPct = pct(l.TPM, l.TPA)
	l.FTPct = pct(l.FTM, l.FTA)
	if l.FGA > 0 {
		l.EFGPct = (float64(l.FGM) + 0.5*float64(l.TPM)) / float64(l.FGA)
	}
}

func pct(made, att int) float64 {
	if att == 0 {
		return 0
	}
	return float64(made) / float64(att)
}

// PlayerLine is a player's line within a summary.
type PlayerLine struct {
	PlayerID string `json:"player_id"`
	Line
}

// QuarterLine is one period's line. Quarters past the fourth collapse
// into overtime labels.
type QuarterLine struct {
	Quarter int    `json:"quarter"`
	Label   string `json:"label"`
	Line
}

// ZoneLine is one scoring zone's line. Free throws are left out: zone
// charts describe field goals only.
type ZoneLine struct {
	Zone court.Zone `json:"zone"`
	Line
}

// Summary is the full stat breakdown for a set of shots.
type Summary struct {
	Team     Line          `json:"team"`
	Players  []PlayerLine  `json:"players"`
	Quarters []QuarterLine `json:"quarters"`
	Zones    []ZoneLine    `json:"zones"`
}

// QuarterLabel formats a period number the way box scores do.
func QuarterLabel(q int) string {
	switch {
	case q <= 4:
		return fmt.Sprintf("Q%d", q)
	case q == 5:
		return "OT"
	default:
		return fmt.Sprintf("%dOT", q-4)
	}
}

// Compute aggregates shots into a summary. Output ordering is
// deterministic: players by id, quarters ascending, zones front-most
// zone first.
func Compute(shots []model.LiveShot) Summary {
	var sum Summary
	players := make(map[string]*Line)
	quarters := make(map[int]*Line)
	zones := make(map[court.Zone]*Line)

	for _, s := range shots {
		sum.Team.add(s)

		pl := players[s.PlayerID]
		if pl == nil {
			pl = &Line{}
			players[s.PlayerID] = pl
		}
		pl.add(s)

		ql := quarters[s.Quarter]
		if ql == nil {
			ql = &Line{}
			quarters[s.Quarter] = ql
		}
		ql.add(s)

		if s.ShotType != court.FreeThrow {
			zl := zones[s.Zone]
			if zl == nil {
				zl = &Line{}
				zones[s.Zone] = zl
			}
			zl.add(s)
		}
	}

	sum.Team.finalize()

	sum.Players = make([]PlayerLine, 0, len(players))
	for id, l := range players {
		l.finalize()
		sum.Players = append(sum.Players, PlayerLine{PlayerID: id, Line: *l})
	}
	sort.Slice(sum.Players, func(i, j int) bool { return sum.Players[i].PlayerID < sum.Players[j].PlayerID })

	sum.Quarters = make([]QuarterLine, 0, len(quarters))
	for q, l := range quarters {
		l.finalize()
		sum.Quarters = append(sum.Quarters, QuarterLine{Quarter: q, Label: QuarterLabel(q), Line: *l})
	}
	sort.Slice(sum.Quarters, func(i, j int) bool { return sum.Quarters[i].Quarter < sum.Quarters[j].Quarter })

	for _, z := range court.Zones {
		if l, ok := zones[z]; ok {
			l.finalize()
			sum.Zones = append(sum.Zones, ZoneLine{Zone: z, Line: *l})
		}
	}

	return sum
}
