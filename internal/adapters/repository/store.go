// Package repository loads player-season datasets from disk or SQLite.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/rinkrank/internal/domain/model"
)

// Store provides read access to a player-season dataset.
type Store interface {
	// Load returns every valid record of the dataset. Rows sharing a
	// (playerId, seasonId) key are reduced to the first one.
	Load(ctx context.Context) ([]model.Record, error)
}

// Row is one raw player-season row as exported by the NHL stats API.
// Skater and goalie exports share the layout; only the stats of the
// row's kind are kept.
type Row struct {
	PlayerID          int64  `json:"playerId"          db:"player_id"`
	SeasonID          int    `json:"seasonId"          db:"season_id"`
	PositionCode      string `json:"positionCode"      db:"position_code"`
	SkaterFullName    string `json:"skaterFullName"    db:"name"`
	GoalieFullName    string `json:"goalieFullName"    db:"-"`
	TeamAbbrevs       string `json:"teamAbbrevs"       db:"team_abbrevs"`
	CurrentTeamAbbrev string `json:"currentTeamAbbrev" db:"current_team_abbrev"`
	BirthDate         string `json:"birthDate"         db:"birth_date"`

	GamesPlayed *float64 `json:"gamesPlayed" db:"games_played"`

	Goals        *float64 `json:"goals"        db:"goals"`
	Assists      *float64 `json:"assists"      db:"assists"`
	Points       *float64 `json:"points"       db:"points"`
	PPPoints     *float64 `json:"ppPoints"     db:"pp_points"`
	Shots        *float64 `json:"shots"        db:"shots"`
	Hits         *float64 `json:"hits"         db:"hits"`
	BlockedShots *float64 `json:"blockedShots" db:"blocked_shots"`

	GoalsAgainstAverage *float64 `json:"goalsAgainstAverage" db:"goals_against_average"`
	SavePct             *float64 `json:"savePct"             db:"save_pct"`
	Wins                *float64 `json:"wins"                db:"wins"`
	GoalsAgainst        *float64 `json:"goalsAgainst"        db:"goals_against"`
	ShotsAgainst        *float64 `json:"shotsAgainst"        db:"shots_against"`
	Saves               *float64 `json:"saves"               db:"saves"`
	TimeOnIce           *float64 `json:"timeOnIce"           db:"time_on_ice"`
}

// Key is the deduplication key of the row.
func (r Row) Key() string {
	return fmt.Sprintf("%d:%d", r.PlayerID, r.SeasonID)
}

func (r Row) name() string {
	if n := strings.TrimSpace(r.SkaterFullName); n != "" {
		return n
	}
	return strings.TrimSpace(r.GoalieFullName)
}

func (r Row) columns() map[model.Stat]*float64 {
	return map[model.Stat]*float64{
		model.GamesPlayed:         r.GamesPlayed,
		model.Goals:               r.Goals,
		model.Assists:             r.Assists,
		model.Points:              r.Points,
		model.PPPoints:            r.PPPoints,
		model.Shots:               r.Shots,
		model.Hits:                r.Hits,
		model.BlockedShots:        r.BlockedShots,
		model.GoalsAgainstAverage: r.GoalsAgainstAverage,
		model.SavePct:             r.SavePct,
		model.Wins:                r.Wins,
		model.GoalsAgainst:        r.GoalsAgainst,
		model.ShotsAgainst:        r.ShotsAgainst,
		model.Saves:               r.Saves,
		model.TimeOnIce:           r.TimeOnIce,
	}
}

// Record converts the row into a validated domain record. Null and
// non-finite stats are left absent.
func (r Row) Record() (model.Record, error) {
	if r.PlayerID <= 0 {
		return model.Record{}, fmt.Errorf("%w: playerId %d", ErrInvalidRow, r.PlayerID)
	}
	if r.SeasonID < 10000000 || r.SeasonID > 99999999 {
		return model.Record{}, fmt.Errorf("%w: seasonId %d", ErrInvalidRow, r.SeasonID)
	}
	pos, err := model.ParsePosition(r.PositionCode)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: player %d: %w", ErrInvalidRow, r.PlayerID, err)
	}

	kind := pos.Kind()
	cols := r.columns()
	stats := make(model.Stats)
	for _, stat := range model.Vocabulary(kind) {
		v := cols[stat]
		if v == nil || !model.IsPresent(*v) {
			continue
		}
		stats[stat] = *v
	}

	rec := model.Record{
		PlayerID:    r.PlayerID,
		SeasonID:    r.SeasonID,
		Kind:        kind,
		Position:    pos,
		Name:        r.name(),
		TeamAbbrevs: strings.TrimSpace(r.TeamAbbrevs),
		CurrentTeam: strings.TrimSpace(r.CurrentTeamAbbrev),
		BirthDate:   strings.TrimSpace(r.BirthDate),
		Stats:       stats,
	}
	if err := rec.Validate(); err != nil {
		return model.Record{}, fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}
	return rec, nil
}
