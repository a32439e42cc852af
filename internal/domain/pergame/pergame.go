// Package pergame converts cumulative counting stats into per-game rates.
package pergame

import "github.com/okian/rinkrank/internal/domain/model"

// DefaultStats lists the counting stats eligible for per-game conversion.
var DefaultStats = []model.Stat{
	model.Goals, model.Assists, model.Points, model.PPPoints,
	model.Shots, model.Hits, model.BlockedShots, model.Wins,
}

// ToPerGame returns copies of records with each stat in stats divided by
// games played. For aggregated records the weighted variant is divided by
// the weighted games played as well. Values are left untouched when the
// stat or its denominator is absent or the denominator is zero.
func ToPerGame(records []model.Record, stats []model.Stat, aggregated bool) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		c := r.Clone()
		for _, stat := range stats {
			divide(c.Stats, r.Stats, stat, model.GamesPlayed)
			if aggregated {
				divide(c.Stats, r.Stats, stat.Weighted(), model.GamesPlayed.Weighted())
			}
		}
		out[i] = c
	}
	return out
}

func divide(dst, src model.Stats, stat, denominator model.Stat) {
	gp, ok := src.Lookup(denominator)
	if !ok || gp == 0 {
		return
	}
	v, ok := src.Lookup(stat)
	if !ok {
		return
	}
	dst[stat] = v / gp
}
