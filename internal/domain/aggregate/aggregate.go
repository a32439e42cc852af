// Package aggregate folds several season records of a player into one
// season-range record with plain and season-weighted sums.
package aggregate

import (
	"strconv"

	"github.com/okian/rinkrank/internal/domain/model"
)

const secondsPerHour = 3600

// SeasonWeights maps a season id to its weight. Unlisted seasons weigh 1.
type SeasonWeights map[int]float64

// Weight returns the weight for seasonID.
func (w SeasonWeights) Weight(seasonID int) float64 {
	if v, ok := w[seasonID]; ok {
		return v
	}
	return 1
}

// Clone returns an independent copy.
func (w SeasonWeights) Clone() SeasonWeights {
	out := make(SeasonWeights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

var (
	skaterSummable = []model.Stat{
		model.Assists, model.BlockedShots, model.GamesPlayed, model.Goals,
		model.Hits, model.Points, model.PPPoints, model.Shots,
	}
	goalieSummable = []model.Stat{
		model.Wins, model.GoalsAgainst, model.ShotsAgainst, model.Saves,
		model.TimeOnIce, model.GamesPlayed,
	}
)

// Summable returns the stats that are summed across seasons for kind.
func Summable(kind model.Kind) []model.Stat {
	if kind == model.KindGoalie {
		return append([]model.Stat(nil), goalieSummable...)
	}
	return append([]model.Stat(nil), skaterSummable...)
}

// CombinedSeasonID builds the season-range label from the first four digits
// of minSeason and the last four digits of maxSeason, e.g. 20212022 and
// 20232024 give 20212024.
func CombinedSeasonID(minSeason, maxSeason int) int {
	lo := strconv.Itoa(minSeason)
	hi := strconv.Itoa(maxSeason)
	if len(lo) < 4 || len(hi) < 4 {
		return minSeason
	}
	id, err := strconv.Atoi(lo[:4] + hi[len(hi)-4:])
	if err != nil {
		return minSeason
	}
	return id
}

// Aggregate groups records by player and folds each group into one
// aggregated record. Output keeps the order in which players first appear.
// Inputs are not modified.
func Aggregate(records []model.Record, weights SeasonWeights) []model.Record {
	order := make([]int64, 0, len(records))
	groups := make(map[int64][]model.Record)
	for _, r := range records {
		if _, ok := groups[r.PlayerID]; !ok {
			order = append(order, r.PlayerID)
		}
		groups[r.PlayerID] = append(groups[r.PlayerID], r)
	}

	out := make([]model.Record, 0, len(order))
	for _, id := range order {
		out = append(out, fold(groups[id], weights))
	}
	return out
}

// fold merges one player's records. The first record seeds every
// non-summable field; later records only contribute to sums.
func fold(records []model.Record, weights SeasonWeights) model.Record {
	first := records[0]
	acc := first.Clone()
	acc.Aggregated = true
	acc.Stats = make(model.Stats)

	minSeason, maxSeason := first.SeasonID, first.SeasonID
	for _, r := range records {
		if r.SeasonID < minSeason {
			minSeason = r.SeasonID
		}
		if r.SeasonID > maxSeason {
			maxSeason = r.SeasonID
		}
	}
	acc.SeasonID = CombinedSeasonID(minSeason, maxSeason)

	summable := Summable(first.Kind)
	for _, r := range records {
		w := weights.Weight(r.SeasonID)
		for _, stat := range summable {
			v, ok := r.Stats.Lookup(stat)
			if !ok {
				v = 0
			}
			acc.Stats[stat] += v
			acc.Stats[stat.Weighted()] += v * w
		}
		carryOver(acc.Stats, r.Stats, summable)
		if first.Kind == model.KindGoalie {
			recomputeRatios(acc.Stats, w)
		}
	}
	return acc
}

// carryOver copies non-summable stats the accumulator has not seen yet.
func carryOver(acc, src model.Stats, summable []model.Stat) {
	for stat, v := range src {
		if isSummable(stat, summable) {
			continue
		}
		if _, seen := acc[stat]; seen {
			continue
		}
		if model.IsPresent(v) {
			acc[stat] = v
		}
	}
}

func isSummable(stat model.Stat, summable []model.Stat) bool {
	for _, s := range summable {
		if s == stat {
			return true
		}
	}
	return false
}

// recomputeRatios refreshes the goalie ratio stats from the running sums.
// The weighted ratio is scaled by the weight of the season just folded in,
// not re-derived from weighted components.
func recomputeRatios(acc model.Stats, seasonWeight float64) {
	if toi := acc[model.TimeOnIce]; toi > 0 {
		gaa := acc[model.GoalsAgainst] * secondsPerHour / toi
		acc[model.GoalsAgainstAverage] = gaa
		acc[model.GoalsAgainstAverage.Weighted()] = gaa * seasonWeight
	}
	if sa := acc[model.ShotsAgainst]; sa > 0 {
		pct := acc[model.Saves] / sa
		acc[model.SavePct] = pct
		acc[model.SavePct.Weighted()] = pct * seasonWeight
	}
}
