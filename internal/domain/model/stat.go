package model

import (
	"math"
	"sort"
)

// Stat names a single statistic column.
type Stat string

// Skater statistics.
const (
	Goals        Stat = "goals"
	Assists      Stat = "assists"
	Points       Stat = "points"
	PPPoints     Stat = "ppPoints"
	Shots        Stat = "shots"
	Hits         Stat = "hits"
	BlockedShots Stat = "blockedShots"
)

// Goalie statistics.
const (
	GoalsAgainstAverage Stat = "goalsAgainstAverage"
	SavePct             Stat = "savePct"
	Wins                Stat = "wins"
	GoalsAgainst        Stat = "goalsAgainst"
	ShotsAgainst        Stat = "shotsAgainst"
	Saves               Stat = "saves"
	TimeOnIce           Stat = "timeOnIce"
)

// GamesPlayed is tracked for both kinds.
const GamesPlayed Stat = "gamesPlayed"

// weightedSuffix tags the season-weighted variant of a summed stat.
const weightedSuffix = "Weighted"

// Weighted returns the key of the season-weighted variant of s.
func (s Stat) Weighted() Stat { return s + weightedSuffix }

// String implements fmt.Stringer.
func (s Stat) String() string { return string(s) }

var (
	skaterVocabulary = []Stat{Goals, Assists, Points, PPPoints, Shots, Hits, BlockedShots, GamesPlayed}
	goalieVocabulary = []Stat{GoalsAgainstAverage, SavePct, Wins, GoalsAgainst, ShotsAgainst, Saves, TimeOnIce, GamesPlayed}
)

// Vocabulary returns the closed set of stats recorded for kind.
// The returned slice is a copy.
func Vocabulary(kind Kind) []Stat {
	switch kind {
	case KindSkater:
		return append([]Stat(nil), skaterVocabulary...)
	case KindGoalie:
		return append([]Stat(nil), goalieVocabulary...)
	default:
		return nil
	}
}

// InVocabulary reports whether s belongs to kind's vocabulary.
func InVocabulary(kind Kind, s Stat) bool {
	for _, v := range Vocabulary(kind) {
		if v == s {
			return true
		}
	}
	return false
}

// IsPresent reports whether v holds a usable value.
// Every stage that reads stats goes through this predicate.
func IsPresent(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Stats is a bag of statistic values. A missing key means "absent".
type Stats map[Stat]float64

// Lookup returns the value for s and whether it is present.
func (s Stats) Lookup(stat Stat) (float64, bool) {
	v, ok := s[stat]
	if !ok || !IsPresent(v) {
		return 0, false
	}
	return v, true
}

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the stat keys in sorted order.
func (s Stats) Keys() []Stat {
	keys := make([]Stat, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
