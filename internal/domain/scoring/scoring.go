// Package scoring computes a player's composite z-score from cohort
// statistics, stat weights and position scarcity.
package scoring

import (
	"sort"

	"github.com/okian/rinkrank/internal/domain/cohort"
	"github.com/okian/rinkrank/internal/domain/model"
)

// Weights maps a stat to its signed weight. Zero excludes the stat.
type Weights map[model.Stat]float64

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Merge returns a copy of w with overrides applied on top.
func (w Weights) Merge(overrides Weights) Weights {
	out := w.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Active returns the stats with a non-zero weight in sorted order.
func (w Weights) Active() []model.Stat {
	keys := make([]model.Stat, 0, len(w))
	for k, v := range w {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Scarcity maps a position to the multiplier applied to all its contributions.
type Scarcity map[model.Position]float64

// Factor returns the multiplier for pos, 1 when unset.
func (s Scarcity) Factor(pos model.Position) float64 {
	if v, ok := s[pos]; ok {
		return v
	}
	return 1
}

// Clone returns an independent copy.
func (s Scarcity) Clone() Scarcity {
	out := make(Scarcity, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithInverseStats replaces the set of lower-is-better stats.
func WithInverseStats(stats ...model.Stat) Option {
	return func(e *Engine) {
		e.inverse = make(map[model.Stat]struct{}, len(stats))
		for _, s := range stats {
			e.inverse[s] = struct{}{}
		}
	}
}

// Input bundles everything needed to score one player.
type Input struct {
	Record   model.Record
	Cohort   cohort.Statistics
	Scarcity Scarcity
	Weights  Weights
	// Aggregated selects the <stat>Weighted values of season-summed records.
	Aggregated bool
}

// Result contains the computed score for a player.
type Result struct {
	PlayerID int64
	Score    float64
	// Considered counts the stats that entered the average.
	Considered    int
	Contributions map[model.Stat]float64
}

// Scorer computes a composite score from an input.
type Scorer interface {
	Score(in Input) Result
}

// Resolve returns the value of stat used for scoring. Aggregated records
// are read through their <stat>Weighted value, falling back to the plain
// value when no weighted variant is present.
func Resolve(r model.Record, stat model.Stat, aggregated bool) (float64, bool) {
	if aggregated {
		if v, ok := r.Stats.Lookup(stat.Weighted()); ok {
			return v, true
		}
	}
	return r.Stats.Lookup(stat)
}

// Engine implements Scorer. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	inverse map[model.Stat]struct{}
}

// NewEngine creates an engine with goals-against average as the only
// inverse stat unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		inverse: map[model.Stat]struct{}{model.GoalsAgainstAverage: {}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsInverse reports whether lower values of stat are better.
func (e *Engine) IsInverse(stat model.Stat) bool {
	_, ok := e.inverse[stat]
	return ok
}

// Score averages the weighted, scarcity-adjusted z-scores of every stat
// with a non-zero weight. The total is divided by the number of stats
// considered so that scores stay comparable when the number of active
// weights changes. Stats the player lacks, stats missing from the cohort
// and stats with zero cohort spread are not considered. With nothing
// considered the score is 0.
//
// A zero-spread stat is left out of the divisor even when it carries a
// non-zero weight, so a weight on such a stat never moves the score. For a
// two-player cohort that differs only in goals, weights {goals: 1, shots: 1}
// score the pair -1 and +1 rather than -0.5 and +0.5.
func (e *Engine) Score(in Input) Result {
	res := Result{
		PlayerID:      in.Record.PlayerID,
		Contributions: make(map[model.Stat]float64),
	}
	scarcity := in.Scarcity.Factor(in.Record.Position)

	var total float64
	for _, stat := range in.Weights.Active() {
		weight := in.Weights[stat]
		if e.IsInverse(stat) {
			weight = -weight
		}

		moments, ok := in.Cohort.Get(stat)
		if !ok {
			continue
		}
		raw, ok := Resolve(in.Record, stat, in.Aggregated)
		if !ok {
			continue
		}
		if moments.StdDev == 0 {
			res.Contributions[stat] = 0
			continue
		}

		contribution := moments.Z(raw) * weight * scarcity
		res.Contributions[stat] = contribution
		total += contribution
		res.Considered++
	}

	if res.Considered > 0 {
		res.Score = total / float64(res.Considered)
	}
	return res
}
