// Package ranking runs the leaderboard pipeline: filter, optional season
// aggregation, optional per-game conversion, cohort statistics, scoring,
// name search and sorting.
package ranking

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/rinkrank/internal/domain/aggregate"
	"github.com/okian/rinkrank/internal/domain/cohort"
	"github.com/okian/rinkrank/internal/domain/filter"
	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/pergame"
	"github.com/okian/rinkrank/internal/domain/scoring"
)

// Query is the full, by-value configuration of one pipeline run.
type Query struct {
	Filter     filter.Predicate
	SumSeasons bool
	PerGame    bool
	// PerGameStats defaults to pergame.DefaultStats when nil.
	PerGameStats  []model.Stat
	SkaterWeights scoring.Weights
	GoalieWeights scoring.Weights
	Scarcity      scoring.Scarcity
	SeasonWeights aggregate.SeasonWeights
	// Search keeps rows whose name contains the term, ignoring case.
	Search  string
	Sort    Sort
	Compare mapset.Set[string]
}

// Row is one scored leaderboard line.
type Row struct {
	Record        model.Record
	Score         float64
	Considered    int
	Contributions map[model.Stat]float64
	Selected      bool
}

// Result is the ordered leaderboard plus the cohort statistics it was
// scored against.
type Result struct {
	Rows        []Row
	Skaters     cohort.Statistics
	Goalies     cohort.Statistics
	SkaterCount int
	GoalieCount int
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithScorer replaces the scoring engine.
func WithScorer(s scoring.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithLocale sets the language used for string sorting and case folding.
func WithLocale(tag language.Tag) Option {
	return func(p *Pipeline) {
		p.locale = tag
	}
}

// Pipeline is stateless between runs; it only carries its collaborators.
type Pipeline struct {
	scorer scoring.Scorer
	locale language.Tag
}

// New creates a pipeline with the default scoring engine and English collation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer: scoring.NewEngine(),
		locale: language.English,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rank runs the pipeline over records. records are not modified and the
// result shares no mutable state with them.
func (p *Pipeline) Rank(records []model.Record, q Query) Result {
	pred := q.Filter
	if pred == nil {
		pred = filter.All
	}

	cohortRows := make([]model.Record, 0, len(records))
	for _, r := range records {
		if pred(r) {
			cohortRows = append(cohortRows, r.Clone())
		}
	}

	selected := selectedPlayers(cohortRows, q.Compare)
	if q.SumSeasons {
		cohortRows = aggregate.Aggregate(cohortRows, q.SeasonWeights)
	}
	if q.PerGame {
		stats := q.PerGameStats
		if stats == nil {
			stats = pergame.DefaultStats
		}
		cohortRows = pergame.ToPerGame(cohortRows, stats, q.SumSeasons)
	}

	var skaters, goalies []model.Record
	for _, r := range cohortRows {
		if r.Kind == model.KindGoalie {
			goalies = append(goalies, r)
		} else {
			skaters = append(skaters, r)
		}
	}

	res := Result{
		Skaters:     Summarize(skaters, model.KindSkater, q.SumSeasons),
		Goalies:     Summarize(goalies, model.KindGoalie, q.SumSeasons),
		SkaterCount: len(skaters),
		GoalieCount: len(goalies),
	}

	rows := make([]Row, 0, len(cohortRows))
	for _, r := range cohortRows {
		in := scoring.Input{
			Record:     r,
			Cohort:     res.Skaters,
			Scarcity:   q.Scarcity,
			Weights:    q.SkaterWeights,
			Aggregated: q.SumSeasons,
		}
		if r.Kind == model.KindGoalie {
			in.Cohort = res.Goalies
			in.Weights = q.GoalieWeights
		}
		scored := p.scorer.Score(in)
		rows = append(rows, Row{
			Record:        r,
			Score:         scored.Score,
			Considered:    scored.Considered,
			Contributions: scored.Contributions,
			Selected:      selected.Contains(r.PlayerID),
		})
	}

	rows = p.search(rows, q.Search)
	p.sort(rows, q.Sort)
	res.Rows = rows
	return res
}

// selectedPlayers resolves the comparison list against per-season keys
// before aggregation, so an aggregated row is selected when any of its
// seasons was.
func selectedPlayers(records []model.Record, compare mapset.Set[string]) mapset.Set[int64] {
	out := mapset.NewThreadUnsafeSet[int64]()
	if compare == nil || compare.Cardinality() == 0 {
		return out
	}
	for _, r := range records {
		if compare.Contains(r.Key()) {
			out.Add(r.PlayerID)
		}
	}
	return out
}

// Summarize computes the cohort statistics of one kind over its whole
// vocabulary, reading the same values the scorer reads.
func Summarize(records []model.Record, kind model.Kind, aggregated bool) cohort.Statistics {
	keys := model.Vocabulary(kind)
	bags := make([]model.Stats, len(records))
	for i, r := range records {
		bag := make(model.Stats, len(keys))
		for _, k := range keys {
			if v, ok := scoring.Resolve(r, k, aggregated); ok {
				bag[k] = v
			}
		}
		bags[i] = bag
	}
	return cohort.Summarize(bags, keys)
}

func (p *Pipeline) search(rows []Row, term string) []Row {
	term = strings.TrimSpace(term)
	if term == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := rows[:0]
	for _, row := range rows {
		if strings.Contains(fold.String(row.Record.Name), needle) {
			out = append(out, row)
		}
	}
	return out
}
