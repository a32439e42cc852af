// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the MCP tools and the CLI.
package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/okian/rinkrank/internal/adapters/repository"
	"github.com/okian/rinkrank/internal/domain/aggregate"
	"github.com/okian/rinkrank/internal/domain/cohort"
	"github.com/okian/rinkrank/internal/domain/filter"
	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/pergame"
	"github.com/okian/rinkrank/internal/domain/ranking"
	"github.com/okian/rinkrank/internal/domain/scoring"
	"github.com/okian/rinkrank/internal/domain/types"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

// Service holds a read-only dataset and answers leaderboard queries
// against it. Every query runs the ranking pipeline on its own copy of
// the configuration, so concurrent queries never share mutable state.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	pipeline *ranking.Pipeline

	// Defaults, overridable per query
	skaterWeights scoring.Weights
	goalieWeights scoring.Weights
	scarcity      scoring.Scarcity
	seasonWeights aggregate.SeasonWeights
	perGameStats  []model.Stat
	defaultLimit  int
	maxLimit      int
	locale        language.Tag
	now           func() time.Time

	// State
	started  bool
	records  []model.Record
	loadedAt time.Time
	queries  uint64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		skaterWeights: scoring.Weights{model.Goals: 1, model.Assists: 1},
		goalieWeights: scoring.Weights{model.GoalsAgainstAverage: 1, model.SavePct: 1, model.Wins: 1},
		scarcity:      scoring.Scarcity{},
		seasonWeights: aggregate.SeasonWeights{},
		perGameStats:  pergame.DefaultStats,
		defaultLimit:  50,
		maxLimit:      500,
		locale:        language.English,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pipeline = ranking.New(ranking.WithLocale(s.locale))
	return s
}

// Start loads the dataset.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return fmt.Errorf("start: %w", repository.ErrNoDatasetPath)
	}

	s.logger.Info(ctx, "starting leaderboard service...")
	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("records", len(s.records)),
		logger.Int("defaultLimit", s.defaultLimit),
		logger.Int("maxLimit", s.maxLimit),
	)
	return nil
}

// Reload replaces the dataset with a fresh read of the store. On error
// the previous dataset stays in place.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "load")
		return fmt.Errorf("load dataset: %w", err)
	}
	s.records = records
	s.loadedAt = s.now()
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
	}
	s.started = false
	s.records = nil
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// snapshot returns the loaded dataset and counts the query. The slice is
// never mutated after load, so callers may read it without the lock.
func (s *Service) snapshot() ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	s.queries++
	return s.records, nil
}

func (s *Service) run(ctx context.Context, q types.Query) (ranking.Result, error) {
	records, err := s.snapshot()
	if err != nil {
		return ranking.Result{}, err
	}
	rq, err := s.compile(q)
	if err != nil {
		return ranking.Result{}, err
	}

	start := time.Now()
	res := s.pipeline.Rank(records, rq)
	took := time.Since(start)

	metrics.RecordPipelineRun(rq.SumSeasons, rq.PerGame, float64(took.Microseconds())/1000)
	metrics.UpdateCohortSize(string(model.KindSkater), res.SkaterCount)
	metrics.UpdateCohortSize(string(model.KindGoalie), res.GoalieCount)
	s.logger.Debug(ctx, "pipeline finished",
		logger.Bool("sumSeasons", rq.SumSeasons),
		logger.Bool("perGame", rq.PerGame),
		logger.Int("rows", len(res.Rows)),
		logger.Duration("took", took),
	)
	return res, nil
}

// Leaderboard ranks the dataset and returns one page of it.
func (s *Service) Leaderboard(ctx context.Context, q types.Query) (types.Leaderboard, error) {
	offset, limit, err := s.page(q)
	if err != nil {
		return types.Leaderboard{}, err
	}
	res, err := s.run(ctx, q)
	if err != nil {
		return types.Leaderboard{}, err
	}

	now := s.now()
	total := len(res.Rows)
	end := min(offset+limit, total)
	entries := make([]types.Entry, 0, max(end-offset, 0))
	for i := offset; i < end; i++ {
		entries = append(entries, toEntry(res.Rows[i], i+1, now))
	}
	metrics.RecordLeaderboardRows(len(entries))

	return types.Leaderboard{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		Entries: entries,
		Skaters: toCohort(model.KindSkater, res.SkaterCount, res.Skaters),
		Goalies: toCohort(model.KindGoalie, res.GoalieCount, res.Goalies),
	}, nil
}

// Rank returns the best-placed row of playerID in the full leaderboard
// described by q. Paging fields of q are ignored.
func (s *Service) Rank(ctx context.Context, playerID int64, q types.Query) (types.Entry, error) {
	res, err := s.run(ctx, q)
	if err != nil {
		return types.Entry{}, err
	}
	for i, row := range res.Rows {
		if row.Record.PlayerID == playerID {
			return toEntry(row, i+1, s.now()), nil
		}
	}
	return types.Entry{}, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
}

// Cohort returns the statistics both kinds are scored against for q.
func (s *Service) Cohort(ctx context.Context, q types.Query) (skaters, goalies types.Cohort, err error) {
	res, err := s.run(ctx, q)
	if err != nil {
		return types.Cohort{}, types.Cohort{}, err
	}
	return toCohort(model.KindSkater, res.SkaterCount, res.Skaters),
		toCohort(model.KindGoalie, res.GoalieCount, res.Goalies), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"defaultLimit": s.defaultLimit,
		"maxLimit":     s.maxLimit,
		"queries":      s.queries,
	}
	if s.started {
		var skaters, goalies int
		seasons := map[int]struct{}{}
		for _, r := range s.records {
			if r.Kind == model.KindGoalie {
				goalies++
			} else {
				skaters++
			}
			seasons[r.SeasonID] = struct{}{}
		}
		stats["records"] = len(s.records)
		stats["skaters"] = skaters
		stats["goalies"] = goalies
		stats["seasons"] = len(seasons)
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
	}
	return stats
}

func (s *Service) page(q types.Query) (offset, limit int, err error) {
	if q.Offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", ErrInvalidRequest)
	}
	limit = q.Limit
	switch {
	case limit == 0:
		limit = s.defaultLimit
	case limit < 0:
		return 0, 0, fmt.Errorf("%w: limit must be positive", ErrInvalidRequest)
	case limit > s.maxLimit:
		return 0, 0, fmt.Errorf("%w: limit exceeds %d", ErrInvalidRequest, s.maxLimit)
	}
	return q.Offset, limit, nil
}

// compile validates q and merges its overrides over the service defaults.
func (s *Service) compile(q types.Query) (ranking.Query, error) {
	now := s.now()

	position := strings.ToUpper(strings.TrimSpace(q.Position))
	switch position {
	case "", filter.GroupSkaters, filter.GroupForwards:
	default:
		if _, err := model.ParsePosition(position); err != nil {
			return ranking.Query{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if q.AgeMin < 0 || q.AgeMax < 0 || (q.AgeMax > 0 && q.AgeMin > q.AgeMax) {
		return ranking.Query{}, fmt.Errorf("%w: age range %d..%d", ErrInvalidRequest, q.AgeMin, q.AgeMax)
	}
	if q.MinGamesPlayed < 0 {
		return ranking.Query{}, fmt.Errorf("%w: min games played must not be negative", ErrInvalidRequest)
	}

	keys := make([]string, 0, len(q.Compare))
	for _, k := range q.Compare {
		playerID, seasonID, err := types.ParseKey(k)
		if err != nil {
			return ranking.Query{}, fmt.Errorf("%w: compare: %w", ErrInvalidRequest, err)
		}
		keys = append(keys, types.Entry{PlayerID: playerID, SeasonID: seasonID}.Key())
	}
	compare := filter.NewCompareSet(keys...)

	skater, err := mergeWeights(s.skaterWeights, q.SkaterWeights, model.KindSkater)
	if err != nil {
		return ranking.Query{}, err
	}
	goalie, err := mergeWeights(s.goalieWeights, q.GoalieWeights, model.KindGoalie)
	if err != nil {
		return ranking.Query{}, err
	}

	scarcity := s.scarcity.Clone()
	for code, f := range q.Scarcity {
		pos, err := model.ParsePosition(code)
		if err != nil {
			return ranking.Query{}, fmt.Errorf("%w: scarcity: %w", ErrInvalidRequest, err)
		}
		if !(f > 0) || math.IsInf(f, 0) {
			return ranking.Query{}, fmt.Errorf("%w: scarcity for %s must be positive", ErrInvalidRequest, pos)
		}
		scarcity[pos] = f
	}

	seasons := s.seasonWeights.Clone()
	for id, w := range q.SeasonWeights {
		season, ok := parseSeason(id)
		if !ok || w < 0 || !model.IsPresent(w) {
			return ranking.Query{}, fmt.Errorf("%w: season weight %s=%v", ErrInvalidRequest, id, w)
		}
		seasons[season] = w
	}

	field := strings.TrimSpace(q.SortBy)
	if field == "" {
		field = ranking.FieldScore
	}
	if !ranking.IsSortable(field) {
		return ranking.Query{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidRequest, field)
	}
	var order ranking.Order
	switch strings.ToLower(strings.TrimSpace(q.Order)) {
	case "", string(ranking.Desc):
		order = ranking.Desc
	case string(ranking.Asc):
		order = ranking.Asc
	default:
		return ranking.Query{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidRequest)
	}

	crit := filter.Criteria{
		Position:       position,
		Team:           q.Team,
		Season:         q.Season,
		MinGamesPlayed: q.MinGamesPlayed,
		AgeMin:         q.AgeMin,
		AgeMax:         q.AgeMax,
		CompareOnly:    q.CompareOnly,
		Compare:        compare,
	}

	return ranking.Query{
		Filter:        crit.Predicate(now),
		SumSeasons:    q.SumSeasons,
		PerGame:       q.PerGame,
		PerGameStats:  s.perGameStats,
		SkaterWeights: skater,
		GoalieWeights: goalie,
		Scarcity:      scarcity,
		SeasonWeights: seasons,
		Search:        q.Search,
		Sort:          ranking.Sort{Field: field, Order: order, Now: now},
		Compare:       compare,
	}, nil
}

func mergeWeights(base scoring.Weights, overrides map[string]float64, kind model.Kind) (scoring.Weights, error) {
	extra := make(scoring.Weights, len(overrides))
	for name, w := range overrides {
		stat := model.Stat(name)
		if !model.InVocabulary(kind, stat) {
			return nil, fmt.Errorf("%w: unknown %s stat %q", ErrInvalidRequest, kind, name)
		}
		if !model.IsPresent(w) {
			return nil, fmt.Errorf("%w: weight for %s must be finite", ErrInvalidRequest, name)
		}
		extra[stat] = w
	}
	return base.Merge(extra), nil
}

func parseSeason(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0, false
	}
	return n, n >= 10000000 && n <= 99999999
}

func toEntry(row ranking.Row, rank int, now time.Time) types.Entry {
	r := row.Record
	e := types.Entry{
		Rank:        rank,
		PlayerID:    r.PlayerID,
		SeasonID:    r.SeasonID,
		Name:        r.Name,
		Kind:        string(r.Kind),
		Position:    string(r.Position),
		Team:        r.TeamAbbrevs,
		CurrentTeam: r.CurrentTeam,
		Score:       row.Score,
		Considered:  row.Considered,
		Stats:       make(map[string]float64, len(r.Stats)),
		Selected:    row.Selected,
	}
	if age, ok := model.Age(r.BirthDate, now); ok {
		e.Age = &age
	}
	for k, v := range r.Stats {
		e.Stats[string(k)] = v
	}
	if len(row.Contributions) > 0 {
		e.Contributions = make(map[string]float64, len(row.Contributions))
		for k, v := range row.Contributions {
			e.Contributions[string(k)] = v
		}
	}
	return e
}

func toCohort(kind model.Kind, size int, stats cohort.Statistics) types.Cohort {
	c := types.Cohort{Kind: string(kind), Size: size, Stats: make(map[string]types.StatSummary, len(stats))}
	for k, m := range stats {
		c.Stats[string(k)] = types.StatSummary{Mean: m.Mean, StdDev: m.StdDev, N: m.N}
	}
	return c
}
