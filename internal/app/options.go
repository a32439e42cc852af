package service

import (
	"time"

	"golang.org/x/text/language"

	"github.com/okian/rinkrank/internal/adapters/repository"
	"github.com/okian/rinkrank/internal/config"
	"github.com/okian/rinkrank/internal/domain/aggregate"
	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/scoring"
	"github.com/okian/rinkrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the dataset source read by Start and Reload.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSkaterWeights sets the default skater weights.
func WithSkaterWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w != nil {
			s.skaterWeights = w.Clone()
		}
	}
}

// WithGoalieWeights sets the default goalie weights.
func WithGoalieWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w != nil {
			s.goalieWeights = w.Clone()
		}
	}
}

// WithScarcity sets the default position multipliers.
func WithScarcity(sc scoring.Scarcity) Option {
	return func(s *Service) {
		if sc != nil {
			s.scarcity = sc.Clone()
		}
	}
}

// WithSeasonWeights sets the default season weights used when summing seasons.
func WithSeasonWeights(w aggregate.SeasonWeights) Option {
	return func(s *Service) {
		if w != nil {
			s.seasonWeights = w.Clone()
		}
	}
}

// WithPerGameStats sets the stats divided by games played in per-game mode.
func WithPerGameStats(stats []model.Stat) Option {
	return func(s *Service) {
		if stats != nil {
			s.perGameStats = append([]model.Stat(nil), stats...)
		}
	}
}

// WithLimits sets the default and maximum leaderboard page sizes.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if s.defaultLimit > s.maxLimit {
			s.defaultLimit = s.maxLimit
		}
	}
}

// WithLocale sets the language for name sorting and search.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.locale = tag
	}
}

// WithClock replaces time.Now for age computation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConfig applies the scoring defaults, page limits and locale of a
// validated configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		for _, opt := range []Option{
			WithSkaterWeights(cfg.Skater()),
			WithGoalieWeights(cfg.Goalie()),
			WithScarcity(cfg.ScarcityFactors()),
			WithSeasonWeights(cfg.Seasons()),
			WithPerGameStats(cfg.PerGame()),
			WithLimits(cfg.DefaultLeaderboardLimit, cfg.MaxLeaderboardLimit),
			WithLocale(cfg.Language()),
		} {
			opt(s)
		}
	}
}
