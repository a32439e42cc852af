// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Validate before use; typed accessors assume a validated Config.
package config

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/okian/rinkrank/internal/domain/aggregate"
	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/pergame"
	"github.com/okian/rinkrank/internal/domain/scoring"
)

// Dataset sources.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataSource selects the dataset reader: json or sqlite.
	DataSource string `koanf:"data_source"`

	// DataDir is a JSON file or a directory of *.json files.
	DataDir string `koanf:"data_dir"`

	// SQLiteDSN is the database used when DataSource is sqlite.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// MaxLeaderboardLimit caps the leaderboard page size.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultLeaderboardLimit applies when a request sets no limit.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// SkaterWeights and GoalieWeights map stat keys to signed weights.
	SkaterWeights map[string]float64 `koanf:"skater_weights"`
	GoalieWeights map[string]float64 `koanf:"goalie_weights"`

	// Scarcity maps position codes to multipliers.
	Scarcity map[string]float64 `koanf:"scarcity"`

	// SeasonWeights maps 8-digit season ids to aggregation weights.
	SeasonWeights map[string]float64 `koanf:"season_weights"`

	// PerGameStats lists stats divided by games played in per-game mode.
	PerGameStats []string `koanf:"per_game_stats"`

	// Locale drives name collation and case folding.
	Locale string `koanf:"locale"`

	// MCPEnabled mounts the MCP tool server at MCPPath.
	MCPEnabled bool   `koanf:"mcp_enabled"`
	MCPPath    string `koanf:"mcp_path"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DataSource:              SourceJSON,
		DataDir:                 "data",
		SQLiteDSN:               "rinkrank.db",
		MaxLeaderboardLimit:     500,
		DefaultLeaderboardLimit: 50,
		SkaterWeights: map[string]float64{
			"goals":        1,
			"assists":      1,
			"points":       0,
			"ppPoints":     0.5,
			"shots":        0.5,
			"hits":         0.5,
			"blockedShots": 0.5,
		},
		GoalieWeights: map[string]float64{
			"goalsAgainstAverage": 1,
			"savePct":             1,
			"wins":                1,
		},
		Scarcity: map[string]float64{
			"C": 1,
			"L": 1,
			"R": 1,
			"D": 1.2,
			"G": 1,
		},
		SeasonWeights: map[string]float64{
			"20212022": 1,
			"20222023": 4,
			"20232024": 7,
		},
		PerGameStats: statNames(pergame.DefaultStats),
		Locale:       "en",
		MCPEnabled:   true,
		MCPPath:      "/mcp",
	}
}

func statNames(stats []model.Stat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = string(s)
	}
	return out
}

// Validate checks the configuration and canonicalizes stat keys and
// position codes in place.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.DataSource {
	case SourceJSON:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
		}
	case SourceSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("%w: sqlite_dsn must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownSource, c.DataSource)
	}
	if c.MaxLeaderboardLimit <= 0 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if c.DefaultLeaderboardLimit <= 0 || c.DefaultLeaderboardLimit > c.MaxLeaderboardLimit {
		return fmt.Errorf("%w: default_leaderboard_limit must be in 1..%d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	}

	var err error
	if c.SkaterWeights, err = canonicalWeights("skater_weights", model.KindSkater, c.SkaterWeights); err != nil {
		return err
	}
	if c.GoalieWeights, err = canonicalWeights("goalie_weights", model.KindGoalie, c.GoalieWeights); err != nil {
		return err
	}

	scarcity := make(map[string]float64, len(c.Scarcity))
	for code, f := range c.Scarcity {
		pos, err := model.ParsePosition(code)
		if err != nil {
			return fmt.Errorf("%w: scarcity: %w", ErrInvalidConfig, err)
		}
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: scarcity for %s must be positive and finite", ErrInvalidConfig, pos)
		}
		scarcity[string(pos)] = f
	}
	c.Scarcity = scarcity

	for id, w := range c.SeasonWeights {
		if _, err := parseSeason(id); err != nil {
			return err
		}
		if w < 0 || !model.IsPresent(w) {
			return fmt.Errorf("%w: season weight for %s must be finite and not negative", ErrInvalidConfig, id)
		}
	}

	perGame := make([]string, 0, len(c.PerGameStats))
	for _, name := range c.PerGameStats {
		stat, ok := canonicalStat(name, model.KindSkater, model.KindGoalie)
		if !ok {
			return fmt.Errorf("%w: per_game_stats: unknown stat %q", ErrInvalidConfig, name)
		}
		perGame = append(perGame, string(stat))
	}
	c.PerGameStats = perGame

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w: locale %q: %w", ErrInvalidConfig, c.Locale, err)
	}
	if c.MCPEnabled && !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("%w: mcp_path must start with /", ErrInvalidConfig)
	}
	return nil
}

func canonicalWeights(field string, kind model.Kind, in map[string]float64) (map[string]float64, error) {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	// Canonically spelled keys first so that differently cased overrides
	// from the environment win deterministically.
	sort.Slice(names, func(i, j int) bool {
		ci, cj := isCanonical(names[i], kind), isCanonical(names[j], kind)
		if ci != cj {
			return ci
		}
		return names[i] < names[j]
	})

	out := make(map[string]float64, len(in))
	for _, name := range names {
		stat, ok := canonicalStat(name, kind)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown %s stat %q", ErrInvalidConfig, field, kind, name)
		}
		if !model.IsPresent(in[name]) {
			return nil, fmt.Errorf("%w: %s: weight for %s must be finite", ErrInvalidConfig, field, stat)
		}
		out[string(stat)] = in[name]
	}
	return out, nil
}

func isCanonical(name string, kind model.Kind) bool {
	return model.InVocabulary(kind, model.Stat(name))
}

// canonicalStat matches name case-insensitively so that env overrides,
// which arrive lower-cased, resolve to camelCase stat keys.
func canonicalStat(name string, kinds ...model.Kind) (model.Stat, bool) {
	for _, kind := range kinds {
		for _, stat := range model.Vocabulary(kind) {
			if strings.EqualFold(string(stat), strings.TrimSpace(name)) {
				return stat, true
			}
		}
	}
	return "", false
}

func parseSeason(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 10000000 || n > 99999999 {
		return 0, fmt.Errorf("%w: season id %q must have 8 digits", ErrInvalidConfig, id)
	}
	return n, nil
}

// Skater returns the skater weights. Call on a validated Config.
func (c *Config) Skater() scoring.Weights { return toWeights(c.SkaterWeights) }

// Goalie returns the goalie weights. Call on a validated Config.
func (c *Config) Goalie() scoring.Weights { return toWeights(c.GoalieWeights) }

func toWeights(in map[string]float64) scoring.Weights {
	out := make(scoring.Weights, len(in))
	for k, v := range in {
		out[model.Stat(k)] = v
	}
	return out
}

// ScarcityFactors returns the position multipliers. Call on a validated Config.
func (c *Config) ScarcityFactors() scoring.Scarcity {
	out := make(scoring.Scarcity, len(c.Scarcity))
	for k, v := range c.Scarcity {
		out[model.Position(k)] = v
	}
	return out
}

// Seasons returns the season weights. Call on a validated Config.
func (c *Config) Seasons() aggregate.SeasonWeights {
	out := make(aggregate.SeasonWeights, len(c.SeasonWeights))
	for k, v := range c.SeasonWeights {
		if id, err := parseSeason(k); err == nil {
			out[id] = v
		}
	}
	return out
}

// PerGame returns the per-game stat list. Call on a validated Config.
func (c *Config) PerGame() []model.Stat {
	out := make([]model.Stat, len(c.PerGameStats))
	for i, s := range c.PerGameStats {
		out[i] = model.Stat(s)
	}
	return out
}

// Language returns the configured locale, English when unparsable.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
