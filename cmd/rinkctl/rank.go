package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rinkrank/internal/adapters/repository"
	app "github.com/okian/rinkrank/internal/app"
	"github.com/okian/rinkrank/internal/config"
	"github.com/okian/rinkrank/internal/domain/types"
	"github.com/okian/rinkrank/internal/report"
	"github.com/okian/rinkrank/pkg/logger"
)

// RankCmd ranks a dataset and prints one page of it.
type RankCmd struct {
	Config string `long:"config" env:"RINK_CONFIG" description:"YAML config file"`
	Data   string `long:"data" description:"JSON file or directory of JSON files (overrides config)"`
	SQLite string `long:"sqlite" description:"SQLite dataset (overrides --data and config)"`

	Position   string   `long:"position" short:"p" description:"S, F, C, L, R, D or G"`
	Team       string   `long:"team" description:"comma-separated team abbreviations"`
	Season     int      `long:"season" description:"season id, e.g. 20232024"`
	MinGames   float64  `long:"min-games" description:"minimum games played"`
	AgeMin     int      `long:"age-min" description:"minimum age"`
	AgeMax     int      `long:"age-max" description:"maximum age"`
	Compare    []string `long:"compare" description:"playerId:seasonId to mark; repeatable"`
	OnlyMarked bool     `long:"compare-only" description:"show only marked rows"`
	SumSeasons bool     `long:"sum" description:"combine each player's seasons"`
	PerGame    bool     `long:"per-game" description:"divide counting stats by games played"`
	Search     string   `long:"search" short:"s" description:"name filter"`
	SortBy     string   `long:"sort" description:"score, a stat key, name, team, position or age"`
	Order      string   `long:"order" choice:"asc" choice:"desc" description:"sort direction"`
	Offset     int      `long:"offset" description:"rows to skip"`
	Limit      int      `long:"limit" short:"n" description:"rows to show"`

	Skater   map[string]float64 `long:"skater" description:"skater weight override, stat:weight"`
	Goalie   map[string]float64 `long:"goalie" description:"goalie weight override, stat:weight"`
	Scarcity map[string]float64 `long:"scarcity" description:"position multiplier, POS:factor"`
	Seasons  map[string]float64 `long:"season-weight" description:"season weight, seasonId:weight"`

	out io.Writer
}

// Execute runs the command.
func (c RankCmd) Execute([]string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.run(ctx)
}

func (c RankCmd) run(ctx context.Context) error {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithStore(store),
		app.WithConfig(cfg),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	defer svc.Stop()

	lb, err := svc.Leaderboard(ctx, c.query())
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	return report.Render(out, lb)
}

func (c RankCmd) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadFile(ctx, c.Config)
	if err != nil {
		return nil, err
	}
	switch {
	case c.SQLite != "":
		cfg.DataSource, cfg.SQLiteDSN = config.SourceSQLite, c.SQLite
	case c.Data != "":
		cfg.DataSource, cfg.DataDir = config.SourceJSON, c.Data
	}
	return cfg, nil
}

func (c RankCmd) query() types.Query {
	return types.Query{
		Position:       c.Position,
		Team:           c.Team,
		Season:         c.Season,
		MinGamesPlayed: c.MinGames,
		AgeMin:         c.AgeMin,
		AgeMax:         c.AgeMax,
		Compare:        c.Compare,
		CompareOnly:    c.OnlyMarked,
		SumSeasons:     c.SumSeasons,
		PerGame:        c.PerGame,
		Search:         c.Search,
		SortBy:         c.SortBy,
		Order:          c.Order,
		SkaterWeights:  c.Skater,
		GoalieWeights:  c.Goalie,
		Scarcity:       c.Scarcity,
		SeasonWeights:  c.Seasons,
		Offset:         c.Offset,
		Limit:          c.Limit,
	}
}

func openStore(cfg *config.Config) (repository.Store, error) {
	opts := []repository.Option{repository.WithLogger(logger.Named("repository"))}
	if cfg.DataSource == config.SourceSQLite {
		store, err := repository.NewSQLStore(cfg.SQLiteDSN, opts...)
		if err != nil {
			return nil, fmt.Errorf("open sqlite dataset: %w", err)
		}
		return store, nil
	}
	return repository.NewJSONStore(cfg.DataDir, opts...), nil
}
