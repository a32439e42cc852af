package repository

import (
	"context"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver
	"github.com/jmoiron/sqlx"

	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

const schema = `
	CREATE TABLE IF NOT EXISTS player_seasons (
		player_id INTEGER NOT NULL,
		season_id INTEGER NOT NULL,
		position_code TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		team_abbrevs TEXT NOT NULL DEFAULT '',
		current_team_abbrev TEXT NOT NULL DEFAULT '',
		birth_date TEXT NOT NULL DEFAULT '',
		games_played REAL,
		goals REAL,
		assists REAL,
		points REAL,
		pp_points REAL,
		shots REAL,
		hits REAL,
		blocked_shots REAL,
		goals_against_average REAL,
		save_pct REAL,
		wins REAL,
		goals_against REAL,
		shots_against REAL,
		saves REAL,
		time_on_ice REAL,
		PRIMARY KEY (player_id, season_id)
	);
`

const insertRow = `INSERT OR IGNORE INTO player_seasons (
		player_id, season_id, position_code, name, team_abbrevs, current_team_abbrev, birth_date,
		games_played, goals, assists, points, pp_points, shots, hits, blocked_shots,
		goals_against_average, save_pct, wins, goals_against, shots_against, saves, time_on_ice
	) VALUES (
		:player_id, :season_id, :position_code, :name, :team_abbrevs, :current_team_abbrev, :birth_date,
		:games_played, :goals, :assists, :points, :pp_points, :shots, :hits, :blocked_shots,
		:goals_against_average, :save_pct, :wins, :goals_against, :shots_against, :saves, :time_on_ice
	)`

const selectRows = `SELECT
		player_id, season_id, position_code, name, team_abbrevs, current_team_abbrev, birth_date,
		games_played, goals, assists, points, pp_points, shots, hits, blocked_shots,
		goals_against_average, save_pct, wins, goals_against, shots_against, saves, time_on_ice
	FROM player_seasons ORDER BY rowid`

// SQLStore reads a dataset from the player_seasons table of a SQLite database.
type SQLStore struct {
	db   *sqlx.DB
	dsn  string
	opts options
}

// NewSQLStore opens the database and makes sure the schema exists.
func NewSQLStore(dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		return nil, ErrNoDatasetPath
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLStore{db: db, dsn: dsn, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s, nil
}

// Insert stores rows; a row whose key already exists is ignored so the
// first import wins. It returns the number of rows written.
func (s *SQLStore) Insert(ctx context.Context, rows ...Row) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	written := 0
	for _, row := range rows {
		if _, err := row.Record(); err != nil {
			return 0, err
		}
		if row.SkaterFullName == "" {
			row.SkaterFullName = row.GoalieFullName
		}
		res, err := tx.NamedExecContext(ctx, insertRow, row)
		if err != nil {
			return 0, fmt.Errorf("insert row %s: %w", row.Key(), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return written, nil
}

// Load reads every row in insertion order.
func (s *SQLStore) Load(ctx context.Context) ([]model.Record, error) {
	start := time.Now()
	var rows []Row
	if err := s.db.SelectContext(ctx, &rows, selectRows); err != nil {
		metrics.RecordDatasetLoadError("sqlite")
		return nil, fmt.Errorf("select rows: %w", err)
	}

	records, err := collect(ctx, &s.opts, s.dsn, rows)
	if err != nil {
		metrics.RecordDatasetLoadError("sqlite")
		return nil, err
	}

	took := time.Since(start)
	metrics.RecordDatasetLoad(float64(took.Microseconds())/1000, time.Now().Unix())
	s.opts.log().Info(ctx, "dataset loaded",
		logger.String("dsn", s.dsn),
		logger.Int("records", len(records)),
		logger.Duration("took", took),
	)
	return records, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
