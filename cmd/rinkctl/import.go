package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/rinkrank/internal/adapters/repository"
	"github.com/okian/rinkrank/pkg/logger"
)

// ImportCmd copies JSON exports into a SQLite dataset. Rows whose
// (playerId, seasonId) already exist are skipped.
type ImportCmd struct {
	From string `long:"from" required:"true" description:"JSON file or directory of JSON files"`
	To   string `long:"to" required:"true" description:"SQLite database file"`

	out io.Writer
}

// Execute runs the command.
func (c ImportCmd) Execute([]string) error {
	return c.run(context.Background())
}

func (c ImportCmd) run(ctx context.Context) error {
	log := logger.Named("import")

	rows, err := repository.NewJSONStore(c.From, repository.WithLogger(log)).Rows(ctx)
	if err != nil {
		return err
	}

	db, err := repository.NewSQLStore(c.To, repository.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn(ctx, "close database", logger.Error(cerr))
		}
	}()

	written, err := db.Insert(ctx, rows...)
	if err != nil {
		return fmt.Errorf("import %s: %w", c.From, err)
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintf(out, "imported %d of %d rows into %s\n", written, len(rows), c.To)
	return err
}
