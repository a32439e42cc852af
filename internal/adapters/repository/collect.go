package repository

import (
	"context"
	"fmt"

	"github.com/okian/rinkrank/internal/domain/dedupe"
	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

// collect converts rows into records in order, keeping the first row of
// each (playerId, seasonId) key.
func collect(ctx context.Context, o *options, source string, rows []Row) ([]model.Record, error) {
	seen := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(len(rows)))
	out := make([]model.Record, 0, len(rows))
	counts := map[model.Kind]int{}
	duplicates := 0

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := row.Record()
		if err != nil {
			metrics.RecordErrorByComponent("repository", "invalid_row")
			return nil, fmt.Errorf("%s row %d: %w", source, i, err)
		}
		if seen.SeenAndRecord(ctx, rec.Key()) {
			duplicates++
			o.log().Debug(ctx, "duplicate row dropped",
				logger.String("source", source),
				logger.String("key", rec.Key()),
			)
			continue
		}
		out = append(out, rec)
		counts[rec.Kind]++
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyDataset)
	}

	metrics.RecordDatasetDuplicates(duplicates)
	metrics.UpdateDatasetRecords(string(model.KindSkater), counts[model.KindSkater])
	metrics.UpdateDatasetRecords(string(model.KindGoalie), counts[model.KindGoalie])
	if duplicates > 0 {
		o.log().Warn(ctx, "duplicate rows dropped",
			logger.String("source", source),
			logger.Int("duplicates", duplicates),
		)
	}
	return out, nil
}
