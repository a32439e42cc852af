package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

// JSONStore reads a dataset from a JSON file or from every *.json file in
// a directory. Each file holds either an array of rows or an API page
// object with the rows under "data".
type JSONStore struct {
	path string
	opts options
}

// NewJSONStore creates a store rooted at path.
func NewJSONStore(path string, opts ...Option) *JSONStore {
	s := &JSONStore{path: path, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Files lists the dataset files in load order.
func (s *JSONStore) Files() ([]string, error) {
	if s.path == "" {
		return nil, ErrNoDatasetPath
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if !info.IsDir() {
		return []string{s.path}, nil
	}
	files, err := filepath.Glob(filepath.Join(s.path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list dataset: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Rows decodes all files concurrently and returns their rows in file-name
// order, without validation or deduplication.
func (s *JSONStore) Rows(ctx context.Context) ([]Row, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", s.path, ErrEmptyDataset)
	}

	parts := make([][]Row, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := readRows(file)
			if err != nil {
				return err
			}
			parts[i] = rows
			metrics.RecordDatasetFileLoaded()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	rows := make([]Row, 0, total)
	for _, p := range parts {
		rows = append(rows, p...)
	}
	s.opts.log().Debug(ctx, "dataset files read",
		logger.String("path", s.path),
		logger.Int("files", len(files)),
		logger.Int("rows", len(rows)),
	)
	return rows, nil
}

// Load reads every row and converts them to records, dropping duplicates.
func (s *JSONStore) Load(ctx context.Context) ([]model.Record, error) {
	start := time.Now()
	rows, err := s.Rows(ctx)
	if err != nil {
		metrics.RecordDatasetLoadError("json")
		return nil, err
	}

	records, err := collect(ctx, &s.opts, s.path, rows)
	if err != nil {
		metrics.RecordDatasetLoadError("json")
		return nil, err
	}

	took := time.Since(start)
	metrics.RecordDatasetLoad(float64(took.Microseconds())/1000, time.Now().Unix())
	s.opts.log().Info(ctx, "dataset loaded",
		logger.String("path", s.path),
		logger.Int("rows", len(rows)),
		logger.Int("records", len(records)),
		logger.Duration("took", took),
	)
	return records, nil
}

type page struct {
	Data []Row `json:"data"`
}

func readRows(file string) ([]Row, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '{' {
		var p page
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return p.Data, nil
	}

	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return rows, nil
}
