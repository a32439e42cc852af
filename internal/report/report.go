// Package report renders leaderboards as plain-text tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/syohex/go-texttable"

	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/types"
)

const missing = "-"

// Render writes one table per kind present in lb, each closed by a row
// holding the cohort means.
func Render(w io.Writer, lb types.Leaderboard) error {
	for _, part := range []struct {
		kind   model.Kind
		cohort types.Cohort
	}{
		{model.KindSkater, lb.Skaters},
		{model.KindGoalie, lb.Goalies},
	} {
		entries := byKind(lb.Entries, part.kind)
		if len(entries) == 0 {
			continue
		}
		out, err := Table(part.kind, entries, part.cohort)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%ss (%d in cohort)\n%s\n", part.kind, part.cohort.Size, out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "showing %d of %d\n", len(lb.Entries), lb.Total); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Table renders entries of one kind with the kind's stat columns. A
// non-empty cohort adds the mean player as the last row.
func Table(kind model.Kind, entries []types.Entry, cohort types.Cohort) (string, error) {
	stats := model.Vocabulary(kind)

	tbl := &texttable.TextTable{}
	header := []string{"#", "Name", "Pos", "Team", "Season", "Score"}
	for _, s := range stats {
		header = append(header, string(s))
	}
	if err := tbl.SetHeader(header...); err != nil {
		return "", fmt.Errorf("table header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.Position,
			e.Team,
			strconv.Itoa(e.SeasonID),
			strconv.FormatFloat(e.Score, 'f', 3, 64),
		}
		for _, s := range stats {
			v, ok := e.Stats[string(s)]
			row = append(row, formatStat(v, ok))
		}
		if err := tbl.AddRow(row...); err != nil {
			return "", fmt.Errorf("table row: %w", err)
		}
	}

	if len(cohort.Stats) > 0 {
		mean := cohort.MeanPlayer()
		row := []string{"", "Mean " + string(kind), "", "", "", strconv.FormatFloat(0, 'f', 3, 64)}
		for _, s := range stats {
			v, ok := mean[string(s)]
			row = append(row, formatStat(v, ok))
		}
		if err := tbl.AddRow(row...); err != nil {
			return "", fmt.Errorf("table row: %w", err)
		}
	}
	return tbl.Draw(), nil
}

func byKind(entries []types.Entry, kind model.Kind) []types.Entry {
	var out []types.Entry
	for _, e := range entries {
		if e.Kind == string(kind) {
			out = append(out, e)
		}
	}
	return out
}

func formatStat(v float64, ok bool) string {
	if !ok || !model.IsPresent(v) {
		return missing
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
