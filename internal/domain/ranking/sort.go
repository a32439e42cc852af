package ranking

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"

	"github.com/okian/rinkrank/internal/domain/model"
)

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sortable fields besides stat names.
const (
	FieldScore       = "score"
	FieldName        = "name"
	FieldTeam        = "team"
	FieldCurrentTeam = "currentTeam"
	FieldPosition    = "position"
	FieldSeason      = "seasonId"
	FieldPlayer      = "playerId"
	FieldAge         = "age"
	FieldCompare     = "compare"
)

// IsSortable reports whether field names a sortable column: one of the
// Field constants or a stat of either vocabulary.
func IsSortable(field string) bool {
	switch field {
	case FieldScore, "zScore", FieldName, FieldTeam, FieldCurrentTeam, FieldPosition,
		FieldSeason, FieldPlayer, FieldAge, FieldCompare:
		return true
	}
	stat := model.Stat(field)
	return model.InVocabulary(model.KindSkater, stat) || model.InVocabulary(model.KindGoalie, stat)
}

// Sort selects the ordering. The zero value sorts by score, descending.
type Sort struct {
	Field string
	Order Order
	// Now anchors the age column; zero means time.Now.
	Now time.Time
}

func (s Sort) normalize() Sort {
	if s.Field == "" {
		s.Field = FieldScore
	}
	if s.Order != Asc {
		s.Order = Desc
	}
	if s.Now.IsZero() {
		s.Now = time.Now()
	}
	return s
}

// cell is one sortable value; an unset cell is a missing value.
type cell struct {
	set   bool
	isNum bool
	num   float64
	str   string
}

func num(v float64) cell { return cell{set: true, isNum: true, num: v} }
func text(s string) cell { return cell{set: true, str: s} }
func numIf(v float64, ok bool) cell {
	if !ok {
		return cell{}
	}
	return num(v)
}

func (s Sort) cellOf(row Row) cell {
	r := row.Record
	switch s.Field {
	case FieldScore, "zScore":
		return num(row.Score)
	case FieldName:
		return textIf(r.Name)
	case FieldTeam:
		return textIf(r.TeamAbbrevs)
	case FieldCurrentTeam:
		return textIf(r.CurrentTeam)
	case FieldPosition:
		return textIf(string(r.Position))
	case FieldSeason:
		return num(float64(r.SeasonID))
	case FieldPlayer:
		return num(float64(r.PlayerID))
	case FieldAge:
		age, ok := model.Age(r.BirthDate, s.Now)
		return numIf(float64(age), ok)
	default:
		return numIf(r.Stats.Lookup(model.Stat(s.Field)))
	}
}

func textIf(s string) cell {
	if strings.TrimSpace(s) == "" {
		return cell{}
	}
	return text(s)
}

// sort orders rows in place with a stable comparator. Missing values go
// last in both directions. The compare column puts selected rows first
// when descending and last when ascending; rows with the same selection
// keep their input order.
func (p *Pipeline) sort(rows []Row, by Sort) {
	by = by.normalize()
	desc := by.Order == Desc

	if by.Field == FieldCompare {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].Selected, rows[j].Selected
			if a == b {
				return false
			}
			if desc {
				return a
			}
			return b
		})
		return
	}

	coll := collate.New(p.locale)
	cells := make([]cell, len(rows))
	for i, row := range rows {
		cells[i] = by.cellOf(row)
	}
	// Sort an index permutation so cells stay aligned with rows.
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return compare(coll, cells[idx[i]], cells[idx[j]], desc) < 0
	})

	sorted := make([]Row, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
}

func compare(coll *collate.Collator, a, b cell, desc bool) int {
	switch {
	case !a.set && !b.set:
		return 0
	case !a.set:
		return 1
	case !b.set:
		return -1
	}

	var c int
	switch {
	case a.isNum && b.isNum:
		switch {
		case a.num < b.num:
			c = -1
		case a.num > b.num:
			c = 1
		}
	case !a.isNum && !b.isNum:
		c = coll.CompareString(a.str, b.str)
	default:
		return 0
	}
	if desc {
		return -c
	}
	return c
}
