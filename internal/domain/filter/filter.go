// Package filter turns leaderboard filter settings into a record predicate.
package filter

import (
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/okian/rinkrank/internal/domain/model"
)

// Position groups accepted in addition to exact position codes.
const (
	GroupSkaters  = "S"
	GroupForwards = "F"
)

// Predicate reports whether a record belongs to the cohort.
type Predicate func(model.Record) bool

// All accepts every record.
func All(model.Record) bool { return true }

// Criteria describes the cohort a user is looking at. Zero values disable
// the corresponding check.
type Criteria struct {
	Position       string
	Team           string
	Season         int
	MinGamesPlayed float64
	AgeMin         int
	AgeMax         int
	CompareOnly    bool
	Compare        mapset.Set[string]
}

// NewCompareSet builds a comparison list from record keys.
func NewCompareSet(keys ...string) mapset.Set[string] {
	return mapset.NewSet[string](keys...)
}

// Predicate compiles the criteria. now anchors age calculations.
func (c Criteria) Predicate(now time.Time) Predicate {
	position := strings.ToUpper(strings.TrimSpace(c.Position))
	team := strings.ToUpper(strings.TrimSpace(c.Team))

	return func(r model.Record) bool {
		if !matchPosition(position, r.Position) {
			return false
		}
		if team != "" && !matchTeam(team, r.TeamAbbrevs) {
			return false
		}
		if c.Season != 0 && r.SeasonID != c.Season {
			return false
		}
		if c.MinGamesPlayed > 0 {
			gp, _ := r.Stats.Lookup(model.GamesPlayed)
			if gp < c.MinGamesPlayed {
				return false
			}
		}
		if c.AgeMin > 0 || c.AgeMax > 0 {
			age, ok := model.Age(r.BirthDate, now)
			if !ok {
				return false
			}
			if c.AgeMin > 0 && age < c.AgeMin {
				return false
			}
			if c.AgeMax > 0 && age > c.AgeMax {
				return false
			}
		}
		if c.CompareOnly {
			if c.Compare == nil || !c.Compare.Contains(r.Key()) {
				return false
			}
		}
		return true
	}
}

func matchPosition(want string, got model.Position) bool {
	switch want {
	case "":
		return true
	case GroupSkaters:
		return got != model.Goalie
	case GroupForwards:
		return got != model.Goalie && got != model.Defenseman
	default:
		return string(got) == want
	}
}

// matchTeam accepts an exact match or membership in a comma separated
// list, which is how traded players list their clubs.
func matchTeam(want, abbrevs string) bool {
	for _, t := range strings.Split(abbrevs, ",") {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}
