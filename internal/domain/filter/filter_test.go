package filter_test

import (
	"testing"
	"time"

	"github.com/okian/rinkrank/internal/domain/filter"
	"github.com/okian/rinkrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCriteria_Predicate(t *testing.T) {
	now := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	center := model.Record{PlayerID: 1, SeasonID: 20232024, Kind: model.KindSkater, Position: model.Center, TeamAbbrevs: "EDM", BirthDate: "1997-01-13", Stats: model.Stats{model.GamesPlayed: 76}}
	defense := model.Record{PlayerID: 2, SeasonID: 20222023, Kind: model.KindSkater, Position: model.Defenseman, TeamAbbrevs: "COL,NYR", BirthDate: "1998-09-12", Stats: model.Stats{model.GamesPlayed: 20}}
	goalie := model.Record{PlayerID: 3, SeasonID: 20232024, Kind: model.KindGoalie, Position: model.Goalie, TeamAbbrevs: "NYR", Stats: model.Stats{model.GamesPlayed: 55}}

	keep := func(c filter.Criteria) []int64 {
		p := c.Predicate(now)
		var ids []int64
		for _, r := range []model.Record{center, defense, goalie} {
			if p(r) {
				ids = append(ids, r.PlayerID)
			}
		}
		return ids
	}

	Convey("Given position filters", t, func() {
		So(keep(filter.Criteria{}), ShouldResemble, []int64{1, 2, 3})
		So(keep(filter.Criteria{Position: "S"}), ShouldResemble, []int64{1, 2})
		So(keep(filter.Criteria{Position: "f"}), ShouldResemble, []int64{1})
		So(keep(filter.Criteria{Position: "G"}), ShouldResemble, []int64{3})
	})

	Convey("Given team and season filters", t, func() {
		So(keep(filter.Criteria{Team: "nyr"}), ShouldResemble, []int64{2, 3})
		So(keep(filter.Criteria{Season: 20232024}), ShouldResemble, []int64{1, 3})
	})

	Convey("Given a minimum games played", t, func() {
		So(keep(filter.Criteria{MinGamesPlayed: 50}), ShouldResemble, []int64{1, 3})
	})

	Convey("Given an age range", t, func() {
		Convey("Then players without a usable birth date are excluded", func() {
			So(keep(filter.Criteria{AgeMin: 26}), ShouldResemble, []int64{1, 2})
			So(keep(filter.Criteria{AgeMax: 26}), ShouldResemble, []int64{2})
		})
	})

	Convey("Given a comparison list", t, func() {
		compare := filter.NewCompareSet(goalie.Key())

		Convey("Then compare-only keeps listed rows", func() {
			So(keep(filter.Criteria{CompareOnly: true, Compare: compare}), ShouldResemble, []int64{3})
		})

		Convey("Then compare-only with no list keeps nothing", func() {
			So(keep(filter.Criteria{CompareOnly: true}), ShouldBeNil)
		})
	})
}
