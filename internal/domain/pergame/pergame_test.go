package pergame_test

import (
	"testing"

	"github.com/okian/rinkrank/internal/domain/model"
	"github.com/okian/rinkrank/internal/domain/pergame"
	. "github.com/smartystreets/goconvey/convey"
)

func TestToPerGame(t *testing.T) {
	Convey("Given season records", t, func() {
		regular := model.Record{PlayerID: 1, Stats: model.Stats{model.Goals: 40, model.Hits: 20, model.GamesPlayed: 80}}
		idle := model.Record{PlayerID: 2, Stats: model.Stats{model.Goals: 3, model.GamesPlayed: 0}}
		unknownGP := model.Record{PlayerID: 3, Stats: model.Stats{model.Goals: 3}}

		out := pergame.ToPerGame([]model.Record{regular, idle, unknownGP}, pergame.DefaultStats, false)

		Convey("Then counting stats become rates", func() {
			So(out[0].Stats[model.Goals], ShouldEqual, 0.5)
			So(out[0].Stats[model.Hits], ShouldEqual, 0.25)
		})

		Convey("Then games played itself is not converted", func() {
			So(out[0].Stats[model.GamesPlayed], ShouldEqual, 80)
		})

		Convey("Then zero games played leaves stats unchanged", func() {
			So(out[1].Stats[model.Goals], ShouldEqual, 3)
		})

		Convey("Then absent games played leaves stats unchanged", func() {
			So(out[2].Stats[model.Goals], ShouldEqual, 3)
		})

		Convey("Then absent stats stay absent", func() {
			_, ok := out[0].Stats.Lookup(model.Assists)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the input is untouched", func() {
			So(regular.Stats[model.Goals], ShouldEqual, 40)
		})
	})

	Convey("Given an aggregated record", t, func() {
		agg := model.Record{
			PlayerID:   1,
			Aggregated: true,
			Stats: model.Stats{
				model.Goals:                  60,
				model.Goals.Weighted():       300,
				model.GamesPlayed:            120,
				model.GamesPlayed.Weighted(): 600,
			},
		}

		out := pergame.ToPerGame([]model.Record{agg}, []model.Stat{model.Goals}, true)

		Convey("Then plain and weighted values use their matching denominators", func() {
			So(out[0].Stats[model.Goals], ShouldEqual, 0.5)
			So(out[0].Stats[model.Goals.Weighted()], ShouldEqual, 0.5)
		})
	})
}
