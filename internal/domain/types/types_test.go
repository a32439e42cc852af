package types_test

import (
	"testing"

	"github.com/okian/rinkrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryKey(t *testing.T) {
	Convey("Given an entry", t, func() {
		e := types.Entry{PlayerID: 8478402, SeasonID: 20232024}

		Convey("Then its key round-trips through ParseKey", func() {
			So(e.Key(), ShouldEqual, "8478402:20232024")
			p, s, err := types.ParseKey(e.Key())
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 8478402)
			So(s, ShouldEqual, 20232024)
		})
	})

	Convey("Given malformed keys", t, func() {
		for _, key := range []string{"", "8478402", "x:20232024", "8478402:y"} {
			_, _, err := types.ParseKey(key)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestCohortMeanPlayer(t *testing.T) {
	Convey("Given a cohort summary", t, func() {
		c := types.Cohort{Kind: "skater", Size: 2, Stats: map[string]types.StatSummary{
			"goals": {Mean: 15, StdDev: 5, N: 2},
			"shots": {Mean: 100, N: 2},
		}}

		Convey("Then the mean player carries every stat mean", func() {
			So(c.MeanPlayer(), ShouldResemble, map[string]float64{"goals": 15, "shots": 100})
		})
	})
}
