package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jessevdk/go-flags"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rinkrank/pkg/logger"
)

const rows = `[
	{"playerId": 1, "seasonId": 20232024, "positionCode": "C", "skaterFullName": "Player One",
	 "teamAbbrevs": "EDM", "gamesPlayed": 82, "goals": 10},
	{"playerId": 2, "seasonId": 20232024, "positionCode": "D", "skaterFullName": "Player Two",
	 "teamAbbrevs": "TOR", "gamesPlayed": 82, "goals": 20},
	{"playerId": 3, "seasonId": 20232024, "positionCode": "G", "goalieFullName": "Goalie Three",
	 "gamesPlayed": 50, "wins": 25}
]`

func TestMain(m *testing.M) {
	if err := logger.InitWithOptions(logger.Options{Level: "error"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2023.json"), []byte(rows), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return dir
}

func TestRankCmd(t *testing.T) {
	Convey("Given a JSON dataset", t, func() {
		dir := writeDataset(t)
		var buf bytes.Buffer

		Convey("When ranking skaters", func() {
			err := RankCmd{Data: dir, Position: "S", out: &buf}.run(context.Background())

			Convey("Then a skater table with the mean player is printed", func() {
				So(err, ShouldBeNil)
				out := buf.String()
				So(out, ShouldContainSubstring, "skaters (2 in cohort)")
				So(out, ShouldContainSubstring, "Mean skater")
				So(out, ShouldNotContainSubstring, "Goalie Three")
				So(strings.Index(out, "Player Two"), ShouldBeLessThan, strings.Index(out, "Player One"))
			})
		})

		Convey("When the query is invalid", func() {
			err := RankCmd{Data: dir, Position: "Q", out: &buf}.run(context.Background())
			So(err, ShouldNotBeNil)
		})

		Convey("When the dataset is missing", func() {
			err := RankCmd{Data: filepath.Join(dir, "missing"), out: &buf}.run(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestImportCmd(t *testing.T) {
	Convey("Given a JSON dataset and an empty database", t, func() {
		dir := writeDataset(t)
		db := filepath.Join(t.TempDir(), "rink.db")
		var buf bytes.Buffer

		Convey("When importing twice", func() {
			So(ImportCmd{From: dir, To: db, out: &buf}.run(context.Background()), ShouldBeNil)
			So(ImportCmd{From: dir, To: db, out: &buf}.run(context.Background()), ShouldBeNil)

			Convey("Then the second import writes nothing", func() {
				So(buf.String(), ShouldContainSubstring, "imported 3 of 3 rows")
				So(buf.String(), ShouldContainSubstring, "imported 0 of 3 rows")
			})

			Convey("Then the database can be ranked", func() {
				var table bytes.Buffer
				err := RankCmd{SQLite: db, out: &table}.run(context.Background())
				So(err, ShouldBeNil)
				So(table.String(), ShouldContainSubstring, "Goalie Three")
				So(table.String(), ShouldContainSubstring, "showing 3 of 3")
			})
		})
	})
}

func TestFlags(t *testing.T) {
	Convey("Given rank command flags", t, func() {
		var opts struct {
			Rank RankCmd `command:"rank"`
		}
		p := flags.NewParser(&opts, flags.None)
		p.CommandHandler = func(flags.Commander, []string) error { return nil }

		_, err := p.ParseArgs([]string{"rank", "--data", "d", "-p", "F", "--sum",
			"--skater", "hits:0.25", "--skater", "goals:2", "--compare", "1:20232024", "--order", "asc", "-n", "5"})

		Convey("Then they map onto the leaderboard query", func() {
			So(err, ShouldBeNil)
			q := opts.Rank.query()
			So(q.Position, ShouldEqual, "F")
			So(q.SumSeasons, ShouldBeTrue)
			So(q.SkaterWeights, ShouldResemble, map[string]float64{"hits": 0.25, "goals": 2})
			So(q.Compare, ShouldResemble, []string{"1:20232024"})
			So(q.Order, ShouldEqual, "asc")
			So(q.Limit, ShouldEqual, 5)
		})

		Convey("Then an unknown order is rejected", func() {
			_, err := p.ParseArgs([]string{"rank", "--order", "up"})
			So(err, ShouldNotBeNil)
		})
	})
}
