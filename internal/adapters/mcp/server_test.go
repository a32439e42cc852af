package mcp

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/rinkrank/internal/app"
	"github.com/okian/rinkrank/internal/domain/types"
	"github.com/okian/rinkrank/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubService struct {
	err       error
	lastQuery types.Query
	lastID    int64
}

func (s *stubService) Leaderboard(_ context.Context, q types.Query) (types.Leaderboard, error) {
	s.lastQuery = q
	return types.Leaderboard{Total: 1, Entries: []types.Entry{{Rank: 1, PlayerID: 7, Name: "Seven", Score: 1.5}}}, s.err
}

func (s *stubService) Rank(_ context.Context, id int64, q types.Query) (types.Entry, error) {
	s.lastID, s.lastQuery = id, q
	return types.Entry{Rank: 3, PlayerID: id}, s.err
}

func (s *stubService) Cohort(_ context.Context, q types.Query) (types.Cohort, types.Cohort, error) {
	s.lastQuery = q
	return types.Cohort{Kind: "skater", Size: 2, Stats: map[string]types.StatSummary{"goals": {Mean: 15, StdDev: 5, N: 2}}},
		types.Cohort{Kind: "goalie"}, s.err
}

func text(res *gomcp.CallToolResult) string {
	return res.Content[0].(*gomcp.TextContent).Text
}

func TestTools(t *testing.T) {
	Convey("Given an MCP server over a stub service", t, func() {
		svc := &stubService{}
		srv, err := New(svc, WithVersion("test"))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When the leaderboard tool is called", func() {
			res, _, err := srv.Leaderboard(ctx, nil, LeaderboardArgs{Position: "F", PerGame: true, Limit: 5,
				SkaterWeights: map[string]float64{"hits": 0}})

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(svc.lastQuery.Position, ShouldEqual, "F")
			So(svc.lastQuery.PerGame, ShouldBeTrue)
			So(svc.lastQuery.Limit, ShouldEqual, 5)
			So(svc.lastQuery.SkaterWeights, ShouldResemble, map[string]float64{"hits": 0})

			var lb types.Leaderboard
			So(json.Unmarshal([]byte(text(res)), &lb), ShouldBeNil)
			So(lb.Entries[0].Name, ShouldEqual, "Seven")
		})

		Convey("When player_rank has no id", func() {
			res, _, err := srv.PlayerRank(ctx, nil, PlayerRankArgs{})

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, ErrPlayerIDRequired.Error())
		})

		Convey("When player_rank finds the player", func() {
			res, _, err := srv.PlayerRank(ctx, nil, PlayerRankArgs{PlayerID: 42, SumSeasons: true})

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(svc.lastID, ShouldEqual, 42)
			So(svc.lastQuery.SumSeasons, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, `"rank": 3`)
		})

		Convey("When the service reports an error", func() {
			svc.err = service.ErrNotFound
			res, _, err := srv.PlayerRank(ctx, nil, PlayerRankArgs{PlayerID: 42})

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldStartWith, "error: ")
		})

		Convey("When cohort_stats is called", func() {
			res, _, err := srv.CohortStats(ctx, nil, CohortArgs{Season: 20232024})

			So(err, ShouldBeNil)
			So(svc.lastQuery.Season, ShouldEqual, 20232024)
			var out struct {
				MeanSkater map[string]float64 `json:"mean_skater"`
			}
			So(json.Unmarshal([]byte(text(res)), &out), ShouldBeNil)
			So(out.MeanSkater["goals"], ShouldEqual, 15)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given no service", t, func() {
		_, err := New(nil)
		So(err, ShouldEqual, ErrNoService)
	})
}

func TestInMemorySession(t *testing.T) {
	Convey("Given a client connected in memory", t, func() {
		srv, err := New(&stubService{})
		So(err, ShouldBeNil)
		ctx := context.Background()

		clientT, serverT := gomcp.NewInMemoryTransports()
		ss, err := srv.MCP().Connect(ctx, serverT, nil)
		So(err, ShouldBeNil)
		defer ss.Close()

		client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0"}, nil)
		cs, err := client.Connect(ctx, clientT, nil)
		So(err, ShouldBeNil)
		defer cs.Close()

		Convey("When listing tools", func() {
			list, err := cs.ListTools(ctx, &gomcp.ListToolsParams{})
			So(err, ShouldBeNil)
			names := make([]string, 0, len(list.Tools))
			for _, tool := range list.Tools {
				names = append(names, tool.Name)
			}
			So(names, ShouldContain, ToolLeaderboard)
			So(names, ShouldContain, ToolPlayerRank)
			So(names, ShouldContain, ToolCohortStats)
		})

		Convey("When calling a tool", func() {
			res, err := cs.CallTool(ctx, &gomcp.CallToolParams{
				Name:      ToolPlayerRank,
				Arguments: map[string]any{"player_id": 9},
			})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, `"player_id": 9`)
		})
	})
}
