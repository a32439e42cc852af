package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/rinkrank/internal/adapters/http/api"
	service "github.com/okian/rinkrank/internal/app"
	"github.com/okian/rinkrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	board     types.Leaderboard
	entry     types.Entry
	skaters   types.Cohort
	goalies   types.Cohort
	err       error
	lastQuery types.Query
	lastID    int64
}

func (f *fakeDeps) Leaderboard(_ context.Context, q types.Query) (types.Leaderboard, error) {
	f.lastQuery = q
	return f.board, f.err
}

func (f *fakeDeps) Rank(_ context.Context, playerID int64, q types.Query) (types.Entry, error) {
	f.lastID, f.lastQuery = playerID, q
	return f.entry, f.err
}

func (f *fakeDeps) Cohort(_ context.Context, q types.Query) (types.Cohort, types.Cohort, error) {
	f.lastQuery = q
	return f.skaters, f.goalies, f.err
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"records": 3, "started": true}
}

type notStarted struct{}

func (notStarted) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": false}
}

func newMux(deps *fakeDeps) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return api.RequestIDMiddleware(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a server with a leaderboard", t, func() {
		deps := &fakeDeps{board: types.Leaderboard{
			Total: 2, Limit: 50,
			Entries: []types.Entry{
				{Rank: 1, PlayerID: 2, SeasonID: 20232024, Name: "Second", Kind: "skater", Score: 1},
				{Rank: 2, PlayerID: 1, SeasonID: 20232024, Name: "First", Kind: "skater", Score: -1},
			},
		}}
		h := newMux(deps)

		Convey("When GET parses filters and overrides", func() {
			rec := do(h, http.MethodGet,
				"/leaderboard?position=F&team=EDM&season=20232024&min_games_played=10&age_min=20&age_max=30"+
					"&sum_seasons=true&per_game=1&search=mc&sort_by=goals&order=asc&offset=5&limit=10"+
					"&compare=1:20232024,2:20232024&compare_only=true"+
					"&skater.hits=0.25&goalie.wins=2&scarcity.D=1.5&season.20232024=2", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			q := deps.lastQuery
			So(q.Position, ShouldEqual, "F")
			So(q.Team, ShouldEqual, "EDM")
			So(q.Season, ShouldEqual, 20232024)
			So(q.MinGamesPlayed, ShouldEqual, 10)
			So(q.AgeMin, ShouldEqual, 20)
			So(q.AgeMax, ShouldEqual, 30)
			So(q.SumSeasons, ShouldBeTrue)
			So(q.PerGame, ShouldBeTrue)
			So(q.Search, ShouldEqual, "mc")
			So(q.SortBy, ShouldEqual, "goals")
			So(q.Order, ShouldEqual, "asc")
			So(q.Offset, ShouldEqual, 5)
			So(q.Limit, ShouldEqual, 10)
			So(q.Compare, ShouldResemble, []string{"1:20232024", "2:20232024"})
			So(q.CompareOnly, ShouldBeTrue)
			So(q.SkaterWeights, ShouldResemble, map[string]float64{"hits": 0.25})
			So(q.GoalieWeights, ShouldResemble, map[string]float64{"wins": 2})
			So(q.Scarcity, ShouldResemble, map[string]float64{"D": 1.5})
			So(q.SeasonWeights, ShouldResemble, map[string]float64{"20232024": 2})

			var lb types.Leaderboard
			So(json.Unmarshal(rec.Body.Bytes(), &lb), ShouldBeNil)
			So(lb.Total, ShouldEqual, 2)
			So(lb.Entries[0].Name, ShouldEqual, "Second")
		})

		Convey("When POST carries a JSON query", func() {
			rec := do(h, http.MethodPost, "/leaderboard",
				`{"position":"G","per_game":true,"goalie_weights":{"saves":0},"limit":3}`)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastQuery.Position, ShouldEqual, "G")
			So(deps.lastQuery.PerGame, ShouldBeTrue)
			So(deps.lastQuery.GoalieWeights, ShouldResemble, map[string]float64{"saves": 0})
			So(deps.lastQuery.Limit, ShouldEqual, 3)
		})

		Convey("When parameters are malformed", func() {
			for _, target := range []string{
				"/leaderboard?limit=ten",
				"/leaderboard?min_games_played=x",
				"/leaderboard?per_game=maybe",
				"/leaderboard?skater.goals=lots",
			} {
				rec := do(h, http.MethodGet, target, "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the POST body has unknown fields", func() {
			rec := do(h, http.MethodPost, "/leaderboard", `{"bogus":1}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the query", func() {
			deps.err = errors.Join(service.ErrInvalidRequest, errors.New("limit too large"))
			rec := do(h, http.MethodGet, "/leaderboard?limit=10000", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service has not started", func() {
			deps.err = service.ErrNotStarted
			rec := do(h, http.MethodGet, "/leaderboard", "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(rec)["code"], ShouldEqual, "unavailable")
		})

		Convey("When the service fails unexpectedly", func() {
			deps.err = errors.New("boom")
			rec := do(h, http.MethodGet, "/leaderboard", "")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When the method is not supported", func() {
			rec := do(h, http.MethodDelete, "/leaderboard", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(rec.Header().Get("Allow"), ShouldEqual, "GET, POST")
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given a server with a ranked player", t, func() {
		deps := &fakeDeps{entry: types.Entry{Rank: 4, PlayerID: 8478402, SeasonID: 20232024, Name: "Connor McDavid"}}
		h := newMux(deps)

		Convey("When the player is requested", func() {
			rec := do(h, http.MethodGet, "/rank/8478402?sum_seasons=true", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastID, ShouldEqual, 8478402)
			So(deps.lastQuery.SumSeasons, ShouldBeTrue)
			var e types.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &e), ShouldBeNil)
			So(e.Rank, ShouldEqual, 4)
		})

		Convey("When the id is invalid", func() {
			for _, target := range []string{"/rank/", "/rank/abc", "/rank/-3", "/rank/1/2"} {
				So(do(h, http.MethodGet, target, "").Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the player is unknown", func() {
			deps.err = service.ErrNotFound
			rec := do(h, http.MethodGet, "/rank/99", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(rec)["code"], ShouldEqual, "not_found")
		})

		Convey("When the method is not GET", func() {
			So(do(h, http.MethodPost, "/rank/1", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCohortHandler(t *testing.T) {
	Convey("Given a server with cohort statistics", t, func() {
		deps := &fakeDeps{
			skaters: types.Cohort{Kind: "skater", Size: 2, Stats: map[string]types.StatSummary{
				"goals": {Mean: 15, StdDev: 5, N: 2},
			}},
			goalies: types.Cohort{Kind: "goalie"},
		}
		h := newMux(deps)

		Convey("When the cohort is requested", func() {
			rec := do(h, http.MethodGet, "/cohort?position=C", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastQuery.Position, ShouldEqual, "C")
			var body struct {
				Skaters    types.Cohort       `json:"skaters"`
				MeanSkater map[string]float64 `json:"mean_skater"`
				MeanGoalie map[string]float64 `json:"mean_goalie"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Skaters.Size, ShouldEqual, 2)
			So(body.MeanSkater["goals"], ShouldEqual, 15)
			So(body.MeanGoalie, ShouldBeEmpty)
		})

		Convey("When the query is malformed", func() {
			So(do(h, http.MethodGet, "/cohort?season=last", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given a server", t, func() {
		h := newMux(&fakeDeps{})

		Convey("When stats are requested", func() {
			rec := do(h, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When health is requested", func() {
			do(h, http.MethodGet, "/leaderboard", "")
			rec := do(h, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "rinkrank_leaderboard_http_requests_total")
		})

		Convey("When readiness is requested as JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			So(rec.Body.String(), ShouldContainSubstring, `"records":3`)
		})

		Convey("When readiness is requested before the dataset loads", func() {
			mux := http.NewServeMux()
			api.NewServer(&fakeDeps{}, notStarted{}).Register(context.Background(), mux)
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(rec.Body.String(), ShouldContainSubstring, "starting")
		})

		Convey("When no request id is sent", func() {
			rec := do(h, http.MethodGet, "/stats", "")
			So(rec.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
		})

		Convey("When a valid request id is sent", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			req.Header.Set(api.RequestIDHeader, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		})
	})
}

func TestRequestIDContext(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = api.RequestID(r.Context())
		}))

		Convey("When a request passes through", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			So(seen, ShouldNotBeEmpty)
			So(seen, ShouldEqual, rec.Header().Get(api.RequestIDHeader))
		})

		Convey("When no middleware ran", func() {
			So(api.RequestID(context.Background()), ShouldBeEmpty)
		})
	})
}
