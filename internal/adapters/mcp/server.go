// Package mcp exposes the leaderboard as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/rinkrank/internal/domain/types"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

// Tool names.
const (
	ToolLeaderboard = "leaderboard"
	ToolPlayerRank  = "player_rank"
	ToolCohortStats = "cohort_stats"
)

// Service is the read side the tools call into.
type Service interface {
	Leaderboard(ctx context.Context, q types.Query) (types.Leaderboard, error)
	Rank(ctx context.Context, playerID int64, q types.Query) (types.Entry, error)
	Cohort(ctx context.Context, q types.Query) (skaters, goalies types.Cohort, err error)
}

// LeaderboardArgs are the leaderboard tool arguments.
type LeaderboardArgs struct {
	Position       string             `json:"position,omitempty" jsonschema:"S (skaters), F (forwards), C, L, R, D or G"`
	Team           string             `json:"team,omitempty" jsonschema:"Comma-separated team abbreviations"`
	Season         int                `json:"season,omitempty" jsonschema:"Season id such as 20232024"`
	MinGamesPlayed float64            `json:"min_games_played,omitempty" jsonschema:"Minimum games played"`
	SumSeasons     bool               `json:"sum_seasons,omitempty" jsonschema:"Combine each player's seasons into one row"`
	PerGame        bool               `json:"per_game,omitempty" jsonschema:"Divide counting stats by games played"`
	Search         string             `json:"search,omitempty" jsonschema:"Case-insensitive name filter"`
	SortBy         string             `json:"sort_by,omitempty" jsonschema:"score (default), a stat key, name, team, position or age"`
	Order          string             `json:"order,omitempty" jsonschema:"asc or desc"`
	SkaterWeights  map[string]float64 `json:"skater_weights,omitempty" jsonschema:"Skater weight overrides by stat"`
	GoalieWeights  map[string]float64 `json:"goalie_weights,omitempty" jsonschema:"Goalie weight overrides by stat"`
	Offset         int                `json:"offset,omitempty" jsonschema:"Rows to skip"`
	Limit          int                `json:"limit,omitempty" jsonschema:"Rows to return (0 = default)"`
}

// Query converts the arguments to a leaderboard query.
func (a LeaderboardArgs) Query() types.Query {
	return types.Query{
		Position:       a.Position,
		Team:           a.Team,
		Season:         a.Season,
		MinGamesPlayed: a.MinGamesPlayed,
		SumSeasons:     a.SumSeasons,
		PerGame:        a.PerGame,
		Search:         a.Search,
		SortBy:         a.SortBy,
		Order:          a.Order,
		SkaterWeights:  a.SkaterWeights,
		GoalieWeights:  a.GoalieWeights,
		Offset:         a.Offset,
		Limit:          a.Limit,
	}
}

// PlayerRankArgs are the player_rank tool arguments.
type PlayerRankArgs struct {
	PlayerID   int64  `json:"player_id" jsonschema:"NHL player id (required)"`
	Position   string `json:"position,omitempty" jsonschema:"Restrict the cohort to a position group"`
	Season     int    `json:"season,omitempty" jsonschema:"Season id such as 20232024"`
	SumSeasons bool   `json:"sum_seasons,omitempty" jsonschema:"Combine each player's seasons into one row"`
	PerGame    bool   `json:"per_game,omitempty" jsonschema:"Divide counting stats by games played"`
}

// CohortArgs are the cohort_stats tool arguments.
type CohortArgs struct {
	Position   string `json:"position,omitempty" jsonschema:"Restrict the cohort to a position group"`
	Team       string `json:"team,omitempty" jsonschema:"Comma-separated team abbreviations"`
	Season     int    `json:"season,omitempty" jsonschema:"Season id such as 20232024"`
	SumSeasons bool   `json:"sum_seasons,omitempty" jsonschema:"Combine each player's seasons into one row"`
	PerGame    bool   `json:"per_game,omitempty" jsonschema:"Divide counting stats by games played"`
}

// Server registers the leaderboard tools on an MCP server.
type Server struct {
	svc     Service
	logger  logger.Logger
	version string
	server  *gomcp.Server
}

// New builds the MCP server and registers every tool.
func New(svc Service, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	s := &Server{svc: svc, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("mcp")
	}

	s.server = gomcp.NewServer(&gomcp.Implementation{Name: "rinkrank", Version: s.version}, nil)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolLeaderboard,
		Description: "Players ranked by composite z-score with optional filters and weight overrides",
	}, s.Leaderboard)
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolPlayerRank,
		Description: "One player's best-placed row and rank in the selected cohort",
	}, s.PlayerRank)
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolCohortStats,
		Description: "Mean and standard deviation of every stat for skaters and goalies",
	}, s.CohortStats)

	return s, nil
}

// MCP returns the underlying server, for in-process transports.
func (s *Server) MCP() *gomcp.Server { return s.server }

// Handler serves the tools over streamable HTTP with JSON responses.
func (s *Server) Handler() http.Handler {
	return gomcp.NewStreamableHTTPHandler(func(*http.Request) *gomcp.Server {
		return s.server
	}, &gomcp.StreamableHTTPOptions{JSONResponse: true})
}

// Leaderboard implements the leaderboard tool.
func (s *Server) Leaderboard(ctx context.Context, _ *gomcp.CallToolRequest, args LeaderboardArgs) (*gomcp.CallToolResult, any, error) {
	lb, err := s.svc.Leaderboard(ctx, args.Query())
	return s.result(ctx, ToolLeaderboard, lb, err)
}

// PlayerRank implements the player_rank tool.
func (s *Server) PlayerRank(ctx context.Context, _ *gomcp.CallToolRequest, args PlayerRankArgs) (*gomcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return s.result(ctx, ToolPlayerRank, nil, ErrPlayerIDRequired)
	}
	entry, err := s.svc.Rank(ctx, args.PlayerID, types.Query{
		Position:   args.Position,
		Season:     args.Season,
		SumSeasons: args.SumSeasons,
		PerGame:    args.PerGame,
	})
	return s.result(ctx, ToolPlayerRank, entry, err)
}

// CohortStats implements the cohort_stats tool.
func (s *Server) CohortStats(ctx context.Context, _ *gomcp.CallToolRequest, args CohortArgs) (*gomcp.CallToolResult, any, error) {
	skaters, goalies, err := s.svc.Cohort(ctx, types.Query{
		Position:   args.Position,
		Team:       args.Team,
		Season:     args.Season,
		SumSeasons: args.SumSeasons,
		PerGame:    args.PerGame,
	})
	out := map[string]any{
		"skaters":     skaters,
		"goalies":     goalies,
		"mean_skater": skaters.MeanPlayer(),
		"mean_goalie": goalies.MeanPlayer(),
	}
	return s.result(ctx, ToolCohortStats, out, err)
}

// result renders v as indented JSON text. Failures become tool errors so
// the client sees the message instead of a protocol error.
func (s *Server) result(ctx context.Context, tool string, v any, err error) (*gomcp.CallToolResult, any, error) {
	if err == nil {
		var b []byte
		if b, err = json.MarshalIndent(v, "", "  "); err == nil {
			metrics.RecordToolCall(tool, "ok")
			return &gomcp.CallToolResult{
				Content: []gomcp.Content{&gomcp.TextContent{Text: string(b)}},
			}, nil, nil
		}
	}
	metrics.RecordToolCall(tool, "error")
	s.logger.Warn(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}, nil, nil
}
