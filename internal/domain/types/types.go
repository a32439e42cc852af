// Package types contains the request and read shapes shared by the
// service and its transports (HTTP, MCP, CLI).
package types

// Query selects, scores and pages a leaderboard. Weight, scarcity and
// season-weight maps override the configured defaults key by key.
type Query struct {
	Position       string  `json:"position,omitempty"`
	Team           string  `json:"team,omitempty"`
	Season         int     `json:"season,omitempty"`
	MinGamesPlayed float64 `json:"min_games_played,omitempty"`
	AgeMin         int     `json:"age_min,omitempty"`
	AgeMax         int     `json:"age_max,omitempty"`

	// Compare lists "playerId:seasonId" keys of selected rows.
	Compare     []string `json:"compare,omitempty"`
	CompareOnly bool     `json:"compare_only,omitempty"`

	SumSeasons bool   `json:"sum_seasons,omitempty"`
	PerGame    bool   `json:"per_game,omitempty"`
	Search     string `json:"search,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
	Order      string `json:"order,omitempty"`

	SkaterWeights map[string]float64 `json:"skater_weights,omitempty"`
	GoalieWeights map[string]float64 `json:"goalie_weights,omitempty"`
	Scarcity      map[string]float64 `json:"scarcity,omitempty"`
	SeasonWeights map[string]float64 `json:"season_weights,omitempty"`

	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank          int                `json:"rank"`
	PlayerID      int64              `json:"player_id"`
	SeasonID      int                `json:"season_id"`
	Name          string             `json:"name"`
	Kind          string             `json:"kind"`
	Position      string             `json:"position"`
	Team          string             `json:"team,omitempty"`
	CurrentTeam   string             `json:"current_team,omitempty"`
	Age           *int               `json:"age,omitempty"`
	Score         float64            `json:"score"`
	Considered    int                `json:"considered"`
	Stats         map[string]float64 `json:"stats"`
	Contributions map[string]float64 `json:"contributions,omitempty"`
	Selected      bool               `json:"selected,omitempty"`
}

// Key returns the "playerId:seasonId" key used by comparison lists.
func (e Entry) Key() string {
	return formatKey(e.PlayerID, e.SeasonID)
}

// StatSummary is the mean and population standard deviation of one stat.
type StatSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	N      int     `json:"n"`
}

// Cohort describes the population one kind was scored against.
type Cohort struct {
	Kind  string                 `json:"kind"`
	Size  int                    `json:"size"`
	Stats map[string]StatSummary `json:"stats"`
}

// MeanPlayer returns the stat means, the "average player" row.
func (c Cohort) MeanPlayer() map[string]float64 {
	out := make(map[string]float64, len(c.Stats))
	for k, s := range c.Stats {
		out[k] = s.Mean
	}
	return out
}

// Leaderboard is one page of ranked entries plus the cohorts behind it.
type Leaderboard struct {
	Total   int     `json:"total"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
	Entries []Entry `json:"entries"`
	Skaters Cohort  `json:"skaters"`
	Goalies Cohort  `json:"goalies"`
}
