package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/rinkrank/internal/domain/types"
)

// Override parameter prefixes, e.g. skater.hits=0.25 or scarcity.D=1.5.
const (
	prefixSkater   = "skater."
	prefixGoalie   = "goalie."
	prefixScarcity = "scarcity."
	prefixSeason   = "season."
)

// parseQuery reads a leaderboard query from URL parameters.
func parseQuery(v url.Values) (types.Query, error) {
	var (
		q   types.Query
		err error
	)
	q.Position = v.Get("position")
	q.Team = v.Get("team")
	q.Search = v.Get("search")
	q.SortBy = v.Get("sort_by")
	q.Order = v.Get("order")

	if q.Season, err = intParam(v, "season"); err != nil {
		return q, err
	}
	if q.AgeMin, err = intParam(v, "age_min"); err != nil {
		return q, err
	}
	if q.AgeMax, err = intParam(v, "age_max"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v, "offset"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}
	if q.MinGamesPlayed, err = floatParam(v, "min_games_played"); err != nil {
		return q, err
	}
	if q.SumSeasons, err = boolParam(v, "sum_seasons"); err != nil {
		return q, err
	}
	if q.PerGame, err = boolParam(v, "per_game"); err != nil {
		return q, err
	}
	if q.CompareOnly, err = boolParam(v, "compare_only"); err != nil {
		return q, err
	}
	for _, raw := range v["compare"] {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				q.Compare = append(q.Compare, k)
			}
		}
	}

	for key, vals := range v {
		var target *map[string]float64
		var name string
		switch {
		case strings.HasPrefix(key, prefixSkater):
			target, name = &q.SkaterWeights, strings.TrimPrefix(key, prefixSkater)
		case strings.HasPrefix(key, prefixGoalie):
			target, name = &q.GoalieWeights, strings.TrimPrefix(key, prefixGoalie)
		case strings.HasPrefix(key, prefixScarcity):
			target, name = &q.Scarcity, strings.TrimPrefix(key, prefixScarcity)
		case strings.HasPrefix(key, prefixSeason):
			target, name = &q.SeasonWeights, strings.TrimPrefix(key, prefixSeason)
		default:
			continue
		}
		f, err := strconv.ParseFloat(vals[len(vals)-1], 64)
		if err != nil {
			return q, fmt.Errorf("%w: %s: %w", ErrBadRequest, key, err)
		}
		if *target == nil {
			*target = map[string]float64{}
		}
		(*target)[name] = f
	}
	return q, nil
}

func intParam(v url.Values, key string) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
	}
	return n, nil
}

func floatParam(v url.Values, key string) (float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadRequest, key)
	}
	return f, nil
}

func boolParam(v url.Values, key string) (bool, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, key)
	}
	return b, nil
}
