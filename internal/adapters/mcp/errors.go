package mcp

import "errors"

// ErrNoService is returned by New when no service backs the tools.
var ErrNoService = errors.New("mcp: service is nil")

// ErrPlayerIDRequired is reported by player_rank when no id is given.
var ErrPlayerIDRequired = errors.New("player_id is required")
