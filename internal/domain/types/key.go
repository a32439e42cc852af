package types

import (
	"fmt"
	"strconv"
	"strings"
)

func formatKey(playerID int64, seasonID int) string {
	return fmt.Sprintf("%d:%d", playerID, seasonID)
}

// ParseKey splits a "playerId:seasonId" key.
func ParseKey(key string) (playerID int64, seasonID int, err error) {
	p, s, ok := strings.Cut(strings.TrimSpace(key), ":")
	if !ok {
		return 0, 0, fmt.Errorf("key %q: want playerId:seasonId", key)
	}
	if playerID, err = strconv.ParseInt(p, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("key %q: %w", key, err)
	}
	if seasonID, err = strconv.Atoi(s); err != nil {
		return 0, 0, fmt.Errorf("key %q: %w", key, err)
	}
	return playerID, seasonID, nil
}
