// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind separates the two player populations, which track disjoint stats.
type Kind string

// Player kinds.
const (
	KindSkater Kind = "skater"
	KindGoalie Kind = "goalie"
)

// Position is the roster position code.
type Position string

// Position codes.
const (
	Center     Position = "C"
	RightWing  Position = "R"
	LeftWing   Position = "L"
	Defenseman Position = "D"
	Goalie     Position = "G"
)

// ParsePosition validates a position code (case-insensitive).
func ParsePosition(code string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(code)))
	switch p {
	case Center, RightWing, LeftWing, Defenseman, Goalie:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, code)
}

// Kind returns the player kind implied by the position.
func (p Position) Kind() Kind {
	if p == Goalie {
		return KindGoalie
	}
	return KindSkater
}

// Record is one player's line for one season, or for a season range once aggregated.
type Record struct {
	PlayerID    int64
	SeasonID    int
	Kind        Kind
	Position    Position
	Name        string
	TeamAbbrevs string
	CurrentTeam string
	BirthDate   string
	Stats       Stats

	// Aggregated marks records produced by the season aggregator; their
	// Stats carry both plain and <stat>Weighted sums.
	Aggregated bool
}

// Key identifies a player-season row, e.g. for the comparison list.
func (r Record) Key() string {
	return strconv.FormatInt(r.PlayerID, 10) + ":" + strconv.Itoa(r.SeasonID)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Stats = r.Stats.Clone()
	return out
}

// Validate checks the record against its kind's closed vocabulary.
func (r Record) Validate() error {
	if _, err := ParsePosition(string(r.Position)); err != nil {
		return err
	}
	if r.Position.Kind() != r.Kind {
		return fmt.Errorf("%w: position %s is not a %s", ErrKindMismatch, r.Position, r.Kind)
	}
	for stat := range r.Stats {
		if !InVocabulary(r.Kind, stat) {
			return fmt.Errorf("%w: %s for %s", ErrUnknownStat, stat, r.Kind)
		}
	}
	return nil
}
