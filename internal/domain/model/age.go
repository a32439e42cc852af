package model

import (
	"strings"
	"time"
)

// birthDateLayout is the date format used by the season snapshots.
const birthDateLayout = "2006-01-02"

// Age returns whole years between birthDate and now. The second return is
// false when birthDate cannot be parsed, meaning the age is not available.
func Age(birthDate string, now time.Time) (int, bool) {
	bd, err := time.Parse(birthDateLayout, strings.TrimSpace(birthDate))
	if err != nil {
		return 0, false
	}
	age := now.Year() - bd.Year()
	if now.Month() < bd.Month() || (now.Month() == bd.Month() && now.Day() < bd.Day()) {
		age--
	}
	return age, true
}
