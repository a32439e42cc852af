// Package cohort computes per-stat means and population standard
// deviations over a set of same-kind players.
package cohort

import (
	"math"

	"github.com/okian/rinkrank/internal/domain/model"
)

// Moments holds the summary of one stat across a cohort.
type Moments struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	N      int     `json:"n"`
}

// Z returns the z-score of v, or 0 when the cohort has no spread.
func (m Moments) Z(v float64) float64 {
	if m.StdDev == 0 {
		return 0
	}
	return (v - m.Mean) / m.StdDev
}

// Statistics maps a stat to its cohort moments.
type Statistics map[model.Stat]Moments

// Get returns the moments for stat, if any values were present.
func (s Statistics) Get(stat model.Stat) (Moments, bool) {
	m, ok := s[stat]
	return m, ok
}

// Summarize computes mean and population standard deviation (divide by N)
// for each key over the bags. Absent values are skipped rather than counted
// as zero; a key with no present values is left out of the result. An empty
// cohort yields an empty Statistics.
func Summarize(bags []model.Stats, keys []model.Stat) Statistics {
	out := make(Statistics, len(keys))
	for _, key := range keys {
		values := make([]float64, 0, len(bags))
		for _, bag := range bags {
			if v, ok := bag.Lookup(key); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		mean, std := meanStdDev(values)
		out[key] = Moments{Mean: mean, StdDev: std, N: len(values)}
	}
	return out
}

// meanStdDev returns the arithmetic mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}
