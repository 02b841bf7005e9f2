// Package similarity reduces edit scripts to similarity ratios.
package similarity

import (
	"errors"

	"github.com/nvandessel/simcheck/internal/align"
	"github.com/nvandessel/simcheck/internal/constants"
)

// ErrDegenerateRatio is returned when a script has no columns to score.
// The accompanying ratio is 0.
var ErrDegenerateRatio = errors.New("degenerate ratio: nothing to score")

// Policy controls which operations form the denominator of a ratio.
type Policy struct {
	// CountInsertions adds Insert operations to the denominator.
	// By default only Match, Substitute and Delete count, so insertions are
	// seen only by the reverse direction of a symmetric comparison.
	CountInsertions bool `json:"count_insertions" yaml:"count_insertions"`
}

// Ratio computes matches / total for the given operation counts.
// Returns 0 and ErrDegenerateRatio when total is zero.
func Ratio(c align.Counts, p Policy) (float64, error) {
	total := c.Match + c.Substitute + c.Delete
	if p.CountInsertions {
		total += c.Insert
	}
	if total == 0 {
		return 0, ErrDegenerateRatio
	}
	return float64(c.Match) / float64(total), nil
}

// Score computes the ratio of an edit script.
func Score(s align.Script, p Policy) (float64, error) {
	return Ratio(s.Counts(), p)
}

// Mean averages ratios. Returns 0 for no input.
func Mean(ratios ...float64) float64 {
	if len(ratios) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratios {
		sum += r
	}
	return sum / float64(len(ratios))
}

// Percent converts a ratio in [0,1] to a percentage in [0,100].
func Percent(ratio float64) float64 {
	return ratio * constants.PercentScale
}
