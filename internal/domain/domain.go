// Package domain implements the per-domain aggregation and scoring stages:
// raw records in, one metric row per area out, with component scores combined
// into a single 0-10 domain score.
package domain

import (
	"math"

	"github.com/rotisserie/eris"
)

// weightTolerance is the floating-point tolerance for convex-combination
// checks.
const weightTolerance = 1e-9

// ScoreTable maps ZIP code to a domain score. A nil value is a real row whose
// score is unavailable; a missing key means the domain never saw the area.
type ScoreTable map[string]*float64

// checkConvex verifies that a named weight set sums to 1.0.
func checkConvex(name string, weights ...float64) error {
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return eris.Errorf("%s: negative weight %.4f", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return eris.Errorf("%s: weights sum to %.12f, want 1.0", name, sum)
	}
	return nil
}

// ptr returns a pointer to v, for nullable score fields.
func ptr(v float64) *float64 { return &v }
