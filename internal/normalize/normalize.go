// Package normalize implements the cohort-wide score normalization used by
// every domain scorer.
package normalize

import "math"

// Neutral is the value assigned to every element when a series has no
// variance. A degenerate range carries no ranking information, so the whole
// cohort lands on the scale midpoint rather than zero.
const Neutral = 5.0

// scaleMax is the top of the output scale.
const scaleMax = 10.0

// MinMax maps a raw series onto the 0-10 scale. With invert set, lower raw
// values score higher (crime rates, costs, distances). The function needs the
// whole cohort at once: the min and max are properties of the snapshot, so a
// single area can never be normalized in isolation. Output order matches input
// order; a nil or empty input returns nil.
func MinMax(series []float64, invert bool) []float64 {
	if len(series) == 0 {
		return nil
	}

	lo, hi := series[0], series[0]
	for _, v := range series[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(series))
	if hi == lo {
		for i := range out {
			out[i] = Neutral
		}
		return out
	}

	span := hi - lo
	for i, v := range series {
		n := (v - lo) / span
		if invert {
			n = 1 - n
		}
		out[i] = n * scaleMax
	}
	return out
}

// ShannonIndex computes the Shannon diversity index H = -sum(p*ln p) over
// category proportions. Zero shares are excluded from the sum; an all-zero
// input yields 0.
func ShannonIndex(proportions []float64) float64 {
	var h float64
	for _, p := range proportions {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

// ShannonScore rescales a Shannon index to 0-10 by dividing by the maximum
// attainable index for k categories, ln(k).
func ShannonScore(h float64, k int) float64 {
	if k < 2 {
		return 0
	}
	return h / math.Log(float64(k)) * scaleMax
}
