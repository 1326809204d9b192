package composite

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
)

// weightTolerance is the floating-point tolerance for the convex check.
const weightTolerance = 1e-9

// Weights assigns the relative importance of each domain in the composite.
// The full set must sum to 1.0; at score time the weights of whatever domains
// an area actually has are renormalized so each composite is itself a convex
// combination of the scores that exist.
type Weights map[model.Domain]float64

// DefaultWeights returns the standard composite weighting. Safety carries the
// most weight, demographic mix the least.
func DefaultWeights() Weights {
	return Weights{
		model.DomainCrime:      0.225,
		model.DomainLifestyle:  0.17,
		model.DomainSchools:    0.15,
		model.DomainTransit:    0.15,
		model.DomainHealthcare: 0.13,
		model.DomainHousing:    0.10,
		model.DomainDiversity:  0.075,
	}
}

// Validate checks that every domain is weighted, no weight is negative, and
// the weights sum to 1.0.
func (w Weights) Validate() error {
	var sum float64
	for _, d := range model.Domains() {
		v, ok := w[d]
		if !ok {
			return eris.Errorf("composite: no weight for domain %s", d)
		}
		if v < 0 {
			return eris.Errorf("composite: negative weight %.4f for domain %s", v, d)
		}
		sum += v
	}
	if len(w) != len(model.Domains()) {
		return eris.Errorf("composite: %d weights for %d domains", len(w), len(model.Domains()))
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return eris.Errorf("composite: weights sum to %.12f, want 1.0", sum)
	}
	return nil
}

// Score fills in Composite and Tier on every merged row, in place. An area
// with no domain scores at all gets a nil composite and the no-data tier
// rather than a fabricated number.
func Score(rows []model.CompositeRow, weights Weights) error {
	if err := weights.Validate(); err != nil {
		return err
	}

	for i := range rows {
		rows[i].Composite = compositeOf(&rows[i].Scores, weights)
		rows[i].Tier = ClassifyTier(rows[i].Composite)
	}
	return nil
}

func compositeOf(scores *model.DomainScores, weights Weights) *float64 {
	var weighted, available float64
	for _, d := range model.Domains() {
		s := scores.Get(d)
		if s == nil {
			continue
		}
		weighted += *s * weights[d]
		available += weights[d]
	}
	if available == 0 {
		return nil
	}
	v := weighted / available
	return &v
}

// ClassifyTier buckets a composite score. A nil score is no data, not a zero.
func ClassifyTier(composite *float64) model.Tier {
	if composite == nil {
		return model.TierNoData
	}
	switch v := *composite; {
	case v >= 8.0:
		return model.TierExcellent
	case v >= 7.0:
		return model.TierGood
	case v >= 6.0:
		return model.TierAverage
	case v >= 4.0:
		return model.TierBelowAverage
	default:
		return model.TierPoor
	}
}
