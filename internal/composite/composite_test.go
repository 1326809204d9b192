package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/livability-cli/internal/model"
)

func ptr(v float64) *float64 { return &v }

func fullScores(v float64) model.DomainScores {
	var s model.DomainScores
	for _, d := range model.Domains() {
		s.Set(d, ptr(v))
	}
	return s
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
}

func TestScore_UniformTensCompositeIsTen(t *testing.T) {
	rows := []model.CompositeRow{{ZIP: "02108", Scores: fullScores(10.0)}}

	require.NoError(t, Score(rows, DefaultWeights()))
	require.NotNil(t, rows[0].Composite)
	assert.InDelta(t, 10.0, *rows[0].Composite, 1e-9)
	assert.Equal(t, model.TierExcellent, rows[0].Tier)
}

func TestScore_RenormalizesOverAvailableDomains(t *testing.T) {
	// Only crime and housing exist: composite is their weighted mean over
	// .225 and .10, not a sum shrunk by five missing domains.
	rows := []model.CompositeRow{{ZIP: "02108", Scores: model.DomainScores{
		Crime:   ptr(8.0),
		Housing: ptr(4.0),
	}}}

	require.NoError(t, Score(rows, DefaultWeights()))
	require.NotNil(t, rows[0].Composite)
	want := (8.0*0.225 + 4.0*0.10) / (0.225 + 0.10)
	assert.InDelta(t, want, *rows[0].Composite, 1e-9)
}

func TestScore_SoleDomainEqualsItsScore(t *testing.T) {
	rows := []model.CompositeRow{{ZIP: "02108", Scores: model.DomainScores{
		Diversity: ptr(6.3),
	}}}

	require.NoError(t, Score(rows, DefaultWeights()))
	require.NotNil(t, rows[0].Composite)
	assert.InDelta(t, 6.3, *rows[0].Composite, 1e-9)
}

func TestScore_NoDomainsMeansNoData(t *testing.T) {
	rows := []model.CompositeRow{{ZIP: "02203"}}

	require.NoError(t, Score(rows, DefaultWeights()))
	assert.Nil(t, rows[0].Composite)
	assert.Equal(t, model.TierNoData, rows[0].Tier)
}

func TestScore_RejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w[model.DomainCrime] = 0.5
	assert.Error(t, Score(nil, w))

	delete(w, model.DomainCrime)
	assert.Error(t, Score(nil, w))
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name     string
		score    *float64
		expected model.Tier
	}{
		{"nil is no data", nil, model.TierNoData},
		{"8.0 boundary", ptr(8.0), model.TierExcellent},
		{"7.0 boundary", ptr(7.0), model.TierGood},
		{"6.0 boundary", ptr(6.0), model.TierAverage},
		{"4.0 boundary", ptr(4.0), model.TierBelowAverage},
		{"just under 4", ptr(3.999), model.TierPoor},
		{"zero", ptr(0.0), model.TierPoor},
		{"ten", ptr(10.0), model.TierExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTier(tt.score))
		})
	}
}
