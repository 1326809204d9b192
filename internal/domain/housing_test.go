package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCensusNA(t *testing.T) {
	for _, v := range []float64{-66666666, -99999999, -88888888, -666666666} {
		assert.True(t, IsCensusNA(v))
	}
	assert.False(t, IsCensusNA(0))
	assert.False(t, IsCensusNA(350000))
	assert.False(t, IsCensusNA(-1))
}

func TestScoreHousing_InvertedAffordability(t *testing.T) {
	obs := []HousingObservation{
		{ZIP: "02108", HomeValue: ptr(800000), Rent: ptr(3000), MedianIncome: ptr(120000)},
		{ZIP: "02109", HomeValue: ptr(400000), Rent: ptr(1500), MedianIncome: ptr(80000)},
	}

	rows, err := ScoreHousing(obs, DefaultHousingWeights())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 800000/120000 vs 400000/80000.
	assert.InDelta(t, 6.6667, rows[0].PriceToIncome, 1e-3)
	assert.InDelta(t, 5.0, rows[1].PriceToIncome, 1e-9)
	assert.InDelta(t, 3000.0*12/120000, rows[0].RentToIncome, 1e-9)

	// Cheaper on every component, the second area takes the top score.
	assert.InDelta(t, 0.0, rows[0].Overall, 1e-9)
	assert.InDelta(t, 10.0, rows[1].Overall, 1e-9)
}

func TestScoreHousing_ImputesMissingWithColumnMedian(t *testing.T) {
	obs := []HousingObservation{
		{ZIP: "02108", HomeValue: ptr(600000), Rent: ptr(2000), MedianIncome: ptr(100000)},
		{ZIP: "02109", HomeValue: ptr(400000), Rent: ptr(1000), MedianIncome: ptr(80000)},
		{ZIP: "02110", HomeValue: nil, Rent: ptr(3000), MedianIncome: ptr(90000)},
	}

	rows, err := ScoreHousing(obs, DefaultHousingWeights())
	require.NoError(t, err)

	assert.True(t, rows[2].ImputedHomeValue)
	assert.False(t, rows[2].ImputedRent)
	assert.InDelta(t, 500000, rows[2].MedianHomeValue, 1e-9)
}

func TestScoreHousing_SentinelsTreatedAsMissing(t *testing.T) {
	obs := []HousingObservation{
		{ZIP: "02108", HomeValue: ptr(600000), Rent: ptr(2000), MedianIncome: ptr(100000)},
		{ZIP: "02109", HomeValue: ptr(-666666666), Rent: ptr(1000), MedianIncome: ptr(80000)},
	}

	rows, err := ScoreHousing(obs, DefaultHousingWeights())
	require.NoError(t, err)

	// The sentinel never reaches the ratio: only the one observed value
	// exists, so its median fills the gap.
	assert.True(t, rows[1].ImputedHomeValue)
	assert.InDelta(t, 600000, rows[1].MedianHomeValue, 1e-9)
}

func TestColumnMedian_EvenCount(t *testing.T) {
	obs := []HousingObservation{
		{Rent: ptr(1000)},
		{Rent: ptr(3000)},
		{Rent: ptr(2000)},
		{Rent: ptr(4000)},
	}
	m := columnMedian(obs, func(o HousingObservation) *float64 { return o.Rent })
	assert.InDelta(t, 2500, m, 1e-9)
}
