package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDiversity_UniformMixScoresTen(t *testing.T) {
	obs := []DemographicObservation{
		{ZIP: "02108", Total: 5000, White: 1000, Black: 1000, Asian: 1000, Other: 1000, TwoOrMore: 1000},
	}

	rows := ScoreDiversity(obs, nil)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, math.Log(5), *rows[0].Index, 1e-9)
	assert.InDelta(t, 10.0, *rows[0].Score, 1e-9)
	assert.InDelta(t, 20.0, rows[0].PctWhite, 1e-9)
}

func TestScoreDiversity_SingleGroupScoresZero(t *testing.T) {
	obs := []DemographicObservation{
		{ZIP: "02108", Total: 5000, White: 5000},
	}

	rows := ScoreDiversity(obs, nil)
	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, 0.0, *rows[0].Score, 1e-9)
}

func TestScoreDiversity_WithholdsBelowPopulationThreshold(t *testing.T) {
	obs := []DemographicObservation{
		{ZIP: "02133", Total: 99, White: 50, Black: 49},
		{ZIP: "02108", Total: 100, White: 50, Black: 50},
	}

	rows := ScoreDiversity(obs, nil)
	assert.Nil(t, rows[0].Score)
	assert.NotNil(t, rows[1].Score)
}

func TestScoreDiversity_WithholdsFlaggedAreas(t *testing.T) {
	obs := []DemographicObservation{
		{ZIP: "02203", Total: 2100, White: 1400, Black: 200, Asian: 300, Other: 150, TwoOrMore: 50},
	}

	rows := ScoreDiversity(obs, []string{"2203"})
	assert.Nil(t, rows[0].Score)

	// The withheld area still appears in the score table, as a present row
	// with no value.
	table := DiversityScoreTable(rows)
	v, present := table["02203"]
	assert.True(t, present)
	assert.Nil(t, v)
}
