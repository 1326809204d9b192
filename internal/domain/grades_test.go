package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeScore(t *testing.T) {
	tests := []struct {
		grade    string
		expected float64
		ok       bool
	}{
		{"A+", 10.0, true},
		{"A", 9.0, true},
		{"A-", 8.5, true},
		{"B+", 7.5, true},
		{"B", 6.5, true},
		{"B-", 6.0, true},
		{"C+", 5.0, true},
		{"C", 4.0, true},
		{"C-", 3.5, true},
		{"D+", 2.5, true},
		{"D", 1.5, true},
		{"D-", 1.0, true},
		{"F", 0.5, true},
		{"-", 0, false},
		{"", 0, false},
		{"Z", 0, false},
		{" b+ ", 7.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			v, ok := GradeScore(tt.grade)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestScoreSchools_NilForUngradedAreas(t *testing.T) {
	rows := ScoreSchools([]SchoolGrade{
		{ZIP: "02108", Grade: "A-"},
		{ZIP: "02203", Grade: "-"},
		{ZIP: "2109", Grade: "B"},
	})
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, 8.5, *rows[0].Score, 1e-9)
	assert.Nil(t, rows[1].Score)
	assert.Equal(t, "02109", rows[2].ZIP)

	table := SchoolScoreTable(rows)
	assert.Nil(t, table["02203"])
	_, present := table["02203"]
	assert.True(t, present)
}

func TestScoreLifestyle_MeanOfAvailable(t *testing.T) {
	rows := ScoreLifestyle([]LifestyleGrades{
		{ZIP: "02108", Nightlife: "A", Health: "B", Outdoor: "C"},
		{ZIP: "02109", Nightlife: "A+", Health: "-", Outdoor: "-"},
		{ZIP: "02203", Nightlife: "-", Health: "-", Outdoor: "-"},
	})
	require.Len(t, rows, 3)

	// (9.0 + 6.5 + 4.0) / 3
	require.NotNil(t, rows[0].Overall)
	assert.InDelta(t, 6.5, *rows[0].Overall, 1e-9)

	// One published grade still yields a score.
	require.NotNil(t, rows[1].Overall)
	assert.InDelta(t, 10.0, *rows[1].Overall, 1e-9)

	assert.Nil(t, rows[2].Overall)
}
