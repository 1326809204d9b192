package domain

import (
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/normalize"
)

// minResidentialPopulation is the threshold below which an area is treated as
// non-residential and gets no diversity score.
const minResidentialPopulation = 100

// raceBuckets is the number of population groups the Shannon index runs over.
const raceBuckets = 5

// DemographicObservation is the raw ACS race composition row for one area
// (table B02001).
type DemographicObservation struct {
	ZIP       string
	Total     float64 // B02001_001E
	White     float64 // B02001_002E
	Black     float64 // B02001_003E
	Asian     float64 // B02001_005E
	Other     float64 // B02001_007E
	TwoOrMore float64 // B02001_008E
}

// DiversityMetrics is the per-area diversity row. Index and Score are nil for
// non-residential areas.
type DiversityMetrics struct {
	ZIP          string   `csv:"zip_code" json:"zip_code"`
	TotalPop     float64  `csv:"total_pop" json:"total_pop"`
	PctWhite     float64  `csv:"pct_white" json:"pct_white"`
	PctBlack     float64  `csv:"pct_black" json:"pct_black"`
	PctAsian     float64  `csv:"pct_asian" json:"pct_asian"`
	PctOther     float64  `csv:"pct_other" json:"pct_other"`
	PctTwoOrMore float64  `csv:"pct_two_or_more" json:"pct_two_or_more"`
	Index        *float64 `csv:"diversity_index" json:"diversity_index"`
	Score        *float64 `csv:"diversity_score" json:"diversity_score"`
}

// ScoreDiversity computes the Shannon diversity index over five race buckets
// and scales it against the theoretical maximum ln(5). Areas on the
// non-residential list or below the population threshold score nil, not zero:
// an office-tower ZIP is unmeasured, not homogeneous.
func ScoreDiversity(observations []DemographicObservation, nonResidential []string) []DiversityMetrics {
	skip := make(map[string]struct{}, len(nonResidential))
	for _, zip := range nonResidential {
		skip[model.NormalizeZIP(zip)] = struct{}{}
	}

	rows := make([]DiversityMetrics, len(observations))
	for i, o := range observations {
		zip := model.NormalizeZIP(o.ZIP)
		row := DiversityMetrics{ZIP: zip, TotalPop: o.Total}

		_, flagged := skip[zip]
		if flagged || o.Total < minResidentialPopulation {
			zap.L().Debug("diversity: non-residential area, score withheld",
				zap.String("zip", zip), zap.Float64("population", o.Total))
			rows[i] = row
			continue
		}

		proportions := []float64{
			o.White / o.Total,
			o.Black / o.Total,
			o.Asian / o.Total,
			o.Other / o.Total,
			o.TwoOrMore / o.Total,
		}
		h := normalize.ShannonIndex(proportions)
		row.Index = ptr(h)
		row.Score = ptr(normalize.ShannonScore(h, raceBuckets))
		row.PctWhite = proportions[0] * 100
		row.PctBlack = proportions[1] * 100
		row.PctAsian = proportions[2] * 100
		row.PctOther = proportions[3] * 100
		row.PctTwoOrMore = proportions[4] * 100
		rows[i] = row
	}
	return rows
}

// DiversityScoreTable extracts the ZIP-to-score table for the merger.
// Withheld scores stay nil so the merge records the area as present without
// data.
func DiversityScoreTable(rows []DiversityMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = r.Score
	}
	return t
}
