package domain

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/normalize"
)

// Census annotation sentinels. The ACS API encodes suppressed or
// inapplicable estimates as large negative numbers rather than nulls.
var censusNASentinels = map[float64]struct{}{
	-66666666:  {},
	-99999999:  {},
	-88888888:  {},
	-666666666: {},
}

// IsCensusNA reports whether v is an ACS annotation sentinel.
func IsCensusNA(v float64) bool {
	_, ok := censusNASentinels[v]
	return ok
}

// HousingObservation is the raw ACS estimate row for one area. Nil fields are
// missing (either absent from the response or a sentinel decoded upstream).
type HousingObservation struct {
	ZIP          string
	HomeValue    *float64 // B25077_001E, median home value
	Rent         *float64 // B25064_001E, median gross rent
	MedianIncome *float64 // B19013_001E, median household income
}

// HousingWeights combines the three affordability component scores.
type HousingWeights struct {
	HomeValue   float64 `yaml:"home_value"`
	Rent        float64 `yaml:"rent"`
	PriceIncome float64 `yaml:"price_income"`
}

// DefaultHousingWeights returns the standard housing component weights.
func DefaultHousingWeights() HousingWeights {
	return HousingWeights{HomeValue: 0.40, Rent: 0.35, PriceIncome: 0.25}
}

// Validate checks the weights form a convex combination.
func (w HousingWeights) Validate() error {
	return checkConvex("housing weights", w.HomeValue, w.Rent, w.PriceIncome)
}

// HousingMetrics is the per-area affordability row. Higher scores mean more
// affordable.
type HousingMetrics struct {
	ZIP              string  `csv:"zip_code" json:"zip_code"`
	MedianHomeValue  float64 `csv:"median_home_value" json:"median_home_value"`
	MedianRent       float64 `csv:"median_rent" json:"median_rent"`
	MedianIncome     float64 `csv:"median_household_income" json:"median_household_income"`
	PriceToIncome    float64 `csv:"price_to_income_ratio" json:"price_to_income_ratio"`
	RentToIncome     float64 `csv:"rent_to_income_ratio" json:"rent_to_income_ratio"`
	HomeValueScore   float64 `csv:"home_value_score" json:"home_value_score"`
	RentScore        float64 `csv:"rent_score" json:"rent_score"`
	PriceIncomeScore float64 `csv:"price_income_score" json:"price_income_score"`
	Overall          float64 `csv:"overall_housing_score" json:"overall_housing_score"`
	ImputedHomeValue bool    `csv:"-" json:"imputed_home_value,omitempty"`
	ImputedRent      bool    `csv:"-" json:"imputed_rent,omitempty"`
	ImputedIncome    bool    `csv:"-" json:"imputed_income,omitempty"`
}

// ScoreHousing scores affordability from ACS estimates. Missing estimates are
// imputed with the column median across observed areas before the ratios are
// formed, so a gap in one series never drops the area. All three components
// are inverted: cheaper is better.
func ScoreHousing(observations []HousingObservation, weights HousingWeights) ([]HousingMetrics, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	n := len(observations)
	homeValues := make([]float64, n)
	rents := make([]float64, n)
	incomes := make([]float64, n)
	rows := make([]HousingMetrics, n)

	medHome := columnMedian(observations, func(o HousingObservation) *float64 { return o.HomeValue })
	medRent := columnMedian(observations, func(o HousingObservation) *float64 { return o.Rent })
	medIncome := columnMedian(observations, func(o HousingObservation) *float64 { return o.MedianIncome })

	imputed := 0
	for i, o := range observations {
		rows[i].ZIP = model.NormalizeZIP(o.ZIP)
		homeValues[i], rows[i].ImputedHomeValue = fillMissing(o.HomeValue, medHome)
		rents[i], rows[i].ImputedRent = fillMissing(o.Rent, medRent)
		incomes[i], rows[i].ImputedIncome = fillMissing(o.MedianIncome, medIncome)
		if rows[i].ImputedHomeValue || rows[i].ImputedRent || rows[i].ImputedIncome {
			imputed++
		}
		rows[i].MedianHomeValue = homeValues[i]
		rows[i].MedianRent = rents[i]
		rows[i].MedianIncome = incomes[i]
	}
	if imputed > 0 {
		zap.L().Info("housing: imputed missing estimates with column medians",
			zap.Int("areas", imputed))
	}

	ratios := make([]float64, n)
	for i := range rows {
		if incomes[i] > 0 {
			rows[i].PriceToIncome = homeValues[i] / incomes[i]
			rows[i].RentToIncome = rents[i] * 12 / incomes[i]
		}
		ratios[i] = rows[i].PriceToIncome
	}

	homeScores := normalize.MinMax(homeValues, true)
	rentScores := normalize.MinMax(rents, true)
	ratioScores := normalize.MinMax(ratios, true)
	for i := range rows {
		rows[i].HomeValueScore = homeScores[i]
		rows[i].RentScore = rentScores[i]
		rows[i].PriceIncomeScore = ratioScores[i]
		rows[i].Overall = homeScores[i]*weights.HomeValue +
			rentScores[i]*weights.Rent +
			ratioScores[i]*weights.PriceIncome
	}

	return rows, nil
}

func fillMissing(v *float64, median float64) (float64, bool) {
	if v == nil || IsCensusNA(*v) {
		return median, true
	}
	return *v, false
}

func columnMedian(observations []HousingObservation, field func(HousingObservation) *float64) float64 {
	vals := make([]float64, 0, len(observations))
	for _, o := range observations {
		if v := field(o); v != nil && !IsCensusNA(*v) {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// HousingScoreTable extracts the ZIP-to-score table for the merger.
func HousingScoreTable(rows []HousingMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = ptr(r.Overall)
	}
	return t
}
