package domain

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/normalize"
)

// TransitStation is a rail or rapid-transit station already assigned to an
// area by the spatial join.
type TransitStation struct {
	ZIP  string
	Name string
}

// TransitWeights combines the station count and density component scores.
type TransitWeights struct {
	Count   float64 `yaml:"count"`
	Density float64 `yaml:"density"`
}

// DefaultTransitWeights returns the standard transit component weights.
func DefaultTransitWeights() TransitWeights {
	return TransitWeights{Count: 0.6, Density: 0.4}
}

// Validate checks the weights form a convex combination.
func (w TransitWeights) Validate() error {
	return checkConvex("transit weights", w.Count, w.Density)
}

// TransitMetrics is the per-area transit access row.
type TransitMetrics struct {
	ZIP          string  `csv:"zip_code" json:"zip_code"`
	TotalStops   int     `csv:"total_stops" json:"total_stops"`
	AreaSqMi     float64 `csv:"area_sq_mi" json:"area_sq_mi"`
	StopsPerSqMi float64 `csv:"stops_per_sq_mi" json:"stops_per_sq_mi"`
	CountScore   float64 `csv:"transit_score" json:"transit_score"`
	DensityScore float64 `csv:"transit_density_score" json:"transit_density_score"`
	Overall      float64 `csv:"overall_transit_score" json:"overall_transit_score"`
}

// ScoreTransit aggregates stations per area and scores count and density.
// Every registered area gets a row; zero stations is a real observation.
func ScoreTransit(areas []model.Area, stations []TransitStation, weights TransitWeights) ([]TransitMetrics, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(areas))
	for _, a := range areas {
		counts[a.ZIP] = 0
	}
	for _, s := range stations {
		zip := model.NormalizeZIP(s.ZIP)
		if _, ok := counts[zip]; !ok {
			return nil, eris.Errorf("transit: station %q references unregistered ZIP %s", s.Name, s.ZIP)
		}
		counts[zip]++
	}

	rows := make([]TransitMetrics, len(areas))
	totals := make([]float64, len(areas))
	densities := make([]float64, len(areas))
	for i, a := range areas {
		n := counts[a.ZIP]
		rows[i] = TransitMetrics{
			ZIP:          a.ZIP,
			TotalStops:   n,
			AreaSqMi:     a.AreaSqMi,
			StopsPerSqMi: float64(n) / a.AreaSqMi,
		}
		totals[i] = float64(n)
		densities[i] = rows[i].StopsPerSqMi
	}

	countScores := normalize.MinMax(totals, false)
	densityScores := normalize.MinMax(densities, false)
	for i := range rows {
		rows[i].CountScore = countScores[i]
		rows[i].DensityScore = densityScores[i]
		rows[i].Overall = countScores[i]*weights.Count + densityScores[i]*weights.Density
	}

	return rows, nil
}

// TransitScoreTable extracts the ZIP-to-score table for the merger.
func TransitScoreTable(rows []TransitMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = ptr(r.Overall)
	}
	return t
}
