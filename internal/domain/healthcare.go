package domain

import (
	"math"

	"github.com/sells-group/livability-cli/internal/geo"
	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/normalize"
)

// Hospital tiers. Tier 1 facilities anchor the access score.
const (
	TierMajorTeaching = 1
	TierCommunity     = 2
	TierSpecialty     = 3
)

// Search radii in miles for the density components.
const (
	radiusNear = 2.0
	radiusMid  = 3.0
	radiusFar  = 5.0
)

// Hospital is a medical facility with a location and a tier classification.
type Hospital struct {
	Name    string  `csv:"name" json:"name"`
	Address string  `csv:"address" json:"address,omitempty"`
	City    string  `csv:"city" json:"city,omitempty"`
	ZIP     string  `csv:"zip_code" json:"zip_code,omitempty"`
	Lat     float64 `csv:"lat" json:"lat"`
	Lon     float64 `csv:"lon" json:"lon"`
	Tier    int     `csv:"tier" json:"tier"`
	Rating  float64 `csv:"rating" json:"rating,omitempty"`
	Type    string  `csv:"hospital_type" json:"hospital_type,omitempty"`
}

// HealthcareWeights combines the four access component scores.
type HealthcareWeights struct {
	NearestTier1 float64 `yaml:"nearest_tier1"`
	Nearest      float64 `yaml:"nearest"`
	Density      float64 `yaml:"density"`
	Tier1Access  float64 `yaml:"tier1_access"`
}

// DefaultHealthcareWeights returns the standard healthcare component weights.
func DefaultHealthcareWeights() HealthcareWeights {
	return HealthcareWeights{NearestTier1: 0.40, Nearest: 0.25, Density: 0.20, Tier1Access: 0.15}
}

// Validate checks the weights form a convex combination.
func (w HealthcareWeights) Validate() error {
	return checkConvex("healthcare weights", w.NearestTier1, w.Nearest, w.Density, w.Tier1Access)
}

// HealthcareMetrics is the per-area healthcare access row. Distances are
// great-circle miles from the area's boundary centroid.
type HealthcareMetrics struct {
	ZIP               string   `csv:"zip_code" json:"zip_code"`
	NearestHospital   string   `csv:"nearest_hospital" json:"nearest_hospital"`
	NearestDist       float64  `csv:"nearest_hospital_dist" json:"nearest_hospital_dist"`
	NearestTier1Dist  *float64 `csv:"nearest_tier1_dist" json:"nearest_tier1_dist"`
	Within2Mi         int      `csv:"hospitals_within_2mi" json:"hospitals_within_2mi"`
	Within3Mi         int      `csv:"hospitals_within_3mi" json:"hospitals_within_3mi"`
	Within5Mi         int      `csv:"hospitals_within_5mi" json:"hospitals_within_5mi"`
	Tier1Within5Mi    int      `csv:"tier1_within_5mi" json:"tier1_within_5mi"`
	NearestScore      float64  `csv:"nearest_hospital_score" json:"nearest_hospital_score"`
	NearestTier1Score float64  `csv:"nearest_tier1_score" json:"nearest_tier1_score"`
	DensityScore      float64  `csv:"density_score" json:"density_score"`
	Tier1AccessScore  float64  `csv:"tier1_access_score" json:"tier1_access_score"`
	Overall           float64  `csv:"overall_healthcare_score" json:"overall_healthcare_score"`
}

// ScoreHealthcare measures hospital access from each area centroid and scores
// it. Distance components are inverted (closer is better); count components
// are not. With no tier-1 facilities in the input the tier-1 distance series
// is degenerate and every area scores neutral on it.
func ScoreHealthcare(areas []model.Area, centroids map[string]geo.Point, hospitals []Hospital, weights HealthcareWeights) ([]HealthcareMetrics, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	rows := make([]HealthcareMetrics, len(areas))
	nearestDists := make([]float64, len(areas))
	tier1Dists := make([]float64, len(areas))
	far5 := make([]float64, len(areas))
	tier1Within5 := make([]float64, len(areas))
	haveTier1 := false

	for i, a := range areas {
		center := centroids[a.ZIP]
		row := HealthcareMetrics{ZIP: a.ZIP, NearestDist: math.Inf(1)}
		nearestTier1 := math.Inf(1)

		for _, h := range hospitals {
			d := geo.HaversineMiles(center, geo.Point{Lat: h.Lat, Lon: h.Lon})
			if d < row.NearestDist {
				row.NearestDist = d
				row.NearestHospital = h.Name
			}
			if d <= radiusNear {
				row.Within2Mi++
			}
			if d <= radiusMid {
				row.Within3Mi++
			}
			if d <= radiusFar {
				row.Within5Mi++
			}
			if h.Tier == TierMajorTeaching {
				haveTier1 = true
				if d < nearestTier1 {
					nearestTier1 = d
				}
				if d <= radiusFar {
					row.Tier1Within5Mi++
				}
			}
		}

		if !math.IsInf(nearestTier1, 1) {
			row.NearestTier1Dist = ptr(nearestTier1)
		}
		rows[i] = row
		nearestDists[i] = row.NearestDist
		tier1Dists[i] = nearestTier1
		far5[i] = float64(row.Within5Mi)
		tier1Within5[i] = float64(row.Tier1Within5Mi)
	}

	nearestScores := normalize.MinMax(nearestDists, true)
	var tier1Scores []float64
	if haveTier1 {
		tier1Scores = normalize.MinMax(tier1Dists, true)
	} else {
		tier1Scores = make([]float64, len(areas))
		for i := range tier1Scores {
			tier1Scores[i] = normalize.Neutral
		}
	}
	densityScores := normalize.MinMax(far5, false)
	tier1AccessScores := normalize.MinMax(tier1Within5, false)

	for i := range rows {
		rows[i].NearestScore = nearestScores[i]
		rows[i].NearestTier1Score = tier1Scores[i]
		rows[i].DensityScore = densityScores[i]
		rows[i].Tier1AccessScore = tier1AccessScores[i]
		rows[i].Overall = tier1Scores[i]*weights.NearestTier1 +
			nearestScores[i]*weights.Nearest +
			densityScores[i]*weights.Density +
			tier1AccessScores[i]*weights.Tier1Access
	}

	return rows, nil
}

// HealthcareScoreTable extracts the ZIP-to-score table for the merger.
func HealthcareScoreTable(rows []HealthcareMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = ptr(r.Overall)
	}
	return t
}
