package domain

import (
	"github.com/sells-group/livability-cli/internal/model"
)

// LifestyleGrades carries the published amenity letter grades for one area:
// nightlife, health & fitness, and outdoor activities.
type LifestyleGrades struct {
	ZIP       string `csv:"zip_code" json:"zip_code"`
	Nightlife string `csv:"nightlife" json:"nightlife"`
	Health    string `csv:"health" json:"health"`
	Outdoor   string `csv:"outdoor" json:"outdoor"`
}

// LifestyleMetrics is the per-area lifestyle row. Component scores are nil
// when the grade was not published; Overall is the unweighted mean of the
// components that exist, and nil only when none do.
type LifestyleMetrics struct {
	ZIP            string   `csv:"zip_code" json:"zip_code"`
	NightlifeScore *float64 `csv:"nightlife_score" json:"nightlife_score"`
	HealthScore    *float64 `csv:"health_score" json:"health_score"`
	OutdoorScore   *float64 `csv:"outdoor_score" json:"outdoor_score"`
	Overall        *float64 `csv:"overall_lifestyle_score" json:"overall_lifestyle_score"`
}

// ScoreLifestyle converts amenity grades to scores and averages whatever is
// available. A single published grade still yields an overall score.
func ScoreLifestyle(grades []LifestyleGrades) []LifestyleMetrics {
	rows := make([]LifestyleMetrics, len(grades))
	for i, g := range grades {
		row := LifestyleMetrics{ZIP: model.NormalizeZIP(g.ZIP)}
		row.NightlifeScore = gradePtr(g.Nightlife)
		row.HealthScore = gradePtr(g.Health)
		row.OutdoorScore = gradePtr(g.Outdoor)

		sum, n := 0.0, 0
		for _, s := range []*float64{row.NightlifeScore, row.HealthScore, row.OutdoorScore} {
			if s != nil {
				sum += *s
				n++
			}
		}
		if n > 0 {
			row.Overall = ptr(sum / float64(n))
		}
		rows[i] = row
	}
	return rows
}

func gradePtr(grade string) *float64 {
	if v, ok := GradeScore(grade); ok {
		return ptr(v)
	}
	return nil
}

// LifestyleScoreTable extracts the ZIP-to-score table for the merger.
func LifestyleScoreTable(rows []LifestyleMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = r.Overall
	}
	return t
}
