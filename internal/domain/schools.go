package domain

import (
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/model"
)

// SchoolGrade is the published public-school letter grade for one area.
type SchoolGrade struct {
	ZIP   string `csv:"zip_code" json:"zip_code"`
	Grade string `csv:"school_grade" json:"school_grade"`
}

// SchoolMetrics is the per-area school row. Score is nil when no grade was
// published for the area.
type SchoolMetrics struct {
	ZIP   string   `csv:"zip_code" json:"zip_code"`
	Grade string   `csv:"school_grade" json:"school_grade"`
	Score *float64 `csv:"school_score" json:"school_score"`
}

// ScoreSchools converts published letter grades to scores. Ungraded areas
// keep a row with a nil score.
func ScoreSchools(grades []SchoolGrade) []SchoolMetrics {
	rows := make([]SchoolMetrics, len(grades))
	for i, g := range grades {
		zip := model.NormalizeZIP(g.ZIP)
		rows[i] = SchoolMetrics{ZIP: zip, Grade: g.Grade}
		if v, ok := GradeScore(g.Grade); ok {
			rows[i].Score = ptr(v)
		} else {
			zap.L().Debug("schools: no published grade", zap.String("zip", zip),
				zap.String("grade", g.Grade))
		}
	}
	return rows
}

// SchoolScoreTable extracts the ZIP-to-score table for the merger.
func SchoolScoreTable(rows []SchoolMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = r.Score
	}
	return t
}
