package domain

import "strings"

// gradeScale maps letter grades to a 0-10 score. A dash means no grade was
// published; it maps to a nil score, not zero.
var gradeScale = map[string]float64{
	"A+": 10.0,
	"A":  9.0,
	"A-": 8.5,
	"B+": 7.5,
	"B":  6.5,
	"B-": 6.0,
	"C+": 5.0,
	"C":  4.0,
	"C-": 3.5,
	"D+": 2.5,
	"D":  1.5,
	"D-": 1.0,
	"F":  0.5,
}

// GradeScore converts a letter grade to a score. The second return is false
// for a missing grade ("-" or empty) or an unrecognized letter.
func GradeScore(grade string) (float64, bool) {
	g := strings.ToUpper(strings.TrimSpace(grade))
	if g == "" || g == "-" {
		return 0, false
	}
	v, ok := gradeScale[g]
	return v, ok
}
