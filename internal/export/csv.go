// Package export writes pipeline results to the formats consumers actually
// use: CSV for spreadsheets, GeoJSON for maps, XLSX for the full workbook and
// a plain-text ranking report for the console.
package export

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
)

// summaryRecord flattens a composite row into one CSV line. Nil scores
// encode as empty cells, never as zeros.
type summaryRecord struct {
	ZIP        string   `csv:"zip_code"`
	AreaSqMi   float64  `csv:"area_sq_mi"`
	Crime      *float64 `csv:"crime_score"`
	Schools    *float64 `csv:"school_score"`
	Transit    *float64 `csv:"transit_score"`
	Housing    *float64 `csv:"housing_score"`
	Diversity  *float64 `csv:"diversity_score"`
	Healthcare *float64 `csv:"healthcare_score"`
	Lifestyle  *float64 `csv:"lifestyle_score"`
	Composite  *float64 `csv:"composite_score"`
	Tier       string   `csv:"tier"`
}

// scoreRecord is the compact scores-only export: one line per area with just
// the headline numbers.
type scoreRecord struct {
	ZIP       string   `csv:"zip_code"`
	Composite *float64 `csv:"composite_score"`
	Tier      string   `csv:"tier"`
}

// WriteSummaryCSV writes the full per-area summary with every domain score.
func WriteSummaryCSV(w io.Writer, rows []model.CompositeRow) error {
	records := make([]summaryRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, summaryRecord{
			ZIP:        r.ZIP,
			AreaSqMi:   r.AreaSqMi,
			Crime:      r.Scores.Crime,
			Schools:    r.Scores.Schools,
			Transit:    r.Scores.Transit,
			Housing:    r.Scores.Housing,
			Diversity:  r.Scores.Diversity,
			Healthcare: r.Scores.Healthcare,
			Lifestyle:  r.Scores.Lifestyle,
			Composite:  r.Composite,
			Tier:       string(r.Tier),
		})
	}
	return marshalCSV(w, records, "summary")
}

// WriteScoresCSV writes the compact zip/composite/tier export.
func WriteScoresCSV(w io.Writer, rows []model.CompositeRow) error {
	records := make([]scoreRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, scoreRecord{ZIP: r.ZIP, Composite: r.Composite, Tier: string(r.Tier)})
	}
	return marshalCSV(w, records, "scores")
}

// WriteMetricsCSV writes any slice of per-domain metric records (the domain
// packages tag their metric structs for csvutil).
func WriteMetricsCSV[T any](w io.Writer, records []T, what string) error {
	return marshalCSV(w, records, what)
}

func marshalCSV[T any](w io.Writer, records []T, what string) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrapf(err, "export: marshal %s csv", what)
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrapf(err, "export: write %s csv", what)
	}
	return nil
}
