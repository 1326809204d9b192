package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/livability-cli/internal/model"
)

const scoreFormat = "0.00"

// WriteXLSX writes the full results workbook: a scores sheet with every
// domain column plus a run-info sheet with the bookkeeping counts.
func WriteXLSX(path string, run *model.Run, rows []model.CompositeRow) error {
	f := xlsx.NewFile()

	if err := addScoresSheet(f, rows); err != nil {
		return err
	}
	if run != nil {
		if err := addRunSheet(f, run); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addScoresSheet(f *xlsx.File, rows []model.CompositeRow) error {
	sheet, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "export: add scores sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"ZIP Code", "Area (sq mi)",
		"Crime", "Schools", "Transit", "Housing", "Diversity", "Healthcare", "Lifestyle",
		"Composite", "Tier",
	} {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ZIP)
		row.AddCell().SetFloatWithFormat(r.AreaSqMi, scoreFormat)
		for _, d := range model.Domains() {
			setScoreCell(row.AddCell(), r.Scores.Get(d))
		}
		setScoreCell(row.AddCell(), r.Composite)
		row.AddCell().SetString(string(r.Tier))
	}
	return nil
}

func addRunSheet(f *xlsx.File, run *model.Run) error {
	sheet, err := f.AddSheet("Run")
	if err != nil {
		return eris.Wrap(err, "export: add run sheet")
	}

	add := func(label, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetString(value)
	}
	add("Run ID", run.ID)
	add("Started", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	add("Completed", run.CompletedAt.Format("2006-01-02 15:04:05 MST"))

	addInt := func(label string, value int) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetInt(value)
	}
	addInt("Areas", run.Areas)
	addInt("Points dropped", run.PointsDropped)
	addInt("Orphan rows", run.OrphanRows)
	return nil
}

// setScoreCell writes a score or leaves the cell blank when the score is nil,
// so spreadsheet averages skip it instead of counting a zero.
func setScoreCell(cell *xlsx.Cell, v *float64) {
	if v == nil {
		return
	}
	cell.SetFloatWithFormat(*v, scoreFormat)
}
