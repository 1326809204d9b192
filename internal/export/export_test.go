package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

func testResultRows() []model.CompositeRow {
	return []model.CompositeRow{
		{
			ZIP:      "02108",
			AreaSqMi: 0.25,
			Scores: model.DomainScores{
				Crime:      fptr(7.2),
				Schools:    fptr(8.5),
				Transit:    fptr(9.1),
				Housing:    fptr(3.4),
				Diversity:  fptr(6.0),
				Healthcare: fptr(8.8),
				Lifestyle:  fptr(7.5),
			},
			Composite: fptr(7.31),
			Tier:      model.TierGood,
		},
		{
			ZIP:       "02109",
			AreaSqMi:  0.31,
			Scores:    model.DomainScores{Crime: fptr(6.1), Transit: fptr(5.0)},
			Composite: fptr(5.66),
			Tier:      model.TierBelowAverage,
		},
		{ZIP: "02110", AreaSqMi: 0.18, Tier: model.TierNoData},
	}
}

func square(t *testing.T, minLon, minLat, maxLon, maxLat float64) *geom.MultiPolygon {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	_, err := poly.SetCoords([][]geom.Coord{{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}})
	require.NoError(t, err)
	require.NoError(t, mp.Push(poly))
	return mp
}

func testRegistry(t *testing.T) *area.Registry {
	t.Helper()
	r, err := area.NewRegistry([]model.Area{
		{ZIP: "02108", Boundary: square(t, 0, 0, 10, 10), AreaSqMi: 0.25},
		{ZIP: "02109", Boundary: square(t, 10, 0, 20, 10), AreaSqMi: 0.31},
	})
	require.NoError(t, err)
	return r
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, testResultRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t,
		"zip_code,area_sq_mi,crime_score,school_score,transit_score,housing_score,diversity_score,healthcare_score,lifestyle_score,composite_score,tier",
		lines[0])
	assert.Contains(t, lines[1], "02108,")
	assert.Contains(t, lines[1], "Good")

	// The no-data row keeps empty cells, not zeros.
	assert.Contains(t, lines[3], "02110,0.18,,,,,,,,,No Data")
}

func TestWriteScoresCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScoresCSV(&buf, testResultRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "zip_code,composite_score,tier", lines[0])
	assert.Equal(t, "02108,7.31,Good", lines[1])
	assert.Equal(t, "02110,,No Data", lines[3])
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	// 02110 has no boundary in the registry and should be skipped.
	require.NoError(t, WriteGeoJSON(&buf, testRegistry(t), testResultRows()))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry   json.RawMessage `json:"geometry"`
			Properties map[string]any  `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	props := fc.Features[0].Properties
	assert.Equal(t, "02108", props["zip_code"])
	assert.InDelta(t, 7.31, props["composite_score"].(float64), 1e-9)
	assert.Equal(t, "Good", props["tier"])
	assert.NotEmpty(t, fc.Features[0].Geometry)

	// Partial row: missing scores serialize as null.
	props = fc.Features[1].Properties
	assert.Equal(t, "02109", props["zip_code"])
	assert.Nil(t, props["school_score"])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	run := &model.Run{
		ID:          "run-1",
		StartedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		Areas:       3,
	}
	require.NoError(t, WriteXLSX(path, run, testResultRows()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	scores := f.Sheets[0]
	assert.Equal(t, "Scores", scores.Name)
	require.Len(t, scores.Rows, 4)
	assert.Equal(t, "ZIP Code", scores.Rows[0].Cells[0].String())
	assert.Equal(t, "02108", scores.Rows[1].Cells[0].String())

	composite, err := scores.Rows[1].Cells[9].Float()
	require.NoError(t, err)
	assert.InDelta(t, 7.31, composite, 1e-9)

	// Nil scores stay blank.
	assert.Equal(t, "", scores.Rows[3].Cells[2].String())
	assert.Equal(t, "No Data", scores.Rows[3].Cells[10].String())

	runSheet := f.Sheets[1]
	assert.Equal(t, "Run", runSheet.Name)
	assert.Equal(t, "run-1", runSheet.Rows[0].Cells[1].String())
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	run := &model.Run{ID: "run-1", Areas: 3, PointsDropped: 2, OrphanRows: 1}
	require.NoError(t, WriteReport(&buf, run, testResultRows()))

	out := buf.String()
	assert.Contains(t, out, "Scored 2 of 3 areas")
	assert.Contains(t, out, "1. 02108")
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "No Data")
	assert.Contains(t, out, "crime")

	// Ranking order: higher composite first.
	assert.Less(t, strings.Index(out, "02108"), strings.Index(out, "02109"))
}
