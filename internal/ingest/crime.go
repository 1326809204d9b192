package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/geo"
)

// crimeLookback is how far back incidents count toward the rates. Older
// records no longer describe the neighborhood.
const crimeLookback = 3 * 365 * 24 * time.Hour

// incidentRecord mirrors the open-data incident extract's columns.
type incidentRecord struct {
	Offense    string  `csv:"OFFENSE_DESCRIPTION"`
	OccurredOn string  `csv:"OCCURRED_ON_DATE"`
	Lat        float64 `csv:"Lat,omitempty"`
	Lon        float64 `csv:"Long,omitempty"`
}

// CrimeIngestReport describes what the incident load kept and dropped.
type CrimeIngestReport struct {
	Read          int
	NoCoordinates int
	TooOld        int
	Join          geo.JoinReport
}

// LoadCrimeIncidents reads an incident extract, filters it to usable recent
// records, and assigns each incident to an area by point-in-polygon. Records
// without coordinates or outside the lookback window are dropped and counted;
// a missing offense description classifies as Other rather than killing the
// row. Incidents landing outside every boundary are counted in the join
// report's Dropped.
func LoadCrimeIncidents(ctx context.Context, r io.Reader, registry *area.Registry, now time.Time) ([]domain.CrimeIncident, CrimeIngestReport, error) {
	var report CrimeIngestReport

	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, report, eris.Wrap(err, "ingest: crime csv header")
	}
	cutoff := now.Add(-crimeLookback)

	var (
		points   []geo.Point
		offenses []string
	)
	for {
		var rec incidentRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, report, eris.Wrap(err, "ingest: crime csv row")
		}
		report.Read++

		if rec.Lat == 0 && rec.Lon == 0 {
			report.NoCoordinates++
			continue
		}
		if ts, err := parseIncidentTime(rec.OccurredOn); err == nil && ts.Before(cutoff) {
			report.TooOld++
			continue
		}
		offense := rec.Offense
		if offense == "" {
			offense = "UNKNOWN"
		}
		points = append(points, geo.Point{Lat: rec.Lat, Lon: rec.Lon})
		offenses = append(offenses, offense)
	}

	joiner := geo.NewJoiner(areaPolygons(registry))
	zips, joinReport, err := joiner.Assign(ctx, points)
	if err != nil {
		return nil, report, err
	}
	report.Join = joinReport

	incidents := make([]domain.CrimeIncident, 0, len(points))
	for i, zip := range zips {
		if zip == "" {
			continue
		}
		incidents = append(incidents, domain.CrimeIncident{ZIP: zip, Offense: offenses[i]})
	}

	zap.L().Info("ingest: loaded crime incidents",
		zap.Int("read", report.Read),
		zap.Int("assigned", len(incidents)),
		zap.Int("no_coordinates", report.NoCoordinates),
		zap.Int("too_old", report.TooOld),
		zap.Int("outside_boundaries", joinReport.Dropped),
	)
	return incidents, report, nil
}

// parseIncidentTime accepts the timestamp formats open-data portals emit.
func parseIncidentTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, eris.Errorf("ingest: unparseable timestamp %q", s)
}

// areaPolygons adapts the registry to the spatial joiner's input.
func areaPolygons(registry *area.Registry) []geo.AreaPolygon {
	areas := registry.Areas()
	polys := make([]geo.AreaPolygon, len(areas))
	for i, a := range areas {
		polys[i] = geo.AreaPolygon{ZIP: a.ZIP, Boundary: a.Boundary}
	}
	return polys
}
