package ingest

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/geo"
)

// gtfsLocationStation is the stops.txt location_type for a parent station.
// Plain boarding platforms (type 0, usually blank) would count the same
// station many times over.
const gtfsLocationStation = "1"

// gtfsStop mirrors the stops.txt columns the pipeline reads. GTFS files carry
// many optional columns; csvutil ignores the rest.
type gtfsStop struct {
	ID           string  `csv:"stop_id"`
	Name         string  `csv:"stop_name"`
	Lat          float64 `csv:"stop_lat,omitempty"`
	Lon          float64 `csv:"stop_lon,omitempty"`
	LocationType string  `csv:"location_type,omitempty"`
}

// TransitIngestReport describes what the GTFS load kept and dropped.
type TransitIngestReport struct {
	StopsRead int
	Stations  int
	Join      geo.JoinReport
}

// LoadTransitStations reads a GTFS stops.txt, keeps only parent stations, and
// assigns each to an area. Stations outside every boundary are dropped and
// counted in the join report.
func LoadTransitStations(ctx context.Context, r io.Reader, registry *area.Registry) ([]domain.TransitStation, TransitIngestReport, error) {
	var report TransitIngestReport

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, report, eris.Wrap(err, "ingest: stops.txt header")
	}

	var (
		points []geo.Point
		names  []string
	)
	for {
		var stop gtfsStop
		if err := dec.Decode(&stop); err == io.EOF {
			break
		} else if err != nil {
			return nil, report, eris.Wrap(err, "ingest: stops.txt row")
		}
		report.StopsRead++

		if stop.LocationType != gtfsLocationStation {
			continue
		}
		report.Stations++
		points = append(points, geo.Point{Lat: stop.Lat, Lon: stop.Lon})
		names = append(names, stop.Name)
	}

	joiner := geo.NewJoiner(areaPolygons(registry))
	zips, joinReport, err := joiner.Assign(ctx, points)
	if err != nil {
		return nil, report, err
	}
	report.Join = joinReport

	stations := make([]domain.TransitStation, 0, len(points))
	for i, zip := range zips {
		if zip == "" {
			continue
		}
		stations = append(stations, domain.TransitStation{ZIP: zip, Name: names[i]})
	}

	zap.L().Info("ingest: loaded transit stations",
		zap.Int("stops_read", report.StopsRead),
		zap.Int("stations", report.Stations),
		zap.Int("assigned", len(stations)),
		zap.Int("outside_boundaries", joinReport.Dropped),
	)
	return stations, report, nil
}
