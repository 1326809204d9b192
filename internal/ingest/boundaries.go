// Package ingest loads the upstream datasets into the pipeline's input types:
// boundary shapefiles, crime extracts, GTFS feeds, hospital and grade CSVs,
// and ACS estimates.
package ingest

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	geolib "github.com/sells-group/livability-cli/internal/geo"
	"github.com/sells-group/livability-cli/internal/model"
)

// LoadBoundaries parses a ZCTA shapefile, computes each area's planar size,
// and returns the registry the whole run keys on.
func LoadBoundaries(shpPath string, filter area.ShapefileFilter) (*area.Registry, error) {
	areas, err := area.ParseZCTAShapefile(shpPath, filter)
	if err != nil {
		return nil, err
	}
	for i := range areas {
		areas[i].AreaSqMi = geolib.AreaSqMi(areas[i].Boundary)
	}
	registry, err := area.NewRegistry(areas)
	if err != nil {
		return nil, err
	}
	zap.L().Info("ingest: loaded area boundaries",
		zap.String("shapefile", shpPath), zap.Int("areas", registry.Len()))
	return registry, nil
}

// SaveBoundariesGeoJSON writes the registry as a GeoJSON FeatureCollection so
// later runs (and the serve command) can reload it without the shapefile.
func SaveBoundariesGeoJSON(registry *area.Registry, path string) error {
	fc := geojson.FeatureCollection{}
	for _, a := range registry.Areas() {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       a.ZIP,
			Geometry: a.Boundary,
			Properties: map[string]any{
				"zip_code":   a.ZIP,
				"area_sq_mi": a.AreaSqMi,
			},
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "ingest: marshal boundaries")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "ingest: write %s", path)
	}
	return nil
}

// LoadBoundariesGeoJSON reloads a registry from a GeoJSON FeatureCollection
// written by SaveBoundariesGeoJSON.
func LoadBoundariesGeoJSON(path string) (*area.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}

	areas := make([]model.Area, 0, len(fc.Features))
	for _, f := range fc.Features {
		zip, _ := f.Properties["zip_code"].(string)
		if zip == "" {
			return nil, eris.Errorf("ingest: %s: feature without zip_code", path)
		}
		mp, err := asMultiPolygon(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s: area %s", path, zip)
		}
		a := model.Area{ZIP: model.NormalizeZIP(zip), Boundary: mp}
		if v, ok := f.Properties["area_sq_mi"].(float64); ok && v > 0 {
			a.AreaSqMi = v
		} else {
			a.AreaSqMi = geolib.AreaSqMi(mp)
		}
		areas = append(areas, a)
	}
	return area.NewRegistry(areas)
}

// asMultiPolygon accepts either polygon form a GeoJSON file may carry.
func asMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geom.XY)
		if err := mp.Push(t); err != nil {
			return nil, eris.Wrap(err, "ingest: convert polygon")
		}
		return mp, nil
	default:
		return nil, eris.Errorf("ingest: unexpected geometry type %T", g)
	}
}
