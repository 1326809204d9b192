package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/model"
)

// WriteGeoJSON joins scored rows back to their boundary polygons and writes a
// FeatureCollection suitable for choropleth mapping. Rows whose area has no
// boundary in the registry are skipped with a warning; they cannot be drawn.
func WriteGeoJSON(w io.Writer, registry *area.Registry, rows []model.CompositeRow) error {
	fc := geojson.FeatureCollection{}
	for _, r := range rows {
		a, ok := registry.Get(r.ZIP)
		if !ok {
			zap.L().Warn("export: no boundary for scored area", zap.String("zip", r.ZIP))
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ZIP,
			Geometry: a.Boundary,
			Properties: map[string]any{
				"zip_code":         r.ZIP,
				"area_sq_mi":       r.AreaSqMi,
				"crime_score":      scoreProp(r.Scores.Crime),
				"school_score":     scoreProp(r.Scores.Schools),
				"transit_score":    scoreProp(r.Scores.Transit),
				"housing_score":    scoreProp(r.Scores.Housing),
				"diversity_score":  scoreProp(r.Scores.Diversity),
				"healthcare_score": scoreProp(r.Scores.Healthcare),
				"lifestyle_score":  scoreProp(r.Scores.Lifestyle),
				"composite_score":  scoreProp(r.Composite),
				"tier":             string(r.Tier),
			},
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}

// scoreProp keeps nil scores as JSON null instead of a typed nil pointer.
func scoreProp(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
