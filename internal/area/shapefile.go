package area

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/geo"
	"github.com/sells-group/livability-cli/internal/model"
)

// zctaCodeField is the ZCTA code attribute in Census TIGER ZCTA5 shapefiles.
const zctaCodeField = "ZCTA5CE20"

// ShapefileFilter restricts which ZCTA records become registry areas.
type ShapefileFilter struct {
	// ZIPPrefix keeps only codes with this prefix (e.g. "02" for the Boston
	// area). Empty keeps everything.
	ZIPPrefix string
	// AllowedZIPs, when non-empty, keeps only the listed codes (the county's
	// standard-type ZIPs). Codes are normalized before comparison.
	AllowedZIPs []string
}

func (f ShapefileFilter) allows(zip string) bool {
	if f.ZIPPrefix != "" && !strings.HasPrefix(zip, f.ZIPPrefix) {
		return false
	}
	if len(f.AllowedZIPs) == 0 {
		return true
	}
	for _, a := range f.AllowedZIPs {
		if model.NormalizeZIP(a) == zip {
			return true
		}
	}
	return false
}

// ParseZCTAShapefile reads a TIGER ZCTA5 shapefile and returns one area per
// matching record, with boundaries in WGS84 and areas in square miles.
// Records without a usable polygon are skipped and counted.
func ParseZCTAShapefile(shpPath string, filter ShapefileFilter) ([]model.Area, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "area: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, zctaCodeField) {
			codeIdx = i
			break
		}
	}
	if codeIdx < 0 {
		return nil, eris.Errorf("area: shapefile missing %s field", zctaCodeField)
	}

	var areas []model.Area
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		zip := model.NormalizeZIP(strings.TrimRight(reader.Attribute(codeIdx), "\x00"))
		if !filter.allows(zip) {
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		boundary := polygonToMultiPolygon(poly)
		if boundary == nil {
			skipped++
			continue
		}

		areas = append(areas, model.Area{
			ZIP:      zip,
			Boundary: boundary,
			AreaSqMi: geo.AreaSqMi(boundary),
		})
	}

	if skipped > 0 {
		zap.L().Debug("area: skipped shapefile records without usable polygons",
			zap.Int("skipped", skipped),
		)
	}

	return areas, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile winding order carries the ring role: exterior rings run clockwise,
// hole rings counter-clockwise. Each clockwise part starts a new polygon; each
// counter-clockwise part is attached as an interior ring of the exterior that
// encloses it. Malformed parts are skipped.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var polys []*geom.Polygon

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 { // a closed ring needs at least 4 vertices
			zap.L().Debug("area: skipping degenerate polygon ring", zap.Int32("part", i))
			continue
		}

		// A counter-clockwise part before any exterior is treated as an
		// exterior anyway; sloppy shapefiles mis-wind lone rings.
		if xy.IsRingCounterClockwise(geom.XY, flat) && len(polys) > 0 {
			host := enclosingPolygon(polys, flat)
			if host == nil {
				zap.L().Debug("area: hole ring with no enclosing exterior", zap.Int32("part", i))
				continue
			}
			if err := host.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
				zap.L().Debug("area: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("area: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		polys = append(polys, poly)
	}

	if len(polys) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i, poly := range polys {
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("area: skipping malformed polygon part", zap.Int("polygon", i), zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// enclosingPolygon returns the polygon whose exterior ring contains the hole's
// first vertex, preferring the most recently started exterior.
func enclosingPolygon(polys []*geom.Polygon, hole []float64) *geom.Polygon {
	coord := geom.Coord{hole[0], hole[1]}
	for i := len(polys) - 1; i >= 0; i-- {
		if xy.IsPointInRing(geom.XY, coord, polys[i].LinearRing(0).FlatCoords()) {
			return polys[i]
		}
	}
	return nil
}
