// Package geo provides the spatial primitives for the livability pipeline:
// point-in-polygon containment, centroids, planar areas, and great-circle
// distances. All geometries are WGS84 with go-geom's lon/lat coordinate order.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const (
	// earthRadiusMi is the mean Earth radius in miles.
	earthRadiusMi = 3958.7613

	// webMercatorRadius is the sphere radius used by EPSG:3857, in meters.
	webMercatorRadius = 6378137.0

	// sqMetersPerSqMile converts projected square meters to square miles.
	sqMetersPerSqMile = 2.59e6
)

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMi * math.Asin(math.Sqrt(h))
}

// ContainsPoint reports whether the multipolygon contains the point, using
// exact ring containment: inside the exterior ring of some polygon and outside
// all of that polygon's holes.
func ContainsPoint(mp *geom.MultiPolygon, p Point) bool {
	if mp == nil {
		return false
	}
	coord := geom.Coord{p.Lon, p.Lat}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(poly.Layout(), coord, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for r := 1; r < poly.NumLinearRings(); r++ {
			if xy.IsPointInRing(poly.Layout(), coord, poly.LinearRing(r).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Centroid returns the area-weighted centroid of the multipolygon.
func Centroid(mp *geom.MultiPolygon) Point {
	if mp == nil || mp.NumPolygons() == 0 {
		return Point{}
	}
	polys := make([]*geom.Polygon, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		polys = append(polys, mp.Polygon(i))
	}
	c := xy.PolygonsCentroid(polys[0], polys[1:]...)
	return Point{Lat: c[1], Lon: c[0]}
}

// AreaSqMi returns the planar area of the multipolygon in square miles.
// Coordinates are reprojected to Web Mercator (EPSG:3857) before the shoelace
// sum, matching how the registry's area_sq_mi figures are derived.
func AreaSqMi(mp *geom.MultiPolygon) float64 {
	if mp == nil {
		return 0
	}
	var total float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for r := 0; r < poly.NumLinearRings(); r++ {
			a := projectedRingArea(poly.LinearRing(r).FlatCoords(), poly.Layout().Stride())
			if r == 0 {
				total += a
			} else {
				total -= a // holes
			}
		}
	}
	return total / sqMetersPerSqMile
}

// projectedRingArea computes the absolute shoelace area of a ring after
// projecting each vertex to Web Mercator meters.
func projectedRingArea(flat []float64, stride int) float64 {
	n := len(flat) / stride
	if n < 3 {
		return 0
	}
	var sum float64
	px, py := mercator(flat[1], flat[0])
	firstX, firstY := px, py
	for i := 1; i < n; i++ {
		x, y := mercator(flat[i*stride+1], flat[i*stride])
		sum += px*y - x*py
		px, py = x, y
	}
	sum += px*firstY - firstX*py
	return math.Abs(sum) / 2
}

// mercator projects a lat/lon pair to EPSG:3857 meters.
func mercator(lat, lon float64) (x, y float64) {
	x = webMercatorRadius * lon * math.Pi / 180
	y = webMercatorRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}
