// Package model holds the core data types shared across the livability pipeline.
package model

import (
	"strings"

	"github.com/twpayne/go-geom"
)

// ZIPCodeLen is the fixed width of a ZCTA area identifier.
const ZIPCodeLen = 5

// Area is a single ZCTA-level geographic unit: the unit of analysis for
// every domain score and for the final composite.
type Area struct {
	// ZIP is the zero-padded 5-digit ZCTA code. Leading zeros are
	// significant; "2108" and "02108" are the same area and must always be
	// stored in the padded form.
	ZIP string

	// Boundary is the area polygon in WGS84 (lon/lat order per go-geom
	// convention).
	Boundary *geom.MultiPolygon

	// AreaSqMi is the planar area in square miles, used to turn raw counts
	// into per-square-mile rates.
	AreaSqMi float64
}

// NormalizeZIP pads a ZIP code to the fixed 5-digit width. Codes that are
// already padded (or too long to be ZIPs) are returned trimmed but otherwise
// untouched.
func NormalizeZIP(code string) string {
	code = strings.TrimSpace(code)
	for len(code) < ZIPCodeLen {
		code = "0" + code
	}
	return code
}
