// Package area maintains the authoritative registry of geographic areas.
// Every downstream table joins against it by zero-padded ZIP code.
package area

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
)

// Registry is the authoritative, immutable set of areas for a run. All other
// pipeline stages key against its ZIP set; the terminal composite table must
// contain exactly these codes, no more and no fewer.
type Registry struct {
	areas  []model.Area
	byCode map[string]int
}

// NewRegistry builds a registry from the given areas. Codes are normalized to
// the padded 5-digit form and must be unique; each area needs a positive area
// measure so rate denominators are valid.
func NewRegistry(areas []model.Area) (*Registry, error) {
	if len(areas) == 0 {
		return nil, eris.New("area: registry requires at least one area")
	}

	sorted := make([]model.Area, len(areas))
	copy(sorted, areas)
	for i := range sorted {
		sorted[i].ZIP = model.NormalizeZIP(sorted[i].ZIP)
	}
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].ZIP < sorted[k].ZIP })

	byCode := make(map[string]int, len(sorted))
	for i, a := range sorted {
		if _, dup := byCode[a.ZIP]; dup {
			return nil, eris.Errorf("area: duplicate ZIP %s in registry", a.ZIP)
		}
		if a.AreaSqMi <= 0 {
			return nil, eris.Errorf("area: ZIP %s has non-positive area %.4f", a.ZIP, a.AreaSqMi)
		}
		byCode[a.ZIP] = i
	}

	return &Registry{areas: sorted, byCode: byCode}, nil
}

// Len returns the number of registered areas.
func (r *Registry) Len() int { return len(r.areas) }

// Areas returns all areas in ascending ZIP order.
func (r *Registry) Areas() []model.Area { return r.areas }

// ZIPs returns the sorted area codes.
func (r *Registry) ZIPs() []string {
	codes := make([]string, len(r.areas))
	for i, a := range r.areas {
		codes[i] = a.ZIP
	}
	return codes
}

// Get returns the area for a (possibly unpadded) ZIP code.
func (r *Registry) Get(zip string) (model.Area, bool) {
	i, ok := r.byCode[model.NormalizeZIP(zip)]
	if !ok {
		return model.Area{}, false
	}
	return r.areas[i], true
}

// Contains reports whether the ZIP is registered.
func (r *Registry) Contains(zip string) bool {
	_, ok := r.byCode[model.NormalizeZIP(zip)]
	return ok
}
