package geo

import (
	"context"
	"sort"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AreaPolygon pairs an area identifier with its boundary for containment
// testing. Callers build these from the registry; the joiner itself has no
// registry dependency.
type AreaPolygon struct {
	ZIP      string
	Boundary *geom.MultiPolygon
}

// JoinReport summarizes a spatial join.
type JoinReport struct {
	Matched int `json:"matched"`
	// Dropped counts points contained by no area. These are discarded, not
	// errors.
	Dropped int `json:"dropped"`
	// Ambiguous counts points contained by more than one area. Boundaries are
	// assumed non-overlapping; a nonzero count means the boundary dataset has
	// overlap slivers and is surfaced rather than silently resolved. The
	// lowest ZIP wins for determinism.
	Ambiguous int `json:"ambiguous"`
}

// Joiner assigns point records to containing areas.
type Joiner struct {
	areas   []AreaPolygon
	workers int
}

// JoinerOption configures a Joiner.
type JoinerOption func(*Joiner)

// WithWorkers sets the number of concurrent containment workers.
func WithWorkers(n int) JoinerOption {
	return func(j *Joiner) {
		if n > 0 {
			j.workers = n
		}
	}
}

// NewJoiner creates a Joiner over the given area polygons. Areas are sorted by
// ZIP so that first-match resolution of ambiguous points is deterministic.
func NewJoiner(areas []AreaPolygon, opts ...JoinerOption) *Joiner {
	sorted := make([]AreaPolygon, len(areas))
	copy(sorted, areas)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].ZIP < sorted[k].ZIP })

	j := &Joiner{areas: sorted, workers: 4}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Assign returns, for each input point, the ZIP of the single containing area,
// or "" when no area contains it. The result slice is parallel to the input;
// points are independent, so containment tests run on a bounded worker group
// with index-addressed results to keep output deterministic.
func (j *Joiner) Assign(ctx context.Context, points []Point) ([]string, JoinReport, error) {
	assigned := make([]string, len(points))
	ambiguous := make([]bool, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	for i := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			zip, multi := j.locate(points[i])
			assigned[i] = zip
			ambiguous[i] = multi
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, JoinReport{}, err
	}

	var report JoinReport
	for i := range points {
		switch {
		case assigned[i] == "":
			report.Dropped++
		default:
			report.Matched++
			if ambiguous[i] {
				report.Ambiguous++
			}
		}
	}

	if report.Ambiguous > 0 {
		zap.L().Warn("spatial join found points in overlapping area boundaries",
			zap.Int("ambiguous", report.Ambiguous),
		)
	}

	return assigned, report, nil
}

// locate returns the first containing area's ZIP (areas pre-sorted by ZIP) and
// whether more than one area contained the point.
func (j *Joiner) locate(p Point) (string, bool) {
	var first string
	for _, a := range j.areas {
		if ContainsPoint(a.Boundary, p) {
			if first != "" {
				return first, true
			}
			first = a.ZIP
		}
	}
	return first, false
}
