// Package composite merges the per-domain score tables into one row per area
// and folds them into the weighted composite livability score.
package composite

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/model"
)

// ErrIncompleteUpstreamData marks a merge attempted with a domain table that
// was never produced. A missing table means an upstream stage did not run;
// merging around it would silently publish a composite with a hole in it.
var ErrIncompleteUpstreamData = eris.New("composite: upstream domain table missing")

// Tables holds the seven per-domain score tables keyed by domain. All seven
// keys must be present before a merge runs; an empty (but non-nil) table is a
// legitimate outcome, an absent one is not.
type Tables map[model.Domain]domain.ScoreTable

// MergeReport describes what the left join observed: how many domain rows
// referenced unregistered areas (kept out of the result, counted per domain)
// and which domains contributed no rows at all.
type MergeReport struct {
	OrphanRows   map[model.Domain]int
	EmptyDomains []model.Domain
}

// Orphans returns the total orphan row count across domains.
func (r *MergeReport) Orphans() int {
	n := 0
	for _, c := range r.OrphanRows {
		n += c
	}
	return n
}

// Merge left-joins every domain table onto the area registry. Every
// registered area yields exactly one row, ordered by ZIP; a domain with no
// entry for an area leaves that score nil. Domain rows for ZIPs outside the
// registry are dropped and counted, never grafted into the result.
func Merge(registry *area.Registry, tables Tables) ([]model.CompositeRow, *MergeReport, error) {
	for _, d := range model.Domains() {
		if _, ok := tables[d]; !ok {
			return nil, nil, eris.Wrapf(ErrIncompleteUpstreamData, "composite: no %s table", d)
		}
	}

	report := &MergeReport{OrphanRows: make(map[model.Domain]int)}
	for _, d := range model.Domains() {
		t := tables[d]
		if len(t) == 0 {
			// An all-null domain usually means a join-key formatting
			// mismatch upstream, most often a lost leading zero.
			zap.L().Warn("composite: domain merged with no rows",
				zap.String("domain", string(d)))
			report.EmptyDomains = append(report.EmptyDomains, d)
			continue
		}
		for zip := range t {
			if !registry.Contains(zip) {
				report.OrphanRows[d]++
			}
		}
		if n := report.OrphanRows[d]; n > 0 {
			zap.L().Warn("composite: dropped rows for unregistered areas",
				zap.String("domain", string(d)), zap.Int("rows", n))
		}
	}

	areas := registry.Areas()
	rows := make([]model.CompositeRow, len(areas))
	for i, a := range areas {
		row := model.CompositeRow{ZIP: a.ZIP, AreaSqMi: a.AreaSqMi}
		for _, d := range model.Domains() {
			if v, ok := tables[d][a.ZIP]; ok {
				row.Scores.Set(d, v)
			}
		}
		rows[i] = row
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ZIP < rows[j].ZIP })

	return rows, report, nil
}
