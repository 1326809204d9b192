package export

import (
	"io"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/livability-cli/internal/model"
)

const (
	reportTopN    = 10
	reportBottomN = 5
)

// WriteReport prints the human-readable run summary: ranked areas, tier
// distribution and per-domain coverage stats.
func WriteReport(w io.Writer, run *model.Run, rows []model.CompositeRow) error {
	p := message.NewPrinter(language.English)

	scored := make([]model.CompositeRow, 0, len(rows))
	for _, r := range rows {
		if r.Composite != nil {
			scored = append(scored, r)
		}
	}
	sort.SliceStable(scored, func(i, k int) bool { return *scored[i].Composite > *scored[k].Composite })

	var err error
	printf := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = p.Fprintf(w, format, args...)
	}

	printf("Livability Scores\n")
	printf("=================\n")
	if run != nil {
		printf("Run %s  (%d areas, %d points dropped, %d orphan rows)\n",
			run.ID, run.Areas, run.PointsDropped, run.OrphanRows)
	}
	printf("Scored %d of %d areas\n\n", len(scored), len(rows))

	printf("Top %d\n", min(reportTopN, len(scored)))
	for i, r := range scored[:min(reportTopN, len(scored))] {
		printf("  %2d. %s  %5.2f  %s\n", i+1, r.ZIP, *r.Composite, r.Tier)
	}

	if len(scored) > reportTopN {
		printf("\nBottom %d\n", min(reportBottomN, len(scored)-reportTopN))
		bottom := scored[len(scored)-min(reportBottomN, len(scored)-reportTopN):]
		for i, r := range bottom {
			printf("  %2d. %s  %5.2f  %s\n", len(scored)-len(bottom)+i+1, r.ZIP, *r.Composite, r.Tier)
		}
	}

	printf("\nTiers\n")
	counts := tierCounts(rows)
	for _, tier := range []model.Tier{
		model.TierExcellent, model.TierGood, model.TierAverage,
		model.TierBelowAverage, model.TierPoor, model.TierNoData,
	} {
		if counts[tier] == 0 {
			continue
		}
		printf("  %-13s %d\n", tier, counts[tier])
	}

	printf("\nDomains\n")
	printf("  %-10s %7s %7s %7s %7s\n", "domain", "scored", "mean", "min", "max")
	for _, d := range model.Domains() {
		stats := domainStats(rows, d)
		if stats.n == 0 {
			printf("  %-10s %7d %7s %7s %7s\n", d, 0, "-", "-", "-")
			continue
		}
		printf("  %-10s %7d %7.2f %7.2f %7.2f\n", d, stats.n, stats.mean, stats.min, stats.max)
	}

	return eris.Wrap(err, "export: write report")
}

func tierCounts(rows []model.CompositeRow) map[model.Tier]int {
	counts := make(map[model.Tier]int)
	for _, r := range rows {
		counts[r.Tier]++
	}
	return counts
}

type summaryStats struct {
	n         int
	mean, min float64
	max       float64
}

func domainStats(rows []model.CompositeRow, d model.Domain) summaryStats {
	s := summaryStats{min: math.Inf(1), max: math.Inf(-1)}
	sum := 0.0
	for _, r := range rows {
		v := r.Scores.Get(d)
		if v == nil {
			continue
		}
		s.n++
		sum += *v
		s.min = math.Min(s.min, *v)
		s.max = math.Max(s.max, *v)
	}
	if s.n > 0 {
		s.mean = sum / float64(s.n)
	}
	return s
}
