// Package pipeline orchestrates a full scoring run: ingest the seven domain
// inputs, score each domain, merge onto the area registry and compute the
// composite. The pipeline itself does no I/O beyond what the ingest helpers
// do; exports and persistence are the caller's concern.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/composite"
	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/geo"
	"github.com/sells-group/livability-cli/internal/model"
)

// Pipeline scores one area registry against ingested domain inputs.
type Pipeline struct {
	registry   *area.Registry
	weights    composite.WeightSet
	classifier *domain.CrimeClassifier
}

// New creates a Pipeline. A nil classifier uses the default offense keywords.
func New(registry *area.Registry, weights composite.WeightSet, classifier *domain.CrimeClassifier) (*Pipeline, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, eris.New("pipeline: empty area registry")
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = domain.NewCrimeClassifier(nil, nil)
	}
	return &Pipeline{registry: registry, weights: weights, classifier: classifier}, nil
}

// Metrics bundles the per-domain detail rows for metric exports.
type Metrics struct {
	Crime      []domain.CrimeMetrics
	Transit    []domain.TransitMetrics
	Healthcare []domain.HealthcareMetrics
	Housing    []domain.HousingMetrics
	Diversity  []domain.DiversityMetrics
	Schools    []domain.SchoolMetrics
	Lifestyle  []domain.LifestyleMetrics
}

// Result is the outcome of one scoring run.
type Result struct {
	Run     model.Run
	Rows    []model.CompositeRow
	Merge   *composite.MergeReport
	Metrics Metrics
}

// Run scores every domain, merges the tables onto the registry and computes
// the composite. All seven domains must have been ingested; an all-null
// domain still merges (and is reported), but a domain that was never loaded
// fails the run rather than silently skewing the renormalized composite.
func (p *Pipeline) Run(ctx context.Context, sources Sources) (*Result, error) {
	started := time.Now().UTC()
	log := zap.L().With(zap.Int("areas", p.registry.Len()))
	log.Info("pipeline: scoring run started")

	areas := p.registry.Areas()
	centroids := make(map[string]geo.Point, len(areas))
	for _, a := range areas {
		centroids[a.ZIP] = geo.Centroid(a.Boundary)
	}

	var (
		metrics Metrics
		g, _    = errgroup.WithContext(ctx)
	)
	// Domains score independently; each goroutine owns one Metrics field.
	g.Go(func() error {
		rows, err := domain.ScoreCrime(areas, sources.Incidents, p.classifier, p.weights.Crime)
		metrics.Crime = rows
		return err
	})
	g.Go(func() error {
		rows, err := domain.ScoreTransit(areas, sources.Stations, p.weights.Transit)
		metrics.Transit = rows
		return err
	})
	g.Go(func() error {
		rows, err := domain.ScoreHealthcare(areas, centroids, sources.Hospitals, p.weights.Healthcare)
		metrics.Healthcare = rows
		return err
	})
	g.Go(func() error {
		rows, err := domain.ScoreHousing(sources.Housing, p.weights.Housing)
		metrics.Housing = rows
		return err
	})
	g.Go(func() error {
		metrics.Diversity = domain.ScoreDiversity(sources.Demographics, sources.NonResidential)
		return nil
	})
	g.Go(func() error {
		metrics.Schools = domain.ScoreSchools(sources.SchoolGrades)
		return nil
	})
	g.Go(func() error {
		metrics.Lifestyle = domain.ScoreLifestyle(sources.Lifestyle)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := composite.Tables{
		model.DomainCrime:      domain.CrimeScoreTable(metrics.Crime),
		model.DomainTransit:    domain.TransitScoreTable(metrics.Transit),
		model.DomainHealthcare: domain.HealthcareScoreTable(metrics.Healthcare),
		model.DomainHousing:    domain.HousingScoreTable(metrics.Housing),
		model.DomainDiversity:  domain.DiversityScoreTable(metrics.Diversity),
		model.DomainSchools:    domain.SchoolScoreTable(metrics.Schools),
		model.DomainLifestyle:  domain.LifestyleScoreTable(metrics.Lifestyle),
	}

	rows, mergeReport, err := composite.Merge(p.registry, tables)
	if err != nil {
		return nil, err
	}
	if err := composite.Score(rows, p.weights.Composite); err != nil {
		return nil, err
	}

	run := model.Run{
		StartedAt:     started,
		CompletedAt:   time.Now().UTC(),
		Areas:         p.registry.Len(),
		PointsDropped: sources.PointsDropped,
		OrphanRows:    mergeReport.Orphans(),
	}
	log.Info("pipeline: scoring run complete",
		zap.Int("orphan_rows", run.OrphanRows),
		zap.Int("points_dropped", run.PointsDropped),
		zap.Duration("elapsed", run.CompletedAt.Sub(run.StartedAt)))

	return &Result{Run: run, Rows: rows, Merge: mergeReport, Metrics: metrics}, nil
}
