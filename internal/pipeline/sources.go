package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/ingest"
)

// Inputs names where each domain's raw data comes from. Every path is
// required; a run with a domain missing entirely would renormalize the
// composite around the gap and report numbers that look complete.
type Inputs struct {
	CrimePath     string // incident extract CSV
	StopsPath     string // GTFS stops.txt
	HospitalsPath string
	SchoolsPath   string
	LifestylePath string

	// NonResidential lists ZIPs (PO-box areas and the like) whose diversity
	// score is withheld regardless of reported population.
	NonResidential []string

	// ACS serves the housing and demographic variables.
	ACS ingest.ACSClient

	// Now anchors the crime lookback window; zero means time.Now.
	Now time.Time
}

func (in Inputs) validate() error {
	for _, p := range []struct{ name, path string }{
		{"crime incidents", in.CrimePath},
		{"transit stops", in.StopsPath},
		{"hospitals", in.HospitalsPath},
		{"school grades", in.SchoolsPath},
		{"lifestyle grades", in.LifestylePath},
	} {
		if p.path == "" {
			return eris.Errorf("pipeline: no %s path configured", p.name)
		}
	}
	if in.ACS == nil {
		return eris.New("pipeline: no census client configured")
	}
	return nil
}

// Sources holds the ingested inputs for one scoring run.
type Sources struct {
	Incidents      []domain.CrimeIncident
	Stations       []domain.TransitStation
	Hospitals      []domain.Hospital
	Housing        []domain.HousingObservation
	Demographics   []domain.DemographicObservation
	SchoolGrades   []domain.SchoolGrade
	Lifestyle      []domain.LifestyleGrades
	NonResidential []string

	// PointsDropped totals the point records discarded during ingestion:
	// missing coordinates plus spatial-join misses.
	PointsDropped int
}

// Ingest loads all domain inputs concurrently. Local files parse in parallel
// with the Census API round-trips; everything is joined before scoring starts.
func (p *Pipeline) Ingest(ctx context.Context, in Inputs) (Sources, error) {
	var sources Sources
	if err := in.validate(); err != nil {
		return sources, err
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	sources.NonResidential = in.NonResidential

	var (
		crimeReport   ingest.CrimeIngestReport
		transitReport ingest.TransitIngestReport
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return withFile(in.CrimePath, func(f *os.File) error {
			var err error
			sources.Incidents, crimeReport, err = ingest.LoadCrimeIncidents(gctx, f, p.registry, now)
			return err
		})
	})
	g.Go(func() error {
		return withFile(in.StopsPath, func(f *os.File) error {
			var err error
			sources.Stations, transitReport, err = ingest.LoadTransitStations(gctx, f, p.registry)
			return err
		})
	})
	g.Go(func() error {
		return withFile(in.HospitalsPath, func(f *os.File) error {
			var err error
			sources.Hospitals, err = ingest.LoadHospitals(f)
			return err
		})
	})
	g.Go(func() error {
		return withFile(in.SchoolsPath, func(f *os.File) error {
			var err error
			sources.SchoolGrades, err = ingest.LoadSchoolGrades(f)
			return err
		})
	})
	g.Go(func() error {
		return withFile(in.LifestylePath, func(f *os.File) error {
			var err error
			sources.Lifestyle, err = ingest.LoadLifestyleGrades(f)
			return err
		})
	})
	g.Go(func() error {
		var err error
		sources.Housing, err = ingest.LoadHousingObservations(gctx, in.ACS, p.registry)
		return err
	})
	g.Go(func() error {
		var err error
		sources.Demographics, err = ingest.LoadDemographicObservations(gctx, in.ACS, p.registry)
		return err
	})

	if err := g.Wait(); err != nil {
		return Sources{}, err
	}

	sources.PointsDropped = crimeReport.NoCoordinates +
		crimeReport.Join.Dropped + transitReport.Join.Dropped
	zap.L().Info("pipeline: ingestion complete",
		zap.Int("incidents", len(sources.Incidents)),
		zap.Int("stations", len(sources.Stations)),
		zap.Int("hospitals", len(sources.Hospitals)),
		zap.Int("points_dropped", sources.PointsDropped))
	return sources, nil
}

func withFile(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close()
	return fn(f)
}
