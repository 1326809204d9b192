package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/composite"
	"github.com/sells-group/livability-cli/internal/export"
	"github.com/sells-group/livability-cli/internal/fetch"
	"github.com/sells-group/livability-cli/internal/ingest"
	"github.com/sells-group/livability-cli/internal/pipeline"
	"github.com/sells-group/livability-cli/pkg/census"
)

var (
	scoreWeightsPath string
	scoreOutDir      string
	scoreNoStore     bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the full scoring pipeline",
	Long:  "Ingests all seven domain inputs, scores each domain, computes the weighted composite per ZIP code, persists the run and writes the CSV/GeoJSON/XLSX exports.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}
		ctx := cmd.Context()

		registry, err := ingest.LoadBoundariesGeoJSON(cfg.Areas.GeoJSONPath)
		if err != nil {
			return err
		}

		weightsPath := scoreWeightsPath
		if weightsPath == "" {
			weightsPath = cfg.Weights.Path
		}
		weights, err := composite.LoadWeightSet(weightsPath)
		if err != nil {
			return err
		}

		p, err := pipeline.New(registry, weights, nil)
		if err != nil {
			return err
		}

		stopsPath, cleanup, err := extractStops(cfg.Sources.GTFSZip)
		if err != nil {
			return err
		}
		defer cleanup()

		acs := census.NewClient(cfg.Census.APIKey, census.WithBaseURL(cfg.Census.BaseURL))
		sources, err := p.Ingest(ctx, pipeline.Inputs{
			CrimePath:      cfg.Sources.CrimeCSV,
			StopsPath:      stopsPath,
			HospitalsPath:  cfg.Sources.HospitalsCSV,
			SchoolsPath:    cfg.Sources.SchoolsCSV,
			LifestylePath:  cfg.Sources.LifestyleCSV,
			NonResidential: cfg.Sources.NonResidential,
			ACS:            acs,
		})
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, sources)
		if err != nil {
			return err
		}

		if !scoreNoStore {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveRun(ctx, &result.Run, result.Rows); err != nil {
				return err
			}
			zap.L().Info("score: run persisted", zap.String("run_id", result.Run.ID))
		}

		outDir := scoreOutDir
		if outDir == "" {
			outDir = cfg.Export.Dir
		}
		if err := writeExports(outDir, registry, result); err != nil {
			return err
		}

		return export.WriteReport(cmd.OutOrStdout(), &result.Run, result.Rows)
	},
}

// extractStops pulls stops.txt out of a GTFS archive into a temp dir.
func extractStops(gtfsZip string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "gtfs-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "score: temp dir")
	}
	cleanup := func() { os.RemoveAll(dir) }

	files, err := fetch.ExtractZIP(gtfsZip, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	for _, f := range files {
		if filepath.Base(f) == "stops.txt" {
			return f, cleanup, nil
		}
	}
	cleanup()
	return "", nil, eris.Errorf("score: no stops.txt in %s", gtfsZip)
}

func writeExports(dir string, registry *area.Registry, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "score: create %s", dir)
	}

	m := result.Metrics
	writers := []struct {
		name string
		fn   func(f *os.File) error
	}{
		{"summary.csv", func(f *os.File) error { return export.WriteSummaryCSV(f, result.Rows) }},
		{"scores.csv", func(f *os.File) error { return export.WriteScoresCSV(f, result.Rows) }},
		{"scores.geojson", func(f *os.File) error { return export.WriteGeoJSON(f, registry, result.Rows) }},
		{"crime_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Crime, "crime metrics") }},
		{"transit_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Transit, "transit metrics") }},
		{"healthcare_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Healthcare, "healthcare metrics") }},
		{"housing_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Housing, "housing metrics") }},
		{"diversity_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Diversity, "diversity metrics") }},
		{"school_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Schools, "school metrics") }},
		{"lifestyle_metrics.csv", func(f *os.File) error { return export.WriteMetricsCSV(f, m.Lifestyle, "lifestyle metrics") }},
	}
	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "score: create %s", path)
		}
		if err := w.fn(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "score: close %s", path)
		}
	}

	if err := export.WriteXLSX(filepath.Join(dir, "scores.xlsx"), &result.Run, result.Rows); err != nil {
		return err
	}
	zap.L().Info("score: exports written", zap.String("dir", dir))
	return nil
}

func init() {
	scoreCmd.Flags().StringVar(&scoreWeightsPath, "weights", "", "YAML weight overrides (default from config)")
	scoreCmd.Flags().StringVar(&scoreOutDir, "out", "", "export directory (default from config)")
	scoreCmd.Flags().BoolVar(&scoreNoStore, "no-store", false, "skip persisting the run")
	rootCmd.AddCommand(scoreCmd)
}
