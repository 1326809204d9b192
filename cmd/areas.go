package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/fetch"
	"github.com/sells-group/livability-cli/internal/ingest"
)

var areasShapefile string

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Manage the ZCTA area registry",
}

var areasLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Download TIGER boundaries and build the area registry",
	Long:  "Downloads the TIGER/Line ZCTA archive (falling back to the Census FTP mirror), extracts the shapefile, keeps the configured ZIP codes and caches the registry as GeoJSON for the score and serve commands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("areas"); err != nil {
			return err
		}
		ctx := cmd.Context()

		shpPath := areasShapefile
		if shpPath == "" {
			workDir, err := os.MkdirTemp("", "tiger-*")
			if err != nil {
				return eris.Wrap(err, "areas: temp dir")
			}
			defer os.RemoveAll(workDir)

			zipPath := filepath.Join(workDir, "zcta.zip")
			fetcher := fetch.NewMirrorFetcher(fetch.NewHTTPFetcher(fetch.Options{}))
			n, err := fetcher.DownloadToFile(ctx, cfg.Areas.TigerURL, zipPath)
			if err != nil {
				return err
			}
			zap.L().Info("areas: downloaded TIGER archive",
				zap.String("url", cfg.Areas.TigerURL), zap.Int64("bytes", n))

			files, err := fetch.ExtractZIP(zipPath, workDir)
			if err != nil {
				return err
			}
			shpPath, err = fetch.FindByExt(files, ".shp")
			if err != nil {
				return err
			}
		}

		registry, err := ingest.LoadBoundaries(shpPath, area.ShapefileFilter{
			AllowedZIPs: cfg.Areas.ZIPs,
		})
		if err != nil {
			return err
		}
		if err := ingest.SaveBoundariesGeoJSON(registry, cfg.Areas.GeoJSONPath); err != nil {
			return err
		}
		zap.L().Info("areas: registry saved",
			zap.Int("areas", registry.Len()), zap.String("path", cfg.Areas.GeoJSONPath))
		return nil
	},
}

func init() {
	areasLoadCmd.Flags().StringVar(&areasShapefile, "shapefile", "", "use an already-extracted .shp file instead of downloading")
	areasCmd.AddCommand(areasLoadCmd)
	rootCmd.AddCommand(areasCmd)
}
