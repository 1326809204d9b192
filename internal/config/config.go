// Package config loads application configuration from config.yaml and the
// environment, and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Census  CensusConfig  `yaml:"census" mapstructure:"census"`
	Areas   AreasConfig   `yaml:"areas" mapstructure:"areas"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Weights WeightsConfig `yaml:"weights" mapstructure:"weights"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres conn string
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CensusConfig holds Census Bureau API settings. The API works unauthenticated
// at a lower rate limit; the key is optional.
type CensusConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AreasConfig configures the area registry: where the TIGER boundaries come
// from, which ZIPs to keep and where the parsed registry is cached.
type AreasConfig struct {
	TigerURL    string   `yaml:"tiger_url" mapstructure:"tiger_url"`
	GeoJSONPath string   `yaml:"geojson_path" mapstructure:"geojson_path"`
	ZIPs        []string `yaml:"zips" mapstructure:"zips"`
}

// SourcesConfig names the per-domain input files.
type SourcesConfig struct {
	CrimeCSV       string   `yaml:"crime_csv" mapstructure:"crime_csv"`
	GTFSZip        string   `yaml:"gtfs_zip" mapstructure:"gtfs_zip"`
	HospitalsCSV   string   `yaml:"hospitals_csv" mapstructure:"hospitals_csv"`
	SchoolsCSV     string   `yaml:"schools_csv" mapstructure:"schools_csv"`
	LifestyleCSV   string   `yaml:"lifestyle_csv" mapstructure:"lifestyle_csv"`
	NonResidential []string `yaml:"non_residential" mapstructure:"non_residential"`
}

// WeightsConfig points at the optional YAML weight overrides.
type WeightsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExportConfig configures where result files are written.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the read-only results API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LIVABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "livability.db")
	v.SetDefault("census.base_url", "https://api.census.gov/data/2022/acs/acs5")
	v.SetDefault("areas.tiger_url", "https://www2.census.gov/geo/tiger/TIGER2020/ZCTA520/tl_2020_us_zcta520.zip")
	v.SetDefault("areas.geojson_path", "boundaries.geojson")
	v.SetDefault("export.dir", "out")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields a command needs are present. Mode is the
// command name: "areas", "score" or "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				missing = append(missing, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required for the postgres driver")
			}
		default:
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "areas":
		if c.Areas.TigerURL == "" {
			missing = append(missing, "areas.tiger_url is required")
		}
		if c.Areas.GeoJSONPath == "" {
			missing = append(missing, "areas.geojson_path is required")
		}
		if len(c.Areas.ZIPs) == 0 {
			missing = append(missing, "areas.zips is required")
		}
	case "score":
		checkStore()
		if c.Areas.GeoJSONPath == "" {
			missing = append(missing, "areas.geojson_path is required")
		}
		for _, p := range []struct{ name, path string }{
			{"sources.crime_csv", c.Sources.CrimeCSV},
			{"sources.gtfs_zip", c.Sources.GTFSZip},
			{"sources.hospitals_csv", c.Sources.HospitalsCSV},
			{"sources.schools_csv", c.Sources.SchoolsCSV},
			{"sources.lifestyle_csv", c.Sources.LifestyleCSV},
		} {
			if p.path == "" {
				missing = append(missing, p.name+" is required")
			}
		}
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
