package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TBSTATS"

type Config struct {
	OutputDir       string
	DBPath          string
	ReportDir       string
	MetricsFile     string
	Workers         int
	Verbose         bool
	LogLevel        string
	LogFormat       string
	CatalogCacheTTL time.Duration
}

// Keys are the viper keys; environment variables use the upper-cased key
// behind EnvPrefix, e.g. TBSTATS_OUTPUT_DIR.
const (
	KeyOutputDir       = "output_dir"
	KeyDBPath          = "db_path"
	KeyReportDir       = "report_dir"
	KeyMetricsFile     = "metrics_file"
	KeyWorkers         = "workers"
	KeyVerbose         = "verbose"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyCatalogCacheTTL = "catalog_cache_ttl"
)

// NewViper returns a viper instance carrying the defaults and environment
// binding. Callers bind flags before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyOutputDir, "tbstats-out")
	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCatalogCacheTTL, "30m")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML config file and resolves the final Config.
// Paths left empty are derived from the output directory.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		OutputDir:       v.GetString(KeyOutputDir),
		DBPath:          v.GetString(KeyDBPath),
		ReportDir:       v.GetString(KeyReportDir),
		MetricsFile:     v.GetString(KeyMetricsFile),
		Workers:         v.GetInt(KeyWorkers),
		Verbose:         v.GetBool(KeyVerbose),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		CatalogCacheTTL: v.GetDuration(KeyCatalogCacheTTL),
	}
	if cfg.OutputDir == "" {
		return Config{}, errors.New("output dir is required")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.OutputDir, ".tbstats", "tbstats.db")
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = filepath.Join(cfg.OutputDir, "reports")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.CatalogCacheTTL < 0 {
		return fmt.Errorf("catalog cache ttl must not be negative")
	}
	return nil
}
