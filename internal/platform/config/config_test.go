package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiteracyBridge/utilities-sub000/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "tbstats-out", cfg.OutputDir)
	assert.Equal(t, filepath.Join("tbstats-out", ".tbstats", "tbstats.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("tbstats-out", "reports"), cfg.ReportDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.CatalogCacheTTL)
	assert.Empty(t, cfg.MetricsFile)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TBSTATS_OUTPUT_DIR", "/srv/stats")
	t.Setenv("TBSTATS_WORKERS", "8")
	t.Setenv("TBSTATS_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load(config.NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/stats", cfg.OutputDir)
	assert.Equal(t, filepath.Join("/srv/stats", "reports"), cfg.ReportDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tbstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: out\ndb_path: /tmp/stats.db\nlog_format: json\ncatalog_cache_ttl: 5m\n"), 0o644))

	cfg, err := config.Load(config.NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "/tmp/stats.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		config.KeyWorkers:   "0",
		config.KeyLogLevel:  "loud",
		config.KeyLogFormat: "xml",
		config.KeyOutputDir: "",
	}
	for key, value := range cases {
		v := config.NewViper()
		v.Set(key, value)
		_, err := config.Load(v, "")
		assert.Error(t, err, key)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.Load(config.NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
