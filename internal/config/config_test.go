package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bike-dashboard/pkg/logging"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, "SeoulBikeData.csv", cfg.Dataset.Path)
	assert.Equal(t, 2018, cfg.Dataset.SeasonYear)
	assert.Equal(t, logging.InfoLevel, cfg.LogLevel())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATASET_SOURCE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("DATASET_SEASON_YEAR", "2017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
	assert.Equal(t, SourcePostgres, cfg.Dataset.Source)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 2017, cfg.Dataset.SeasonYear)
}

func TestLoadConfig_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	content := `
server:
  port: 7070
  read_timeout: 3s
dataset:
  path: /data/seoul.csv
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "/data/seoul.csv", cfg.Dataset.Path)
	assert.Equal(t, "error", cfg.Logging.Level, "environment wins over file")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERVER_PORT", "eighty"},
		{"SHUTDOWN_TIMEOUT", "soon"},
		{"DB_PORT", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "SHUTDOWN_TIMEOUT"},
		{"unknown level", func(c *Config) { c.Logging.Level = "chatty" }, "LOG_LEVEL"},
		{"unknown source", func(c *Config) { c.Dataset.Source = "s3" }, "DATASET_SOURCE"},
		{"csv without path", func(c *Config) { c.Dataset.Path = "" }, "DATASET_PATH"},
		{"postgres without host", func(c *Config) {
			c.Dataset.Source = SourcePostgres
			c.Database.Host = ""
		}, "DB_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseConfig_Postgres(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "secret"

	pg := cfg.Database.Postgres()
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=bike_rentals sslmode=disable", pg.DSN())
	assert.Equal(t, 10, pg.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, pg.ConnMaxLifetime)
}
