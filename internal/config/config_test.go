package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "vigia", cfg.App.Name)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5, cfg.Crawl.Concurrency)
	assert.Equal(t, 8, cfg.Crawl.MaxLinksPerPage)
	assert.Equal(t, 30*time.Second, cfg.Crawl.SeedTimeout)
	assert.Equal(t, 15*time.Second, cfg.Crawl.LinkTimeout)
	assert.Equal(t, 5, cfg.Search.NumResults)
	assert.Equal(t, "co", cfg.Search.Geolocation)
	assert.Equal(t, "text-embedding-3-small", cfg.Embed.Model)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  environment: development
crawl:
  concurrency: 10
  months_back: 3
search:
  api_key: clave
  engine_id: motor
watch:
  schedule: "0 */6 * * *"
  targets:
    - objetivo uno
    - objetivo dos
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 10, cfg.Crawl.Concurrency)
	assert.Equal(t, 3, cfg.Crawl.MonthsBack)
	assert.Equal(t, "clave", cfg.Search.APIKey)
	assert.Equal(t, "motor", cfg.Search.EngineID)
	assert.Equal(t, "0 */6 * * *", cfg.Watch.Schedule)
	assert.Equal(t, []string{"objetivo uno", "objetivo dos"}, cfg.Watch.Targets)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEARCH_ENGINE_ID", "desde-env")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "desde-env", cfg.Search.EngineID)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "no-existe.yaml"))
	assert.Error(t, err)
}
