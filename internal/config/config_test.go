package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/crawler"
)

func chdir(t *testing.T, dir string) {
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, crawler.DefaultNextSelector, cfg.Crawl.NextSelector)
	assert.Equal(t, time.Second, cfg.Crawl.PageDelay)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, "default", cfg.Session.ID)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawl:
  page_delay: 2500ms
session:
  backend: SQLite
  id: tab-1
http:
  timeout: 10s
log:
  level: debug
  json: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Crawl.PageDelay)
	assert.Equal(t, crawler.DefaultNextSelector, cfg.Crawl.NextSelector)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, "tab-1", cfg.Session.ID)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HW_SESSION_BACKEND", "memory")
	t.Setenv("HW_SESSION_ID", "env-session")
	t.Setenv("HW_PAGE_DELAY", "0s")
	t.Setenv("HW_PROXY", "http://localhost:8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "env-session", cfg.Session.ID)
	assert.Equal(t, time.Duration(0), cfg.Crawl.PageDelay)
	assert.Equal(t, "http://localhost:8080", cfg.HTTP.Proxy)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("session: [oops"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("HW_PAGE_DELAY", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Session.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Crawl.PageDelay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Crawl.NextSelector = " "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, crawler.DefaultNextSelector, cfg.Crawl.NextSelector)
}
