package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, defaultAPIURL, cfg.APIURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, filepath.Join(home, dirName, "state.db"), cfg.DBPath)
	require.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_ReadsFileAndTrimsURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: "  http://catalog.local:9000/  "
request_timeout: 3s
log_level: DEBUG
trace: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://catalog.local:9000", cfg.APIURL)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.True(t, cfg.Trace)
	require.NotEmpty(t, cfg.DBPath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANIMESHELF_API_URL", "http://from-env:1234")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file:1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://from-env:1234", cfg.APIURL)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated\n"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestSave_RoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.APIURL = "http://saved:8000"
	cfg.RequestTimeout = 7 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://saved:8000", loaded.APIURL)
	require.Equal(t, 7*time.Second, loaded.RequestTimeout)
}
