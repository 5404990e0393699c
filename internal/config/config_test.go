package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HISN_ALADHAN_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Endpoints.Aladhan, cfg.Endpoints.Aladhan)
	assert.Equal(t, 400*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 8, cfg.SearchLimit)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hisn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoints:
  aladhan: http://file.example
  nominatim: http://geo.example
search_limit: 5
http_timeout: 3s
`), 0o644))
	t.Setenv("HISN_ALADHAN_URL", "http://env.example")
	t.Setenv("HISN_SEARCH_LIMIT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.Endpoints.Aladhan)
	assert.Equal(t, "http://geo.example", cfg.Endpoints.Nominatim)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, Default().Labels.Offline, cfg.Labels.Offline)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("HISN_HTTP_TIMEOUT", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "HISN_HTTP_TIMEOUT")
}

func TestWriteDefaultRoundTripsAndKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hisn.yaml")
	wrote, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 400*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "وضع عدم الاتصال", cfg.Labels.Offline)

	require.NoError(t, os.WriteFile(path, []byte("search_limit: 3\n"), 0o644))
	wrote, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, wrote)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "search_limit: 3\n", string(data))
}
