package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.KodiHost)
	assert.Equal(t, 8080, cfg.KodiHTTPPort)
	assert.Equal(t, 9090, cfg.KodiWSPort)
	assert.Equal(t, "kodi", cfg.KodiUsername)
	assert.Equal(t, 10*time.Second, cfg.KodiTimeout)
	assert.Equal(t, 10, cfg.MaxEntries)
	assert.Equal(t, 10*time.Second, cfg.ProgressInterval)
	assert.Equal(t, ":8585", cfg.ListenAddr)
	assert.False(t, cfg.NotifyKodi)
	assert.Equal(t, filepath.Join(dataDir, "playback_list.json"), cfg.StorePath)

	info, err := os.Stat(dataDir)
	require.NoError(t, err, "data dir must be created")
	assert.True(t, info.IsDir())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("KODI_HOST", "htpc.local")
	t.Setenv("KODI_HTTP_PORT", "8090")
	t.Setenv("KODI_WS_PORT", "9777")
	t.Setenv("KODI_TIMEOUT", "2s")
	t.Setenv("MAX_ENTRIES", "25")
	t.Setenv("NOTIFY_KODI", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://htpc.local:8090", cfg.KodiHTTPBase())
	assert.Equal(t, "ws://htpc.local:9777/jsonrpc", cfg.KodiWSURL())
	assert.Equal(t, 2*time.Second, cfg.KodiTimeout)
	assert.Equal(t, 25, cfg.MaxEntries)
	assert.True(t, cfg.NotifyKodi)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("KODI_HTTP_PORT", "eighty-eighty")
	t.Setenv("MAX_ENTRIES", "lots")
	t.Setenv("KODI_TIMEOUT", "soon")
	t.Setenv("PROGRESS_INTERVAL", "-5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.KodiHTTPPort)
	assert.Equal(t, 10, cfg.MaxEntries)
	assert.Equal(t, 10*time.Second, cfg.KodiTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProgressInterval, "non-positive intervals are rejected")
}

func TestLoadUnwritableDataDirFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	t.Setenv("DATA_DIR", filepath.Join(blocker, "data"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create data dir")
}
