package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4, cfg.CommitteeSize)
	assert.Equal(t, 3, cfg.Threshold)
	assert.Equal(t, 2*time.Second, cfg.BlockInterval)
	assert.Equal(t, "127.0.0.1:2112", cfg.MetricsAddr)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corenode.yaml")
	// yaml.v3 decodes a time.Duration from a Go duration string; a bare
	// integer is rejected.
	const body = `
committee_size: 2
threshold: 2
metrics_addr: ""
block_interval: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.CommitteeSize)
	assert.Equal(t, 2, cfg.Threshold)
	assert.Equal(t, "", cfg.MetricsAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.BlockInterval)
	// Fields absent from the overlay keep their defaults.
	assert.Equal(t, DefaultConfig().WorkerCount, cfg.WorkerCount)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corenode.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
