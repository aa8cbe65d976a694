package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "striem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  enabled: true
  base_dir: /var/lib/striem
input:
  port: 9000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/var/lib/striem", cfg.Storage.BaseDir)
	assert.Equal(t, 9000, cfg.Input.Port)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	// The missing file is skipped rather than reported, so the compiled-in
	// defaults alone reach check, which rejects them because they enable no
	// output, storage, or API.
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output, storage, or API configured")
	assert.Nil(t, cfg)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "striem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  enabled: true\n"), 0o644))

	t.Setenv("STRIEM_STORAGE_ENABLED", "false")
	t.Setenv("STRIEM_API_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Storage.Enabled)
	assert.True(t, cfg.API.Enabled)
}

func TestCheckErrorsWhenNothingConfigured(t *testing.T) {
	cfg := defaults()
	err := check(cfg)
	assert.Error(t, err)
}

func TestCheckWarnsButSucceedsWithAPIOnly(t *testing.T) {
	cfg := defaults()
	cfg.API.Enabled = true
	assert.NoError(t, check(cfg))
}

func TestStringOrListAcceptsScalarOrSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "striem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detections: /etc/striem/rules\nstorage:\n  enabled: true\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StringOrList{"/etc/striem/rules"}, cfg.Detections)

	require.NoError(t, os.WriteFile(path, []byte("detections:\n  - /a\n  - /b\nstorage:\n  enabled: true\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, StringOrList{"/a", "/b"}, cfg.Detections)
}

func TestApplyPatchPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	appdata := filepath.Join(dir, "appdata")
	require.NoError(t, os.MkdirAll(appdata, 0o755))
	t.Setenv("STRIEM_APPDATA", appdata)

	path := filepath.Join(dir, "striem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  enabled: true\n"), 0o644))

	cfg, err := ApplyPatch(path, map[string]any{"fqdn": "sensor-1.internal"})
	require.NoError(t, err)
	assert.Equal(t, "sensor-1.internal", cfg.FQDN)

	_, err = os.Stat(filepath.Join(appdata, "striem.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(appdata, "striem.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestHolderLoadStoreRoundTrips(t *testing.T) {
	cfg := defaults()
	h := NewHolder(cfg)
	assert.Same(t, cfg, h.Load())

	updated := defaults()
	updated.FQDN = "updated"
	h.Store(updated)
	assert.Same(t, updated, h.Load())
}
