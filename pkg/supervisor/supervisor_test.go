package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/striemhq/striem/pkg/config"
	"github.com/striemhq/striem/pkg/event"
)

func minimalConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{Enabled: true},
	}
}

func TestNewWiresOnlyEnabledComponents(t *testing.T) {
	s, err := New("", minimalConfig())
	require.NoError(t, err)

	assert.NotNil(t, s.ingestSvc)
	assert.Nil(t, s.worker)
	assert.Nil(t, s.backend)
	assert.Nil(t, s.fwd)
}

func TestNewLoadsDetectionsAndWiresWorker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rule.yml"), []byte(`
id: suspicious-login
title: Suspicious login
logsource:
  product: windows
detection:
  selection:
    user_name: alice
  condition: selection
`), 0o644))

	cfg := minimalConfig()
	cfg.Detections = config.StringOrList{dir}

	s, err := New("", cfg)
	require.NoError(t, err)

	require.NotNil(t, s.worker)
	assert.Len(t, s.Detections().List(), 1)
}

func TestUpdatePersistsConfigAndBroadcastsReload(t *testing.T) {
	dir := t.TempDir()
	appdata := filepath.Join(dir, "appdata")
	require.NoError(t, os.MkdirAll(appdata, 0o755))
	t.Setenv("STRIEM_APPDATA", appdata)

	cfgPath := filepath.Join(dir, "striem.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  enabled: true\n"), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	s, err := New(cfgPath, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := s.sys.Subscribe()
	go s.watchSys(ctx)

	s.Update(map[string]any{"fqdn": "collector-7.internal"})

	// sysCapacity is 1, so a fast watchSys can evict the Update this test
	// just published before observer.Recv ever looks at it — skip past
	// Update and Lagged markers and wait for the Reload they resolve to.
	recvCtx, recvCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer recvCancel()
	var reloaded bool
	for !reloaded {
		msg, lagged, err := observer.Recv(recvCtx)
		require.NoError(t, err)
		if lagged != nil {
			continue
		}
		if msg.Kind == event.SysReload {
			reloaded = true
		}
	}

	assert.Equal(t, "collector-7.internal", s.Config().FQDN)
}
