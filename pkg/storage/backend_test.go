package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/ocsf"
)

const authenticationSchema = `message authentication {
    required BYTE_ARRAY class_uid (STRING);
    optional BYTE_ARRAY user_name (STRING);
}`

func writeSchemaFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authentication.schema"), []byte(authenticationSchema), 0o644))
	return dir
}

func TestBackendRoutesByClassUID(t *testing.T) {
	schemaDir := writeSchemaFixture(t)
	outDir := t.TempDir()

	b, err := NewBackend(schemaDir, outDir)
	require.NoError(t, err)
	defer b.Stop()

	ev := event.New(map[string]any{
		"class_uid": float64(3002),
		"user_name": "alice",
	}, nil)

	require.NoError(t, b.Write(ev))
	assert.Contains(t, b.routes, ocsf.Class(3002))
}

func TestBackendUnknownClassUIDErrors(t *testing.T) {
	schemaDir := writeSchemaFixture(t)
	outDir := t.TempDir()

	b, err := NewBackend(schemaDir, outDir)
	require.NoError(t, err)
	defer b.Stop()

	ev := event.New(map[string]any{"class_uid": float64(9999)}, nil)
	assert.Error(t, b.Write(ev))
}

func TestBackendWriteBatchContinuesPastFailures(t *testing.T) {
	schemaDir := writeSchemaFixture(t)
	outDir := t.TempDir()

	b, err := NewBackend(schemaDir, outDir)
	require.NoError(t, err)
	defer b.Stop()

	batch := &event.Batch{Events: []event.Event{
		event.New(map[string]any{"class_uid": float64(9999)}, nil),
		event.New(map[string]any{"class_uid": float64(3002), "user_name": "bob"}, nil),
	}}

	assert.NotPanics(t, func() { b.WriteBatch(context.Background(), batch) })
}
