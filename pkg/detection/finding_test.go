package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/rules"
)

func TestNewFindingCorrelatesBySourceEventID(t *testing.T) {
	src := event.New(map[string]any{"activity_id": 1}, map[string]any{"logsource": "sysmon"})
	desc := rules.Descriptor{
		Rule:    rules.Rule{ID: "r1", Title: "t", Description: "d", Level: "high"},
		Enabled: true,
	}

	finding := NewFinding(src, desc)
	data := finding.Data.(map[string]any)
	assert.Equal(t, float64(2004), toFloat(data["class_uid"]))

	md := data["metadata"].(map[string]any)
	assert.Equal(t, src.ID, md["uid"])
	assert.Equal(t, src.ID, md["correlation_uid"])
	assert.Equal(t, true, finding.Metadata["ocsf"])
	assert.Equal(t, true, finding.Metadata["striem"])
}

func TestNewFindingPrefersOCSFMetadataUID(t *testing.T) {
	src := event.New(map[string]any{
		"metadata": map[string]any{"uid": "vendor-uid-123"},
	}, nil)
	desc := rules.Descriptor{Rule: rules.Rule{ID: "r1", Title: "t"}}

	finding := NewFinding(src, desc)
	data := finding.Data.(map[string]any)
	md := data["metadata"].(map[string]any)
	assert.Equal(t, "vendor-uid-123", md["correlation_uid"])
	require.NotEqual(t, finding.ID, src.ID)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return -1
	}
}
