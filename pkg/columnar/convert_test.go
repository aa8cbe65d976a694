package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/striemhq/striem/pkg/schema"
)

const testSchemaSrc = `message api_activity {
    optional INT32 activity_id (INTEGER(32, true));
    optional BYTE_ARRAY activity_name (STRING);
    required BYTE_ARRAY class_uid (STRING);
    optional group actor {
        optional BYTE_ARRAY app_name (STRING);
    }
    optional group authorizations (LIST) {
        repeated group list {
        optional BYTE_ARRAY decision (STRING);
        optional BOOLEAN is_applied;
        }
    }
}`

func parseTestSchema(t *testing.T) *schema.Class {
	t.Helper()
	c, err := schema.Parse(testSchemaSrc)
	require.NoError(t, err)
	return c
}

func TestConvertRoundTrip(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{
		"activity_id":   float64(1),
		"activity_name": "test",
		"class_uid":     "1001",
		"actor": map[string]any{
			"app_name": "test",
		},
		"authorizations": []any{
			map[string]any{"decision": "test", "is_applied": true},
		},
	}

	out, err := Convert(input, class)
	require.NoError(t, err)
	assert.Equal(t, int32(1), out["activity_id"])
	assert.Equal(t, "test", out["activity_name"])

	actor := out["actor"].(map[string]any)
	assert.Equal(t, "test", actor["app_name"])

	auths := out["authorizations"].([]any)
	require.Len(t, auths, 1)
	first := auths[0].(map[string]any)
	assert.Equal(t, "test", first["decision"])
	assert.Equal(t, true, first["is_applied"])
}

func TestConvertRequiredFieldAbsentFails(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{"activity_id": float64(1)}
	_, err := Convert(input, class)
	assert.Error(t, err)
}

func TestConvertOptionalFieldAbsentIsNull(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{"class_uid": "1001"}
	out, err := Convert(input, class)
	require.NoError(t, err)
	assert.Nil(t, out["activity_id"])
	assert.Nil(t, out["actor"])
}

func TestConvertInt32OverflowDegradesToNullWhenNullable(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{
		"activity_id": float64(int64(1) << 40),
		"class_uid":   "1001",
	}
	out, err := Convert(input, class)
	require.NoError(t, err)
	assert.Nil(t, out["activity_id"])
}

func TestConvertEmptyArrayIsZeroLengthNotNull(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{
		"class_uid":      "1001",
		"authorizations": []any{},
	}
	out, err := Convert(input, class)
	require.NoError(t, err)
	require.NotNil(t, out["authorizations"])
	assert.Len(t, out["authorizations"], 0)
}

func TestConvertNonStringValueIsStringified(t *testing.T) {
	class := parseTestSchema(t)
	input := map[string]any{
		"class_uid":     "1001",
		"activity_name": float64(42),
	}
	out, err := Convert(input, class)
	require.NoError(t, err)
	assert.Equal(t, "42", out["activity_name"])
}
