package columnar

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/schema"
)

// Convert turns a decoded JSON record into the map[string]any shape the
// storage writer passes to parquet-go, applying the field-by-field policy:
//
//   - A field absent from data is null if the schema marks it nullable,
//     and a hard error otherwise.
//   - A present value of the wrong type for its field degrades to null
//     (with a logged warning) when nullable, and is a hard error
//     otherwise — except strings/bytes, where any non-null scalar or
//     structured value is accepted by stringifying its canonical JSON
//     form rather than failing.
//   - An int32 field whose value doesn't fit degrades to null (nullable)
//     or errors (required); int64 and float64 fields never overflow.
//   - An empty JSON array converts to a present, zero-length list — never
//     to null.
//
// Extra keys present in data but absent from the schema are silently
// dropped, matching strict-schema columnar formats in general and this
// implementation's upstream in particular.
func Convert(data any, class *schema.Class) (map[string]any, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level record is not a JSON object", errs.ErrConversionFailedRequired)
	}
	return convertStruct(obj, class.Fields)
}

func convertStruct(obj map[string]any, fields []schema.Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, present := obj[f.Name]
		if !present || v == nil {
			if !f.Nullable {
				return nil, fmt.Errorf("%w: field %q is required but absent", errs.ErrConversionFailedRequired, f.Name)
			}
			out[f.Name] = nil
			continue
		}

		converted, err := convertValue(v, f)
		if err != nil {
			return nil, err
		}
		out[f.Name] = converted
	}
	return out, nil
}

func convertValue(v any, f schema.Field) (any, error) {
	switch f.Kind {
	case schema.KindInt32:
		n, ok := asInt64(v)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not an integer", f.Name))
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return degrade(f, fmt.Sprintf("field %q value %d overflows int32", f.Name, n))
		}
		return int32(n), nil

	case schema.KindInt64:
		n, ok := asInt64(v)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not an integer", f.Name))
		}
		return n, nil

	case schema.KindFloat64:
		n, ok := asFloat64(v)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not numeric", f.Name))
		}
		return n, nil

	case schema.KindBool:
		b, ok := v.(bool)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not a boolean", f.Name))
		}
		return b, nil

	case schema.KindString, schema.KindBytes:
		if s, ok := v.(string); ok {
			return s, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return degrade(f, fmt.Sprintf("field %q could not be stringified: %v", f.Name, err))
		}
		return string(raw), nil

	case schema.KindTimestamp:
		if n, ok := asInt64(v); ok {
			return n, nil
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		return degrade(f, fmt.Sprintf("field %q is not a millisecond timestamp", f.Name))

	case schema.KindStruct:
		obj, ok := v.(map[string]any)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not an object", f.Name))
		}
		converted, err := convertStruct(obj, f.Children)
		if err != nil {
			if f.Nullable {
				log.Logger.Warn().Str("field", f.Name).Err(err).Msg("struct field failed to convert, writing null")
				return nil, nil
			}
			return nil, err
		}
		return converted, nil

	case schema.KindList:
		arr, ok := v.([]any)
		if !ok {
			return degrade(f, fmt.Sprintf("field %q is not an array", f.Name))
		}
		out := make([]any, 0, len(arr))
		for i, item := range arr {
			elem, err := convertValue(item, *f.Elem)
			if err != nil {
				return nil, fmt.Errorf("field %q[%d]: %w", f.Name, i, err)
			}
			out = append(out, elem)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("columnar: unsupported field kind %v for %q", f.Kind, f.Name)
	}
}

// degrade implements the nullable-absent/mismatch policy shared by every
// leaf kind: nullable fields fall back to null with a logged warning,
// required fields fail the whole conversion.
func degrade(f schema.Field, reason string) (any, error) {
	if f.Nullable {
		log.Logger.Warn().Str("field", f.Name).Msg(reason)
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", errs.ErrConversionFailedRequired, reason)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
