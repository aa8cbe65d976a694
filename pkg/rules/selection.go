package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// matchSelection evaluates one named selection block (a map of field
// predicates ANDed together) against decoded event data. Sigma's
// "field|modifier: value" syntax is supported for the modifiers this
// project's rule set actually uses: equality (no modifier), contains,
// startswith, endswith. A list of values for a field is an OR across that
// list, matching Sigma semantics.
func matchSelection(sel any, data map[string]any) (bool, error) {
	fields, ok := sel.(map[string]any)
	if !ok {
		return false, fmt.Errorf("selection is not a mapping")
	}
	for rawKey, want := range fields {
		field, modifier := splitFieldModifier(rawKey)
		got, present := lookupField(data, field)
		if !matchField(got, present, modifier, want) {
			return false, nil
		}
	}
	return true, nil
}

func splitFieldModifier(rawKey string) (field, modifier string) {
	parts := strings.SplitN(rawKey, "|", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// lookupField resolves a (possibly dotted) field path against nested
// JSON-decoded maps, e.g. "actor.user.name".
func lookupField(data map[string]any, path string) (any, bool) {
	cur := any(data)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func matchField(got any, present bool, modifier string, want any) bool {
	wants := toSlice(want)
	for _, w := range wants {
		if matchOne(got, present, modifier, w) {
			return true
		}
	}
	return false
}

func toSlice(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}

func matchOne(got any, present bool, modifier string, want any) bool {
	if !present {
		return false
	}
	gotStr := toStr(got)
	wantStr := toStr(want)
	switch modifier {
	case "", "eq":
		return valuesEqual(got, want)
	case "contains":
		return strings.Contains(gotStr, wantStr)
	case "startswith":
		return strings.HasPrefix(gotStr, wantStr)
	case "endswith":
		return strings.HasSuffix(gotStr, wantStr)
	default:
		return valuesEqual(got, want)
	}
}

func valuesEqual(a, b any) bool {
	if a == b {
		return true
	}
	return toStr(a) == toStr(b)
}

func toStr(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", n)
	}
}
