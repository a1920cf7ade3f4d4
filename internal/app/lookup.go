package app

import (
	"strconv"
	"strings"
)

/********** tiny helpers over decoded JSON **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

// lookupMap returns the object at path, nil when absent or null.
func lookupMap(m map[string]any, path string) map[string]any {
	if obj, ok := lookupAny(m, path).(map[string]any); ok {
		return obj
	}
	return nil
}

// lookupSlice returns the list at path, nil when absent or null.
func lookupSlice(m map[string]any, path string) []any {
	if raw, ok := lookupAny(m, path).([]any); ok {
		return raw
	}
	return nil
}

// lookupFloat: number at path (float64/int/string like "8,0").
func lookupFloat(m map[string]any, path string) (float64, bool) {
	switch v := lookupAny(m, path).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// lookupInt: integer at path, truncating floats.
func lookupInt(m map[string]any, path string) int {
	if f, ok := lookupFloat(m, path); ok {
		return int(f)
	}
	return 0
}

// idString renders an id that may arrive as a string or a JSON number.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// stringItems keeps the string entries of a decoded JSON list.
func stringItems(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// deepCopy clones decoded JSON so the copy shares no maps or slices with v.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = deepCopy(it)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, it := range t {
			out[i] = deepCopyMap(it)
		}
		return out
	default:
		return t
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}
