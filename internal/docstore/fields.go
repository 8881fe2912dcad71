package docstore

import "time"

// Fields is the content of a document.
type Fields map[string]any

// String returns the string at key, or "" if absent or of another type.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// OptionalString returns nil for absent, null or non-string values.
func (f Fields) OptionalString(key string) *string {
	s, ok := f[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the integer at key, or 0.
func (f Fields) Int(key string) int64 {
	return toInt64(f[key])
}

// Bool returns the boolean at key, or false.
func (f Fields) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

// Strings returns the string elements of the array at key.
// Non-string elements are skipped. Returns an empty slice, never nil.
func (f Fields) Strings(key string) []string {
	out := []string{}
	switch arr := f[key].(type) {
	case []any:
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, arr...)
	}
	return out
}

// IntMap returns the integer entries of the map at key.
// Returns an empty map, never nil.
func (f Fields) IntMap(key string) map[string]int64 {
	out := map[string]int64{}
	switch m := f[key].(type) {
	case map[string]any:
		for k, v := range m {
			out[k] = toInt64(v)
		}
	case map[string]int64:
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Time decodes a timestamp stored as Unix microseconds.
// Returns the zero time if the field is absent.
func (f Fields) Time(key string) time.Time {
	if _, ok := f[key]; !ok || f[key] == nil {
		return time.Time{}
	}
	return time.UnixMicro(toInt64(f[key])).UTC()
}

// OptionalTime is Time for nullable timestamps.
func (f Fields) OptionalTime(key string) *time.Time {
	if f[key] == nil {
		return nil
	}
	t := f.Time(key)
	return &t
}

// Timestamp encodes t the way the store persists ServerTimestamp values.
func Timestamp(t time.Time) int64 {
	return t.UnixMicro()
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return 0
	}
}
