package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/thankschain/internal/docstore"
)

// marshalFields converts document fields to canonical JSON TEXT for storage.
//
// Canonical form:
//  1. Object keys sorted
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats (returns error)
//
// Transforms must be resolved before marshaling.
func marshalFields(fields docstore.Fields) (string, error) {
	var buf bytes.Buffer
	if err := marshalValue(&buf, map[string]any(fields)); err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return buf.String(), nil
}

func marshalValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		return marshalString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case time.Time:
		buf.WriteString(strconv.FormatInt(docstore.Timestamp(val), 10))
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(buf, arr)
	case []any:
		return marshalArray(buf, val)
	case map[string]int64:
		obj := make(map[string]any, len(val))
		for k, n := range val {
			obj[k] = n
		}
		return marshalObject(buf, obj)
	case docstore.Fields:
		return marshalObject(buf, val)
	case map[string]any:
		return marshalObject(buf, val)
	case float32, float64:
		return fmt.Errorf("%w: floats are forbidden: %v", docstore.ErrInvalidValue, val)
	case docstore.Transform:
		return fmt.Errorf("%w: unresolved transform %T", docstore.ErrInvalidValue, val)
	default:
		return fmt.Errorf("%w: unsupported type %T", docstore.ErrInvalidValue, v)
	}
	return nil
}

// marshalString writes s NFC normalized without HTML escaping.
func marshalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func marshalArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalValue(buf, elem); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshalValue(buf, obj[k]); err != nil {
			return fmt.Errorf("%q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// unmarshalFields parses stored JSON TEXT.
// Numbers decode as int64 via json.Number to avoid float64 precision loss.
func unmarshalFields(data string) (docstore.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	out, err := convertNumbers(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	fields, _ := out.(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	return docstore.Fields(fields), nil
}

func convertNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: non-integer number %s", docstore.ErrInvalidValue, val)
		}
		return n, nil
	case []any:
		for i, elem := range val {
			conv, err := convertNumbers(elem)
			if err != nil {
				return nil, err
			}
			val[i] = conv
		}
		return val, nil
	case map[string]any:
		for k, elem := range val {
			conv, err := convertNumbers(elem)
			if err != nil {
				return nil, err
			}
			val[k] = conv
		}
		return val, nil
	default:
		return v, nil
	}
}

// normalize converts accepted Go values to the decoded representation
// (int64, []any, map[string]any) so in-memory updates compare like stored
// values. Transforms are resolved against their zero base.
func normalize(v any, now int64) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case time.Time:
		return docstore.Timestamp(val), nil
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return arr, nil
	case []any:
		arr := make([]any, len(val))
		for i, elem := range val {
			n, err := normalize(elem, now)
			if err != nil {
				return nil, err
			}
			arr[i] = n
		}
		return arr, nil
	case map[string]int64:
		obj := make(map[string]any, len(val))
		for k, n := range val {
			obj[k] = n
		}
		return obj, nil
	case docstore.Fields:
		return normalize(map[string]any(val), now)
	case map[string]any:
		obj := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalize(elem, now)
			if err != nil {
				return nil, err
			}
			obj[k] = n
		}
		return obj, nil
	case docstore.Increment:
		return val.By, nil
	case docstore.ArrayUnion:
		arr, err := normalize(val.Values, now)
		if err != nil {
			return nil, err
		}
		return unique(arr.([]any)), nil
	case docstore.Transform:
		// ServerTimestamp is the only remaining transform.
		return now, nil
	case float32, float64:
		return nil, fmt.Errorf("%w: floats are forbidden: %v", docstore.ErrInvalidValue, val)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", docstore.ErrInvalidValue, v)
	}
}

// unique drops repeated scalar values, keeping first occurrences.
func unique(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(arr []any, v any) bool {
	for _, elem := range arr {
		if isScalar(elem) && isScalar(v) && elem == v {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int64:
		return true
	default:
		return false
	}
}
