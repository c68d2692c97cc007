package soql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// DateTimeLayout is the SOQL datetime literal layout. Values are always
// rendered in UTC with a literal Z.
const DateTimeLayout = "2006-01-02T15:04:05Z"

// Quote renders v as SOQL literal text.
//
//   - slices and arrays become a parenthesised, comma separated list of quoted elements
//   - strings are single quoted with JSON string escaping and \' for quotes
//   - time.Time values become an unquoted UTC datetime truncated to seconds
//   - anything else is JSON encoded (numbers, booleans, nil, maps)
func Quote(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return quoteString(val)
	case time.Time:
		return val.UTC().Format(DateTimeLayout), nil
	case *time.Time:
		if val == nil {
			return "null", nil
		}
		return val.UTC().Format(DateTimeLayout), nil
	case []any:
		return quoteList(len(val), func(i int) any { return val[i] })
	case []byte:
		return quoteString(string(val))
	case float64:
		return quoteFloat(val)
	case float32:
		return quoteFloat(float64(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "()", nil
		}
		return quoteList(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return "", fmt.Errorf("cannot quote value of type %T as a SOQL literal", v)
	}
	return encodeJSON(v)
}

func quoteList(n int, at func(int) any) (string, error) {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		q, err := Quote(at(i))
		if err != nil {
			return "", fmt.Errorf("element %d: %w", i, err)
		}
		parts[i] = q
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func quoteString(s string) (string, error) {
	encoded, err := encodeJSON(s)
	if err != nil {
		return "", err
	}
	body := encoded[1 : len(encoded)-1]
	return "'" + strings.ReplaceAll(body, "'", `\'`) + "'", nil
}

func quoteFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null", nil
	}
	return encodeJSON(f)
}

// encodeJSON encodes without HTML escaping so <, > and & stay literal.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("cannot quote value of type %T: %w", v, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
