package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Stored documents use several names for the same attribute. These helpers walk an
// alias list and return the first non-empty value.

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := asString(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// AsNumber converts the numeric shapes produced by the store backends into float64.
// Numeric strings are accepted as well.
func AsNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// firstNumber returns the first alias holding a non-zero number. Zero counts as absent.
func firstNumber(raw map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := AsNumber(raw[k]); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

func firstNumberPtr(raw map[string]interface{}, keys ...string) *float64 {
	if f, ok := firstNumber(raw, keys...); ok {
		return &f
	}
	return nil
}

func firstIntPtr(raw map[string]interface{}, keys ...string) *int {
	if f, ok := firstNumber(raw, keys...); ok {
		n := int(f)
		return &n
	}
	return nil
}

// AsTime accepts time.Time, RFC3339 strings, unix seconds/millis and
// {_seconds, _nanoseconds} maps as exported by the Firestore console.
func AsTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case map[string]interface{}:
		secs, ok := AsNumber(t["_seconds"])
		if !ok {
			secs, ok = AsNumber(t["seconds"])
		}
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := AsNumber(t["_nanoseconds"])
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	default:
		n, ok := AsNumber(v)
		if !ok || n <= 0 {
			return time.Time{}, false
		}
		// values past year 2286 in seconds are millis
		if n > 1e10 {
			return time.UnixMilli(int64(n)).UTC(), true
		}
		return time.Unix(int64(n), 0).UTC(), true
	}
}

func firstTimePtr(raw map[string]interface{}, keys ...string) *time.Time {
	for _, k := range keys {
		if t, ok := AsTime(raw[k]); ok {
			return &t
		}
	}
	return nil
}

func asBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	default:
		return false, false
	}
}

func firstBool(raw map[string]interface{}, keys ...string) bool {
	for _, k := range keys {
		if b, ok := asBool(raw[k]); ok {
			return b
		}
	}
	return false
}

// stringList reads a list stored either as an array or as comma-separated text.
func stringList(raw map[string]interface{}, keys ...string) []string {
	for _, k := range keys {
		var out []string
		switch t := raw[k].(type) {
		case []interface{}:
			for _, item := range t {
				if s := asString(item); s != "" {
					out = append(out, s)
				}
			}
		case []string:
			for _, s := range t {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		case string:
			for _, part := range strings.Split(t, ",") {
				if s := strings.TrimSpace(part); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// text reads free text that may also be stored as a list of lines.
func text(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch t := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case []interface{}, []string:
			if lines := stringList(raw, k); len(lines) > 0 {
				return strings.Join(lines, "\n")
			}
		}
	}
	return ""
}
