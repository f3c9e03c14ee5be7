package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved row keys
const (
	RawValuesKey = "rawValues"
	RowIDKey     = "id"
)

// Row is one candidate or persisted master-data record keyed by camelCase field name.
// Values are string, float64, bool or nil. Values that failed numeric/boolean coercion
// on the client travel in the rawValues side channel.
type Row map[string]any

// Clone returns a shallow copy of the row with its own rawValues map.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	if raw := r.RawValues(); len(raw) > 0 {
		copied := make(map[string]string, len(raw))
		for k, v := range raw {
			copied[k] = v
		}
		out[RawValuesKey] = copied
	}
	return out
}

// RawValues returns the original un-parsed strings carried by the row.
// JSON-decoded rows hold map[string]any, rows built in Go hold map[string]string.
func (r Row) RawValues() map[string]string {
	switch raw := r[RawValuesKey].(type) {
	case map[string]string:
		return raw
	case map[string]any:
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			if v == nil {
				continue
			}
			out[k] = fmt.Sprint(v)
		}
		return out
	}
	return nil
}

// SetRaw records the original string for a field whose typed value could not be parsed.
func (r Row) SetRaw(field, value string) {
	raw := r.RawValues()
	if raw == nil {
		raw = make(map[string]string)
	}
	raw[field] = value
	r[RawValuesKey] = raw
}

// Raw returns the raw string for field, if one was preserved.
func (r Row) Raw(field string) (string, bool) {
	raw := r.RawValues()
	if raw == nil {
		return "", false
	}
	v, ok := raw[field]
	return v, ok
}

// String returns the typed value of field rendered as text. Absent and nil give "".
func (r Row) String(field string) string {
	return FormatValue(r[field])
}

// Text returns the raw value when one was preserved, otherwise the typed value as text.
func (r Row) Text(field string) string {
	if raw, ok := r.Raw(field); ok {
		return raw
	}
	return r.String(field)
}

// Number returns the field as float64 when it holds a number or a numeric string.
func (r Row) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ID returns the persisted row id, or "" for new rows.
func (r Row) ID() string {
	return r.String(RowIDKey)
}

// IsBlank reports whether a field is absent, nil or whitespace-only and has no raw value.
func (r Row) IsBlank(field string) bool {
	return strings.TrimSpace(r.Text(field)) == ""
}

// FormatValue renders a row value as text the way it is shown in the grid.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
