package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// EncodeRecord flattens a tagged struct into a Record using its json tags.
func EncodeRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return normalizeRecord(rec), nil
}

// EncodeRecords flattens a slice of entities.
func EncodeRecords[T any](items []T) ([]Record, error) {
	rows := make([]Record, 0, len(items))
	for i := range items {
		rec, err := EncodeRecord(items[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// DecodeRecord fills out from rec. Values may be typed (json, yaml) or plain
// strings (txt, sqlite); numbers, booleans, timestamps and JSON-encoded nested
// cells are converted to the field types.
func DecodeRecord(rec Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(recordDecodeHook),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("create record decoder: %w", err)
	}
	if err := decoder.Decode(rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// DecodeRecords decodes every row, failing on the first bad one.
func DecodeRecords[T any](rows []Record) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var item T
		if err := DecodeRecord(row, &item); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, item)
	}
	return out, nil
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf(&time.Time{})
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// recordDecodeHook is the only hook in the chain, so it may return untyped nil.
func recordDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, isString := data.(string)

	switch {
	case to == timeType || to == timePtrType:
		if !isString {
			return data, nil
		}
		if strings.TrimSpace(s) == "" {
			if to == timePtrType {
				return nil, nil
			}
			return time.Time{}, nil
		}
		t, err := parseTime(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		if to == timePtrType {
			return &t, nil
		}
		return t, nil

	case isString && (to.Kind() == reflect.Slice || to.Kind() == reflect.Map || to.Kind() == reflect.Struct):
		if strings.TrimSpace(s) == "" {
			return reflect.Zero(to).Interface(), nil
		}
		var nested any
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&nested); err != nil {
			return nil, fmt.Errorf("nested cell is not valid JSON: %w", err)
		}
		return normalizeValue(nested), nil

	case to.Kind() == reflect.String:
		switch v := data.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}

	return data, nil
}

func normalizeRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue folds decoder-specific types onto the Record value set.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
		f, err := x.Float64()
		if err != nil {
			return s
		}
		return f
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case map[string]any:
		return normalizeRecord(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}

// cellString renders a value for a flat text cell. Nested values become compact JSON.
func cellString(v any) (string, error) {
	switch x := normalizeValue(v).(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return "", fmt.Errorf("encode nested cell: %w", err)
		}
		return string(raw), nil
	}
}

// inferCell recovers a typed value from a flat text cell: empty is nil,
// true/false is a boolean, integers and decimals become numbers.
// Numeric-looking strings such as zero-padded codes lose their formatting.
func inferCell(s string) any {
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "true") {
		return true
	}
	if strings.EqualFold(s, "false") {
		return false
	}
	if !looksNumeric(s) {
		return s
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func looksNumeric(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}
