package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// wireTimeLayout is the naive UTC ISO 8601 form timestamps are emitted in.
const wireTimeLayout = "2006-01-02T15:04:05.999999"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// fieldReader pulls typed values out of a raw mapping and records every
// failure instead of stopping at the first.
type fieldReader struct {
	raw    map[string]any
	codec  IDCodec
	errs   []FieldError
	failed map[string]bool
}

func newFieldReader(raw map[string]any, codec IDCodec) *fieldReader {
	if raw == nil {
		raw = map[string]any{}
	}
	return &fieldReader{raw: raw, codec: codec, failed: map[string]bool{}}
}

func (r *fieldReader) fail(field, typ, msg string, input any) {
	r.errs = append(r.errs, FieldError{Field: field, Type: typ, Message: msg, Input: input})
	r.failed[baseField(field)] = true
}

func (r *fieldReader) missing(name string) {
	r.fail(name, "missing", "Field required", nil)
}

func (r *fieldReader) lookup(name string) (any, bool) {
	v, ok := r.raw[name]
	return v, ok
}

func (r *fieldReader) requiredBool(name string) bool {
	v, ok := r.lookup(name)
	if !ok {
		r.missing(name)
		return false
	}
	return r.asBool(name, v)
}

func (r *fieldReader) boolOr(name string, def bool) bool {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	return r.asBool(name, v)
}

func (r *fieldReader) optionalBool(name string, def *bool) *bool {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	if v == nil {
		return nil
	}
	b := r.asBool(name, v)
	return &b
}

func (r *fieldReader) asBool(name string, v any) bool {
	b, ok := toBool(v)
	if !ok {
		r.fail(name, "bool_parsing", "Input should be a valid boolean", v)
	}
	return b
}

func (r *fieldReader) optionalInt(name string, def *int) *int {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	if v == nil {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		r.fail(name, "int_parsing", "Input should be a valid integer", v)
		return nil
	}
	return &n
}

func (r *fieldReader) requiredString(name string) string {
	v, ok := r.lookup(name)
	if !ok {
		r.missing(name)
		return ""
	}
	return r.asString(name, v)
}

func (r *fieldReader) stringOr(name, def string) string {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	return r.asString(name, v)
}

func (r *fieldReader) optionalString(name string) *string {
	v, ok := r.lookup(name)
	if !ok || v == nil {
		return nil
	}
	s := r.asString(name, v)
	return &s
}

func (r *fieldReader) asString(name string, v any) string {
	s, ok := v.(string)
	if !ok {
		r.fail(name, "string_type", "Input should be a valid string", v)
	}
	return s
}

func (r *fieldReader) requiredEncodedID(name string) EncodedID {
	v, ok := r.lookup(name)
	if !ok {
		r.missing(name)
		return ""
	}
	id, ok := r.encodedID(v)
	if !ok {
		r.fail(name, "encoded_id", "Input should be an encoded id string or an integer id", v)
	}
	return id
}

func (r *fieldReader) encodedID(v any) (EncodedID, bool) {
	switch t := v.(type) {
	case EncodedID:
		return t, true
	case string:
		return EncodedID(t), true
	}
	if n, ok := toInt(v); ok && r.codec != nil {
		return EncodedID(r.codec.Encode(int64(n))), true
	}
	return "", false
}

func (r *fieldReader) encodedIDList(name string) []EncodedID {
	v, ok := r.lookup(name)
	if !ok {
		return []EncodedID{}
	}
	items, ok := toSlice(v)
	if !ok {
		r.fail(name, "list_type", "Input should be a valid list", v)
		return []EncodedID{}
	}
	out := make([]EncodedID, 0, len(items))
	for i, item := range items {
		id, ok := r.encodedID(item)
		if !ok {
			r.fail(fmt.Sprintf("%s[%d]", name, i), "encoded_id", "Input should be an encoded id string or an integer id", item)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (r *fieldReader) requiredDecodedID(name string) DecodedID {
	v, ok := r.lookup(name)
	if !ok {
		r.missing(name)
		return 0
	}
	id, _ := r.decodedID(name, v)
	return id
}

func (r *fieldReader) optionalDecodedID(name string) *DecodedID {
	v, ok := r.lookup(name)
	if !ok || v == nil {
		return nil
	}
	id, ok := r.decodedID(name, v)
	if !ok {
		return nil
	}
	return &id
}

func (r *fieldReader) decodedID(name string, v any) (DecodedID, bool) {
	switch t := v.(type) {
	case DecodedID:
		return t, true
	case string, EncodedID:
		token := fmt.Sprint(t)
		if r.codec == nil {
			r.fail(name, "decoded_id", "No id codec configured", v)
			return 0, false
		}
		n, err := r.codec.Decode(token)
		if err != nil {
			r.fail(name, "decoded_id", "Invalid encoded id", v)
			return 0, false
		}
		return DecodedID(n), true
	}
	if n, ok := toInt(v); ok {
		return DecodedID(n), true
	}
	r.fail(name, "decoded_id", "Input should be an encoded id string", v)
	return 0, false
}

// tags reads a tag collection. required fields must be present; nullable
// ones may carry null, which is kept as a nil collection.
func (r *fieldReader) tags(name string, required, nullable bool) TagCollection {
	v, ok := r.lookup(name)
	if !ok {
		if required {
			r.missing(name)
		}
		if nullable {
			return nil
		}
		return TagCollection{}
	}
	if v == nil {
		if !nullable {
			r.fail(name, "list_type", "Input should be a valid list", v)
			return TagCollection{}
		}
		return nil
	}
	if tc, ok := v.(TagCollection); ok {
		return append(TagCollection{}, tc...)
	}
	items, ok := toSlice(v)
	if !ok {
		r.fail(name, "list_type", "Input should be a valid list", v)
		return TagCollection{}
	}
	out := make(TagCollection, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			r.fail(fmt.Sprintf("%s[%d]", name, i), "string_type", "Input should be a valid string", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *fieldReader) optionalTime(name string) *time.Time {
	v, ok := r.lookup(name)
	if !ok || v == nil {
		return nil
	}
	t, ok := toTime(v)
	if !ok {
		r.fail(name, "datetime_parsing", "Input should be a valid datetime", v)
		return nil
	}
	return &t
}

func (r *fieldReader) requiredObject(name string) map[string]any {
	v, ok := r.lookup(name)
	if !ok {
		r.missing(name)
		return nil
	}
	obj, ok := toObject(v)
	if !ok {
		r.fail(name, "model_type", "Input should be an object", v)
		return nil
	}
	return obj
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on", "t", "y":
			return true, true
		case "false", "0", "no", "off", "f", "n":
			return false, true
		}
		return false, false
	}
	if n, ok := toInt(v); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func toSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []EncodedID:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []int64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func toObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case json.RawMessage:
		var obj map[string]any
		if err := json.Unmarshal(t, &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	}
	return nil, false
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(wireTimeLayout)
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func intOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
