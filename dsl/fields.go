package dsl

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/i18n"
	js "github.com/keystone-go/keystone/jsonschema"
)

// FieldAdapter describes how one record field decodes wire values, encodes
// them back, orders instances and projects into JSON Schema. Construct
// adapters with the kind helpers (String, Bool, Int, ...) and hand them to
// Field.
type FieldAdapter struct {
	kind       string
	goType     reflect.Type
	decode     func(v any) (any, error)
	encode     func(v any) any // nil means identity
	orderable  bool
	compare    func(a, b any) int
	jsonSchema func() (*js.Schema, error)
}

// Kind returns the adapter's kind name as shown by Record.Fields.
func (ad FieldAdapter) Kind() string { return ad.kind }

// GoType returns the Go type produced by decoding.
func (ad FieldAdapter) GoType() reflect.Type { return ad.goType }

func (ad FieldAdapter) encodeValue(v any) any {
	if ad.encode == nil {
		return v
	}
	return ad.encode(v)
}

// String returns the adapter for string fields.
func String() FieldAdapter {
	return FieldAdapter{
		kind:   "string",
		goType: reflect.TypeOf(""),
		decode: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, invalidType("string", v)
			}
			return s, nil
		},
		orderable:  true,
		compare:    func(a, b any) int { return strings.Compare(a.(string), b.(string)) },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil },
	}
}

// Bool returns the adapter for bool fields. Ordering treats false < true.
func Bool() FieldAdapter {
	return FieldAdapter{
		kind:   "bool",
		goType: reflect.TypeOf(false),
		decode: func(v any) (any, error) {
			b, ok := v.(bool)
			if !ok {
				return nil, invalidType("bool", v)
			}
			return b, nil
		},
		orderable: true,
		compare: func(a, b any) int {
			ab, bb := a.(bool), b.(bool)
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil },
	}
}

// Int returns the adapter for int fields. The wire side accepts Go integers,
// integral json.Number and integral float64 (YAML decodes numbers as int).
func Int() FieldAdapter {
	return FieldAdapter{
		kind:   "int",
		goType: reflect.TypeOf(int(0)),
		decode: func(v any) (any, error) {
			i, ok := toInt64(v)
			if !ok {
				return nil, invalidType("int", v)
			}
			return int(i), nil
		},
		orderable:  true,
		compare:    func(a, b any) int { return compareInt64(int64(a.(int)), int64(b.(int))) },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil },
	}
}

// Int64 returns the adapter for int64 fields.
func Int64() FieldAdapter {
	return FieldAdapter{
		kind:   "int64",
		goType: reflect.TypeOf(int64(0)),
		decode: func(v any) (any, error) {
			i, ok := toInt64(v)
			if !ok {
				return nil, invalidType("int64", v)
			}
			return i, nil
		},
		orderable:  true,
		compare:    func(a, b any) int { return compareInt64(a.(int64), b.(int64)) },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil },
	}
}

// Float64 returns the adapter for float64 fields.
func Float64() FieldAdapter {
	return FieldAdapter{
		kind:   "float64",
		goType: reflect.TypeOf(float64(0)),
		decode: func(v any) (any, error) {
			f, ok := toFloat64(v)
			if !ok {
				return nil, invalidType("float64", v)
			}
			return f, nil
		},
		orderable: true,
		compare: func(a, b any) int {
			af, bf := a.(float64), b.(float64)
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "number"}, nil },
	}
}

// Duration returns the adapter for time.Duration fields. The wire form is a
// Go duration string such as "1h30m".
func Duration() FieldAdapter {
	return FieldAdapter{
		kind:   "duration",
		goType: reflect.TypeOf(time.Duration(0)),
		decode: func(v any) (any, error) {
			switch t := v.(type) {
			case time.Duration:
				return t, nil
			case string:
				d, err := time.ParseDuration(t)
				if err != nil {
					return nil, keystone.Issues{keystone.Issue{
						Path: "/", Code: keystone.CodeInvalidType,
						Message: i18n.T(keystone.CodeInvalidType, nil),
						Hint:    `expected a duration string like "1h30m"`,
						Cause:   err,
					}}
				}
				return d, nil
			}
			return nil, invalidType("duration string", v)
		},
		encode:     func(v any) any { return v.(time.Duration).String() },
		orderable:  true,
		compare:    func(a, b any) int { return compareInt64(int64(a.(time.Duration)), int64(b.(time.Duration))) },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string", Format: "duration"}, nil },
	}
}

// TimeRFC3339 returns the adapter for time.Time fields. The wire form is an
// RFC 3339 timestamp.
func TimeRFC3339() FieldAdapter {
	return FieldAdapter{
		kind:   "time",
		goType: reflect.TypeOf(time.Time{}),
		decode: func(v any) (any, error) {
			switch t := v.(type) {
			case time.Time:
				return t, nil
			case string:
				ts, err := time.Parse(time.RFC3339Nano, t)
				if err != nil {
					return nil, keystone.Issues{keystone.Issue{
						Path: "/", Code: keystone.CodeInvalidType,
						Message: i18n.T(keystone.CodeInvalidType, nil),
						Hint:    "expected an RFC 3339 timestamp",
						Cause:   err,
					}}
				}
				return ts, nil
			}
			return nil, invalidType("RFC 3339 timestamp", v)
		},
		encode:     func(v any) any { return v.(time.Time).Format(time.RFC3339Nano) },
		orderable:  true,
		compare:    func(a, b any) int { return a.(time.Time).Compare(b.(time.Time)) },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string", Format: "date-time"}, nil },
	}
}

// Of returns an adapter for an arbitrary Go type T, typically slices, maps or
// small structs used as collection defaults. Wire values convert structurally
// ([]any into slices, map[string]any into maps and structs). Of fields compare
// with reflect.DeepEqual and do not support ordering.
func Of[T any]() FieldAdapter {
	var zero *T
	return ofReflect(reflect.TypeOf(zero).Elem())
}

// ofReflect is the runtime-typed core behind Of, shared with Infer.
func ofReflect(t reflect.Type) FieldAdapter {
	return FieldAdapter{
		kind:   t.String(),
		goType: t,
		decode: func(v any) (any, error) {
			return convertToType(v, t)
		},
		orderable:  false,
		jsonSchema: func() (*js.Schema, error) { return ofJSONSchema(t), nil },
	}
}

func invalidType(want string, got any) keystone.Issues {
	return keystone.Issues{keystone.Issue{
		Path:    "/",
		Code:    keystone.CodeInvalidType,
		Message: i18n.T(keystone.CodeInvalidType, nil),
		Hint:    fmt.Sprintf("expected %s, got %T", want, got),
	}}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// toInt64 accepts Go integers, integral json.Number and integral floats.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		if math.Trunc(t) != t || t < math.MinInt64 || t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float32:
		return toInt64(float64(t))
	}
	return 0, false
}

// toFloat64 accepts Go numbers and json.Number.
func toFloat64(v any) (float64, bool) {
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
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// convertToType structurally converts a decoded wire value into t.
func convertToType(v any, t reflect.Type) (any, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			return reflect.Zero(t).Interface(), nil
		default:
			return nil, invalidType(t.String(), v)
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return v, nil
	}
	switch t.Kind() {
	case reflect.String:
		if s, ok := v.(string); ok {
			return reflect.ValueOf(s).Convert(t).Interface(), nil
		}
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := toInt64(v); ok {
			out := reflect.New(t).Elem()
			if out.OverflowInt(i) {
				return nil, invalidType(t.String(), v)
			}
			out.SetInt(i)
			return out.Interface(), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := toInt64(v); ok && i >= 0 {
			out := reflect.New(t).Elem()
			if out.OverflowUint(uint64(i)) {
				return nil, invalidType(t.String(), v)
			}
			out.SetUint(uint64(i))
			return out.Interface(), nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := toFloat64(v); ok {
			out := reflect.New(t).Elem()
			out.SetFloat(f)
			return out.Interface(), nil
		}
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			break
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, el := range arr {
			cv, err := convertToType(el, t.Elem())
			if err != nil {
				return nil, keystone.RebaseIssues("/"+strconv.Itoa(i), err)
			}
			out.Index(i).Set(typedValue(cv, t.Elem()))
		}
		return out.Interface(), nil
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for k, el := range m {
			cv, err := convertToType(el, t.Elem())
			if err != nil {
				return nil, keystone.RebaseIssues("/"+k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), typedValue(cv, t.Elem()))
		}
		return out.Interface(), nil
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		out := reflect.New(t).Elem()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			key := keystone.ResolveStructKey(sf)
			if key == "" || key == "-" {
				continue
			}
			el, exists := m[key]
			if !exists || el == nil {
				continue
			}
			cv, err := convertToType(el, sf.Type)
			if err != nil {
				return nil, keystone.RebaseIssues("/"+key, err)
			}
			out.Field(i).Set(reflect.ValueOf(cv))
		}
		return out.Interface(), nil
	case reflect.Pointer:
		cv, err := convertToType(v, t.Elem())
		if err != nil {
			return nil, err
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(reflect.ValueOf(cv))
		return out.Interface(), nil
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
		return rv.Convert(t).Interface(), nil
	}
	return nil, invalidType(t.String(), v)
}

// typedValue wraps cv as a t-typed reflect.Value. A nil cv (possible when
// the element type is an interface) becomes t's zero value instead of an
// invalid Value.
func typedValue(cv any, t reflect.Type) reflect.Value {
	if cv == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(cv)
}

// ofJSONSchema maps a Go type onto a coarse JSON Schema node.
func ofJSONSchema(t reflect.Type) *js.Schema {
	switch t.Kind() {
	case reflect.String:
		return &js.Schema{Type: "string"}
	case reflect.Bool:
		return &js.Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &js.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &js.Schema{Type: "number"}
	case reflect.Slice:
		return &js.Schema{Type: "array", Items: ofJSONSchema(t.Elem())}
	case reflect.Map, reflect.Struct:
		return &js.Schema{Type: "object"}
	case reflect.Pointer:
		return ofJSONSchema(t.Elem())
	default:
		return &js.Schema{}
	}
}
