package dsl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/i18n"
)

// Infer derives a typed record from T's struct definition alone. Wire names
// come from keystone/json tags (field name otherwise), defaults from
// `default:"..."` tags (the field's zero value otherwise) and docs from
// `doc:"..."` tags:
//
//	type Settings struct {
//	    Thing int  `json:"thing" default:"1"`
//	    Foo   bool `json:"foo"   default:"false"`
//	}
//	rec, err := dsl.Infer[Settings](keystone.CapEquality)
//
// Collection fields take their default tag as a JSON literal, for example
// `default:"[1,2,3]"`. Results are cached per (type, capability set);
// concurrent first calls share one inference.
func Infer[T any](caps ...keystone.Capability) (keystone.Record[T], error) {
	var zero T
	rt := reflect.TypeOf(&zero).Elem()
	var mask keystone.Capability
	for _, c := range caps {
		mask |= c
	}
	key := inferKey{t: rt, caps: mask}
	if v, ok := inferCache.Load(key); ok {
		return v.(keystone.Record[T]), nil
	}
	v, err, _ := inferGroup.Do(flightKey(rt, mask), func() (any, error) {
		if v, ok := inferCache.Load(key); ok {
			return v, nil
		}
		rec, err := inferRecord[T](rt, caps)
		if err != nil {
			return nil, err
		}
		inferCache.Store(key, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(keystone.Record[T]), nil
}

// MustInfer is Infer that panics on definition issues.
func MustInfer[T any](caps ...keystone.Capability) keystone.Record[T] {
	rec, err := Infer[T](caps...)
	if err != nil {
		panic(fmt.Sprintf("keystone: invalid record definition: %v", err))
	}
	return rec
}

type inferKey struct {
	t    reflect.Type
	caps keystone.Capability
}

var (
	inferCache sync.Map // inferKey -> keystone.Record[T]
	inferGroup singleflight.Group
)

// flightKey is unique per type in a process; reflect.Type values are
// canonical pointers.
func flightKey(rt reflect.Type, caps keystone.Capability) string {
	return strconv.FormatUint(uint64(reflect.ValueOf(rt).Pointer()), 16) +
		":" + strconv.FormatUint(uint64(caps), 16)
}

func inferRecord[T any](rt reflect.Type, caps []keystone.Capability) (keystone.Record[T], error) {
	if rt.Kind() != reflect.Struct {
		return nil, keystone.Issues{keystone.Issue{
			Path:    "/",
			Code:    keystone.CodeInvalidType,
			Message: i18n.T(keystone.CodeInvalidType, nil),
			Hint:    fmt.Sprintf("Infer needs a struct type, got %s", rt.Kind()),
		}}
	}
	b := Record().Named(rt.Name())
	var tagIssues keystone.Issues
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := keystone.ResolveStructKey(sf)
		if key == "" || key == "-" {
			continue
		}
		ad := adapterForType(sf.Type)
		step := b.Field(key, ad)
		if doc, ok := sf.Tag.Lookup("doc"); ok {
			step = step.Doc(doc)
		}
		raw, tagged := sf.Tag.Lookup("default")
		if !tagged {
			step.Default(reflect.Zero(ad.GoType()).Interface())
			continue
		}
		dv, err := parseDefaultTag(raw, ad)
		if err != nil {
			tagIssues = keystone.AppendIssues(tagIssues, keystone.Issue{
				Path:    "/" + key,
				Code:    keystone.CodeDefaultMismatch,
				Message: i18n.T(keystone.CodeDefaultMismatch, nil),
				Hint:    "cannot parse default tag " + strconv.Quote(raw),
				Cause:   err,
			})
			step.Default(reflect.Zero(ad.GoType()).Interface())
			continue
		}
		step.Default(dv)
	}
	b.Derive(caps...)
	rec, err := Bind[T](b)
	if err != nil {
		if sub, ok := keystone.AsIssues(err); ok {
			return nil, append(tagIssues, sub...)
		}
		return nil, err
	}
	if len(tagIssues) > 0 {
		return nil, tagIssues
	}
	return rec, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// adapterForType picks the adapter by kind so named scalar types such as
// `type Port int` share the plain adapters; Bind converts at the boundary.
func adapterForType(t reflect.Type) FieldAdapter {
	switch t {
	case durationType:
		return Duration()
	case timeType:
		return TimeRFC3339()
	}
	switch t.Kind() {
	case reflect.String:
		return String()
	case reflect.Bool:
		return Bool()
	case reflect.Int:
		return Int()
	case reflect.Int64:
		return Int64()
	case reflect.Float64:
		return Float64()
	default:
		return ofReflect(t)
	}
}

// parseDefaultTag interprets the tag text by the adapter's kind. Scalar kinds
// parse directly; everything else reads the tag as a JSON literal and leaves
// normalization to Build.
func parseDefaultTag(raw string, ad FieldAdapter) (any, error) {
	switch ad.kind {
	case "string":
		return raw, nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "int":
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return i, nil
	case "int64":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return i, nil
	case "float64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "duration":
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "time":
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		return ts, nil
	default:
		dec := gojson.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
