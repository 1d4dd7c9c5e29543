package dsl

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/i18n"
	js "github.com/keystone-go/keystone/jsonschema"
	"github.com/mohae/deepcopy"
)

// Bind attaches a struct type T to an untyped record definition. Every
// record field must map to an exported struct field (by keystone/json tag or
// name) with a compatible type, and every tagged struct field must map back
// to a record field. Mismatches are definition issues, reported here and
// never at decode time.
func Bind[T any](b *recordBuilder) (keystone.Record[T], error) {
	inner, err := b.build()
	if err != nil {
		return nil, err
	}
	s, err := newTypedRecordSchema[T](inner)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MustBind is Bind that panics on definition issues.
func MustBind[T any](b *recordBuilder) keystone.Record[T] {
	s, err := Bind[T](b)
	if err != nil {
		panic(fmt.Sprintf("keystone: invalid record binding: %v", err))
	}
	return s
}

// RecordOf starts a record definition that binds to struct type T. It is the
// typed twin of Record: the same chain, ending in Bind or MustBind without a
// type argument.
func RecordOf[T any]() *typedRecordBuilder[T] {
	return &typedRecordBuilder[T]{inner: Record()}
}

// typedRecordBuilder mirrors recordBuilder with T fixed, so the terminal
// Bind needs no explicit instantiation.
type typedRecordBuilder[T any] struct {
	inner *recordBuilder
}

func (b *typedRecordBuilder[T]) Field(name string, ad FieldAdapter) *typedFieldStep[T] {
	return &typedFieldStep[T]{b: b, step: b.inner.Field(name, ad)}
}

func (b *typedRecordBuilder[T]) Derive(caps ...keystone.Capability) *typedRecordBuilder[T] {
	b.inner.Derive(caps...)
	return b
}

func (b *typedRecordBuilder[T]) Named(name string) *typedRecordBuilder[T] {
	b.inner.Named(name)
	return b
}

func (b *typedRecordBuilder[T]) UnknownStrict() *typedRecordBuilder[T] {
	b.inner.UnknownStrict()
	return b
}

func (b *typedRecordBuilder[T]) UnknownStrip() *typedRecordBuilder[T] {
	b.inner.UnknownStrip()
	return b
}

func (b *typedRecordBuilder[T]) Bind() (keystone.Record[T], error) { return Bind[T](b.inner) }

func (b *typedRecordBuilder[T]) MustBind() keystone.Record[T] { return MustBind[T](b.inner) }

type typedFieldStep[T any] struct {
	b    *typedRecordBuilder[T]
	step *fieldStep
}

func (s *typedFieldStep[T]) Default(v any) *typedRecordBuilder[T] {
	s.step.Default(v)
	return s.b
}

func (s *typedFieldStep[T]) DefaultFunc(fn func() any) *typedRecordBuilder[T] {
	s.step.DefaultFunc(fn)
	return s.b
}

func (s *typedFieldStep[T]) Doc(doc string) *typedFieldStep[T] {
	s.step.Doc(doc)
	return s
}

func (s *typedFieldStep[T]) Field(name string, ad FieldAdapter) *typedFieldStep[T] {
	return s.b.Field(name, ad)
}

func (s *typedFieldStep[T]) Derive(caps ...keystone.Capability) *typedRecordBuilder[T] {
	return s.b.Derive(caps...)
}

func (s *typedFieldStep[T]) Named(name string) *typedRecordBuilder[T] { return s.b.Named(name) }

func (s *typedFieldStep[T]) UnknownStrict() *typedRecordBuilder[T] { return s.b.UnknownStrict() }

func (s *typedFieldStep[T]) UnknownStrip() *typedRecordBuilder[T] { return s.b.UnknownStrip() }

func (s *typedFieldStep[T]) Bind() (keystone.Record[T], error) { return s.b.Bind() }

func (s *typedFieldStep[T]) MustBind() keystone.Record[T] { return s.b.MustBind() }

// typedRecordSchema wraps the untyped core and moves values between
// map[string]any and T by reflection. fieldByKey maps wire names to struct
// field indices, resolved once at bind time.
type typedRecordSchema[T any] struct {
	inner      *recordSchema
	t          reflect.Type
	fieldByKey map[string]int
}

func newTypedRecordSchema[T any](inner *recordSchema) (*typedRecordSchema[T], error) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	if t.Kind() == reflect.Pointer {
		return nil, keystone.Issues{keystone.Issue{
			Path:    "/",
			Code:    keystone.CodeInvalidType,
			Message: i18n.T(keystone.CodeInvalidType, nil),
			Hint:    "bind to the struct type, not a pointer",
		}}
	}
	if t.Kind() != reflect.Struct {
		return nil, keystone.Issues{keystone.Issue{
			Path:    "/",
			Code:    keystone.CodeInvalidType,
			Message: i18n.T(keystone.CodeInvalidType, nil),
			Hint:    fmt.Sprintf("bind target must be a struct, got %s", t.Kind()),
		}}
	}

	byKey := map[string]int{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := keystone.ResolveStructKey(sf)
		if key == "" || key == "-" {
			continue
		}
		byKey[key] = i
	}

	var issues keystone.Issues
	for _, f := range inner.fields {
		i, ok := byKey[f.name]
		if !ok {
			issues = keystone.AppendIssues(issues, keystone.Issue{
				Path:    "/" + f.name,
				Code:    keystone.CodeUnboundField,
				Message: i18n.T(keystone.CodeUnboundField, nil),
				Hint:    fmt.Sprintf("no field of %s maps to %q", t, f.name),
			})
			continue
		}
		sf := t.Field(i)
		if !typeFits(f.ad.GoType(), sf.Type) {
			issues = keystone.AppendIssues(issues, keystone.Issue{
				Path:    "/" + f.name,
				Code:    keystone.CodeInvalidType,
				Message: i18n.T(keystone.CodeInvalidType, nil),
				Hint:    fmt.Sprintf("field %q decodes %s but %s.%s is %s", f.name, f.ad.GoType(), t.Name(), sf.Name, sf.Type),
			})
		}
	}
	extra := make([]string, 0, len(byKey))
	for key := range byKey {
		if _, ok := inner.index[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		issues = keystone.AppendIssues(issues, keystone.Issue{
			Path:    "/" + key,
			Code:    keystone.CodeUnboundField,
			Message: i18n.T(keystone.CodeUnboundField, nil),
			Hint:    fmt.Sprintf("%s.%s has no record field", t.Name(), t.Field(byKey[key]).Name),
		})
	}
	if issues != nil {
		return nil, issues
	}
	return &typedRecordSchema[T]{inner: inner, t: t, fieldByKey: byKey}, nil
}

// typeFits accepts assignable types plus conversions that keep the kind,
// which admits named types like `type Port int`.
func typeFits(from, to reflect.Type) bool {
	if from.AssignableTo(to) {
		return true
	}
	return from.ConvertibleTo(to) && from.Kind() == to.Kind()
}

var _ keystone.Record[struct{}] = (*typedRecordSchema[struct{}])(nil)

func (s *typedRecordSchema[T]) New() T {
	return s.fromMap(s.inner.New())
}

func (s *typedRecordSchema[T]) Decode(ctx context.Context, v any) (T, error) {
	var zero T
	m, err := s.inner.Decode(ctx, v)
	if err != nil {
		return zero, err
	}
	return s.fromMap(m), nil
}

func (s *typedRecordSchema[T]) DecodeWithMeta(ctx context.Context, v any) (keystone.Decoded[T], error) {
	dm, err := s.inner.DecodeWithMeta(ctx, v)
	if err != nil {
		return keystone.Decoded[T]{Meta: dm.Meta}, err
	}
	return keystone.Decoded[T]{Value: s.fromMap(dm.Value), Meta: dm.Meta}, nil
}

func (s *typedRecordSchema[T]) Encode(v T) map[string]any {
	return s.inner.Encode(s.toMap(v))
}

func (s *typedRecordSchema[T]) Fields() []keystone.Field { return s.inner.Fields() }

// Provider converts each produced value to the bound struct field type, so a
// named field type receives values of its own type.
func (s *typedRecordSchema[T]) Provider(name string) (func() any, error) {
	p, err := s.inner.Provider(name)
	if err != nil {
		return nil, err
	}
	ft := s.t.Field(s.fieldByKey[name]).Type
	return func() any {
		return reflect.ValueOf(p()).Convert(ft).Interface()
	}, nil
}

func (s *typedRecordSchema[T]) Default(name string) (any, error) {
	p, err := s.Provider(name)
	if err != nil {
		return nil, err
	}
	return p(), nil
}

func (s *typedRecordSchema[T]) Has(c keystone.Capability) bool { return s.inner.Has(c) }

func (s *typedRecordSchema[T]) Equal(a, b T) bool {
	s.inner.requireCap("Equal", keystone.CapEquality)
	return reflect.DeepEqual(a, b)
}

func (s *typedRecordSchema[T]) Clone(v T) T {
	s.inner.requireCap("Clone", keystone.CapCloning)
	return deepcopy.Copy(v).(T)
}

func (s *typedRecordSchema[T]) Compare(a, b T) int {
	s.inner.requireCap("Compare", keystone.CapOrdering)
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	for _, f := range s.inner.fields {
		i := s.fieldByKey[f.name]
		fa := s.fieldAsAdapterValue(av.Field(i), f)
		fb := s.fieldAsAdapterValue(bv.Field(i), f)
		if c := f.ad.compare(fa, fb); c != 0 {
			return c
		}
	}
	return 0
}

func (s *typedRecordSchema[T]) Format(v T) string {
	s.inner.requireCap("Format", keystone.CapFormatting)
	name := s.inner.name
	if name == "" {
		name = s.t.Name()
	}
	return s.inner.formatWith(name, s.toMap(v))
}

func (s *typedRecordSchema[T]) JSONSchema() (*js.Schema, error) {
	sch, err := s.inner.JSONSchema()
	if err != nil {
		return nil, err
	}
	if sch.Title == "" {
		sch.Title = s.t.Name()
	}
	return sch, nil
}

func (s *typedRecordSchema[T]) fromMap(m map[string]any) T {
	rv := reflect.New(s.t).Elem()
	for _, f := range s.inner.fields {
		i := s.fieldByKey[f.name]
		fv, ok := m[f.name]
		if !ok || fv == nil {
			continue
		}
		val := reflect.ValueOf(fv)
		field := rv.Field(i)
		if val.Type().AssignableTo(field.Type()) {
			field.Set(val)
		} else {
			field.Set(val.Convert(field.Type()))
		}
	}
	return rv.Interface().(T)
}

func (s *typedRecordSchema[T]) toMap(v T) map[string]any {
	rv := reflect.ValueOf(v)
	out := make(map[string]any, len(s.inner.fields))
	for _, f := range s.inner.fields {
		i := s.fieldByKey[f.name]
		out[f.name] = s.fieldAsAdapterValue(rv.Field(i), f)
	}
	return out
}

// fieldAsAdapterValue converts a struct field back to the adapter's Go type
// so adapter compare and encode see the values they were built for.
func (s *typedRecordSchema[T]) fieldAsAdapterValue(fv reflect.Value, f *fieldDef) any {
	gt := f.ad.GoType()
	if fv.Type() == gt {
		return fv.Interface()
	}
	if fv.Type().ConvertibleTo(gt) {
		return fv.Convert(gt).Interface()
	}
	return fv.Interface()
}
