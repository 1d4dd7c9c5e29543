package keystone

import "reflect"

// FieldToken identifies a top-level struct field of T using the record key name.
// Obtain it via FieldOf to ensure compile-time linkage to the struct field.
// It intentionally supports only top-level fields of T.
type FieldToken[T any] struct {
	key string
}

// Key returns the record key name associated with this field token.
func (t FieldToken[T]) Key() string { return t.key }

// FieldNameOf returns the record key name for a top-level field of S selected by selector.
// Example: FieldNameOf[Settings](func(s *Settings) *int { return &s.Thing }) -> "thing".
func FieldNameOf[S any, F any](selector func(*S) *F) string {
	if selector == nil {
		panic("keystone.FieldNameOf: selector must not be nil")
	}
	var zero S
	fp := reflect.ValueOf(selector(&zero)).Pointer()
	rv := reflect.ValueOf(&zero).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.CanAddr() && fv.Addr().Pointer() == fp {
			name := ResolveStructKey(sf)
			if name == "" || name == "-" {
				panic("keystone.FieldNameOf: selected field is not exported or disabled")
			}
			return name
		}
	}
	panic("keystone.FieldNameOf: selector must return address of a top-level field")
}

// FieldOf builds a FieldToken for a top-level field of T.
// The selector must return the address of a top-level field, e.g.:
//
//	FieldOf[Settings](func(s *Settings) *bool { return &s.Foo })
//
// This guarantees compile-time errors if the field is renamed/removed.
func FieldOf[T any, F any](selector func(*T) *F) FieldToken[T] {
	if selector == nil {
		panic("keystone.FieldOf: selector must not be nil")
	}
	var zero T
	// Get pointer to selected field within zero value of T
	fp := reflect.ValueOf(selector(&zero)).Pointer()

	rv := reflect.ValueOf(&zero).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		fv := rv.Field(i)
		if !fv.CanAddr() {
			continue
		}
		if fv.Addr().Pointer() == fp {
			name := ResolveStructKey(rt.Field(i))
			if name == "" || name == "-" {
				panic("keystone.FieldOf: selected field is not exported or disabled")
			}
			return FieldToken[T]{key: name}
		}
	}
	panic("keystone.FieldOf: selector must return address of a top-level field of T")
}

// Seen reports whether the given field was present in input.
func (d Decoded[T]) Seen(field FieldToken[T]) bool {
	if d.Meta == nil {
		return false
	}
	return d.Meta["/"+field.key]&MetaSeen != 0
}

// WasNull reports whether the given field was explicitly null in input.
func (d Decoded[T]) WasNull(field FieldToken[T]) bool {
	if d.Meta == nil {
		return false
	}
	return d.Meta["/"+field.key]&MetaWasNull != 0
}

// DefaultApplied reports whether the given field value was materialized from
// its default provider.
func (d Decoded[T]) DefaultApplied(field FieldToken[T]) bool {
	if d.Meta == nil {
		return false
	}
	return d.Meta["/"+field.key]&MetaDefaultApplied != 0
}

// AnySeen reports whether any of the given fields were present.
func (d Decoded[T]) AnySeen(fields ...FieldToken[T]) bool {
	for _, f := range fields {
		if d.Seen(f) {
			return true
		}
	}
	return false
}
