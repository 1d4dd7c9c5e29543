package dsl

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/i18n"
	js "github.com/keystone-go/keystone/jsonschema"
	"github.com/mohae/deepcopy"
)

// recordSchema is the untyped record produced by Build. Instances are
// map[string]any keyed by wire name, holding adapter-normalized values.
type recordSchema struct {
	name          string
	fields        []*fieldDef
	index         map[string]int
	caps          keystone.Capability
	unknownPolicy keystone.UnknownPolicy
}

var _ keystone.Record[map[string]any] = (*recordSchema)(nil)

// New builds the all-defaults instance. Providers run freshly on every call,
// so two instances never share collection values.
func (s *recordSchema) New() map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		out[f.name] = f.provider()
	}
	return out
}

func (s *recordSchema) Decode(ctx context.Context, v any) (map[string]any, error) {
	out, _, issues := s.decodeInto(ctx, v)
	if issues != nil {
		return nil, issues
	}
	return out, nil
}

func (s *recordSchema) DecodeWithMeta(ctx context.Context, v any) (keystone.Decoded[map[string]any], error) {
	out, meta, issues := s.decodeInto(ctx, v)
	if issues != nil {
		return keystone.Decoded[map[string]any]{Meta: meta}, issues
	}
	return keystone.Decoded[map[string]any]{Value: out, Meta: meta}, nil
}

// decodeInto walks declared fields in declaration order, then unknown keys in
// sorted order so issue lists are deterministic. A missing field takes its
// provider value; an explicit null is rejected so that "use the default" is
// always spelled by omitting the field.
func (s *recordSchema) decodeInto(ctx context.Context, v any) (map[string]any, keystone.MetaMap, keystone.Issues) {
	meta := keystone.MetaMap{"/": keystone.MetaSeen}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, meta, keystone.Issues{keystone.Issue{
			Path:    "/",
			Code:    keystone.CodeInvalidType,
			Message: i18n.T(keystone.CodeInvalidType, nil),
			Hint:    fmt.Sprintf("expected object, got %T", v),
		}}
	}
	failFast := keystone.IsFailFast(ctx)
	out := make(map[string]any, len(s.fields))
	var issues keystone.Issues
	for _, f := range s.fields {
		path := "/" + f.name
		raw, present := m[f.name]
		if !present {
			out[f.name] = f.provider()
			meta[path] = keystone.MetaDefaultApplied
			continue
		}
		if raw == nil {
			meta[path] = keystone.MetaSeen | keystone.MetaWasNull
			issues = keystone.AppendIssues(issues, keystone.Issue{
				Path:    path,
				Code:    keystone.CodeInvalidType,
				Message: i18n.T(keystone.CodeInvalidType, nil),
				Hint:    "null is not allowed; omit the field to use its default",
			})
			if failFast {
				return nil, meta, issues
			}
			continue
		}
		meta[path] = keystone.MetaSeen
		dv, err := f.ad.decode(raw)
		if err != nil {
			issues = append(issues, keystone.RebaseIssues(path, err)...)
			if failFast {
				return nil, meta, issues
			}
			continue
		}
		out[f.name] = dv
	}
	var unknown []string
	for k := range m {
		if _, known := s.index[k]; !known {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 && s.unknownPolicy == keystone.UnknownStrict {
		sort.Strings(unknown)
		for _, k := range unknown {
			issues = keystone.AppendIssues(issues, keystone.Issue{
				Path:    "/" + k,
				Code:    keystone.CodeUnknownKey,
				Message: i18n.T(keystone.CodeUnknownKey, nil),
			})
			if failFast {
				return nil, meta, issues
			}
		}
	}
	if len(issues) > 0 {
		return nil, meta, issues
	}
	return out, meta, nil
}

// Encode projects an instance back to wire shape. Declared fields only;
// missing keys fall back to the field default.
func (s *recordSchema) Encode(v map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		out[f.name] = f.ad.encodeValue(s.fieldOrDefault(v, f))
	}
	return out
}

func (s *recordSchema) Fields() []keystone.Field {
	out := make([]keystone.Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = keystone.Field{Name: f.name, Kind: f.ad.kind, Doc: f.doc}
	}
	return out
}

// Provider returns the standalone default provider for one field. Each call
// of the returned func yields a fresh value.
func (s *recordSchema) Provider(name string) (func() any, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, keystone.Issues{keystone.Issue{
			Path:    "/" + name,
			Code:    keystone.CodeUnknownField,
			Message: i18n.T(keystone.CodeUnknownField, nil),
			Hint:    fmt.Sprintf("record has no field %q", name),
		}}
	}
	return s.fields[i].provider, nil
}

func (s *recordSchema) Default(name string) (any, error) {
	p, err := s.Provider(name)
	if err != nil {
		return nil, err
	}
	return p(), nil
}

func (s *recordSchema) Has(c keystone.Capability) bool {
	return c != 0 && s.caps&c == c
}

func (s *recordSchema) requireCap(method string, c keystone.Capability) {
	if !s.Has(c) {
		panic("keystone: " + method + " requires the " + c.String() + " capability; request it with Derive")
	}
}

// Equal compares declared fields only, treating a missing key as the field
// default. Requires CapEquality.
func (s *recordSchema) Equal(a, b map[string]any) bool {
	s.requireCap("Equal", keystone.CapEquality)
	for _, f := range s.fields {
		if !reflect.DeepEqual(s.fieldOrDefault(a, f), s.fieldOrDefault(b, f)) {
			return false
		}
	}
	return true
}

// Clone deep-copies the instance. Requires CapCloning.
func (s *recordSchema) Clone(v map[string]any) map[string]any {
	s.requireCap("Clone", keystone.CapCloning)
	if v == nil {
		return nil
	}
	return deepcopy.Copy(v).(map[string]any)
}

// Compare orders instances field by field in declaration order. Requires
// CapOrdering, which Build grants only when every field kind is orderable.
// Values must come from New, Decode or Clone so the adapter assertions hold.
func (s *recordSchema) Compare(a, b map[string]any) int {
	s.requireCap("Compare", keystone.CapOrdering)
	for _, f := range s.fields {
		if c := f.ad.compare(s.fieldOrDefault(a, f), s.fieldOrDefault(b, f)); c != 0 {
			return c
		}
	}
	return 0
}

// Format renders "Name{field: value, ...}" in declaration order. Requires
// CapFormatting.
func (s *recordSchema) Format(v map[string]any) string {
	s.requireCap("Format", keystone.CapFormatting)
	return s.formatWith(s.name, v)
}

func (s *recordSchema) formatWith(name string, v map[string]any) string {
	if name == "" {
		name = "Record"
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.name)
		sb.WriteString(": ")
		fv := s.fieldOrDefault(v, f)
		if sv, ok := fv.(string); ok {
			fmt.Fprintf(&sb, "%q", sv)
		} else {
			fmt.Fprintf(&sb, "%v", fv)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// JSONSchema emits an object schema. No field is required because every
// field defaults; additionalProperties mirrors the unknown-key policy.
func (s *recordSchema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.fields))
	for _, f := range s.fields {
		node := &js.Schema{}
		if f.ad.jsonSchema != nil {
			n, err := f.ad.jsonSchema()
			if err != nil {
				return nil, err
			}
			node = n
		}
		if f.doc != "" {
			node.Description = f.doc
		}
		if f.hasValue {
			node.Default = f.ad.encodeValue(f.provider())
		}
		props[f.name] = node
	}
	return &js.Schema{
		Type:                 "object",
		Title:                s.name,
		Properties:           props,
		AdditionalProperties: s.unknownPolicy == keystone.UnknownStrip,
	}, nil
}

func (s *recordSchema) fieldOrDefault(m map[string]any, f *fieldDef) any {
	if m != nil {
		if fv, ok := m[f.name]; ok {
			return fv
		}
	}
	return f.provider()
}
