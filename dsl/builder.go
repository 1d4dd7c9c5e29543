package dsl

import (
	"fmt"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/i18n"
	"github.com/mohae/deepcopy"
)

// fieldDef is one declared field. provider is resolved during build and
// returns a fresh default value on every call.
type fieldDef struct {
	name     string
	ad       FieldAdapter
	doc      string
	defValue any
	defFn    func() any
	hasValue bool
	hasFn    bool
	provider func() any
}

type recordBuilder struct {
	fields        []*fieldDef
	index         map[string]int
	name          string
	caps          keystone.Capability
	unknownPolicy keystone.UnknownPolicy
	defIssues     keystone.Issues
}

// Record starts a record definition. Declare fields with Field, give each one
// a Default or DefaultFunc, then call Build (or MustBuild) to obtain a
// keystone.Record over map[string]any. Definition problems such as duplicate
// field names or defaults that do not fit their field kind are collected and
// reported by Build, never at decode time.
func Record() *recordBuilder {
	return &recordBuilder{
		index:         map[string]int{},
		unknownPolicy: keystone.UnknownStrict,
	}
}

// Field declares a field with the given wire name and adapter. Redeclaring a
// name is recorded as a duplicate_field issue and reported by Build.
func (b *recordBuilder) Field(name string, ad FieldAdapter) *fieldStep {
	if _, exists := b.index[name]; exists {
		b.defIssues = keystone.AppendIssues(b.defIssues, keystone.Issue{
			Path:    "/" + name,
			Code:    keystone.CodeDuplicateField,
			Message: i18n.T(keystone.CodeDuplicateField, nil),
			Hint:    fmt.Sprintf("field %q is already declared", name),
		})
		// Detached step: the chained Default lands nowhere.
		return &fieldStep{b: b, f: &fieldDef{name: name, ad: ad}}
	}
	f := &fieldDef{name: name, ad: ad}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, f)
	return &fieldStep{b: b, f: f}
}

// Derive requests capabilities for the record. Unrecognized capability bits
// are recorded and reported by Build.
func (b *recordBuilder) Derive(caps ...keystone.Capability) *recordBuilder {
	for _, c := range caps {
		if !c.Known() {
			b.defIssues = keystone.AppendIssues(b.defIssues, keystone.Issue{
				Path:    "/",
				Code:    keystone.CodeUnknownCapability,
				Message: i18n.T(keystone.CodeUnknownCapability, nil),
				Hint:    fmt.Sprintf("capability bits 0x%x are not recognized", uint8(c)),
			})
			continue
		}
		b.caps |= c
	}
	return b
}

// Named sets the record name used by Format and the JSON Schema title.
func (b *recordBuilder) Named(name string) *recordBuilder {
	b.name = name
	return b
}

// UnknownStrict makes Decode report unknown keys as issues. This is the
// default.
func (b *recordBuilder) UnknownStrict() *recordBuilder {
	b.unknownPolicy = keystone.UnknownStrict
	return b
}

// UnknownStrip makes Decode drop unknown keys silently.
func (b *recordBuilder) UnknownStrip() *recordBuilder {
	b.unknownPolicy = keystone.UnknownStrip
	return b
}

// Build validates the definition and returns the record. All definition
// problems are reported together as keystone.Issues.
func (b *recordBuilder) Build() (keystone.Record[map[string]any], error) {
	rs, err := b.build()
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// MustBuild is Build that panics on definition issues. Intended for
// package-level record variables.
func (b *recordBuilder) MustBuild() keystone.Record[map[string]any] {
	rs, err := b.build()
	if err != nil {
		panic(fmt.Sprintf("keystone: invalid record definition: %v", err))
	}
	return rs
}

func (b *recordBuilder) build() (*recordSchema, error) {
	var issues keystone.Issues
	issues = append(issues, b.defIssues...)

	if len(b.fields) == 0 {
		issues = keystone.AppendIssues(issues, keystone.Issue{
			Path:    "/",
			Code:    keystone.CodeEmptyRecord,
			Message: i18n.T(keystone.CodeEmptyRecord, nil),
			Hint:    "declare at least one field before Build",
		})
	}

	for _, f := range b.fields {
		switch {
		case f.hasValue:
			norm, err := f.ad.decode(f.defValue)
			if err != nil {
				issues = keystone.AppendIssues(issues, defaultMismatch(f.name, f.ad, f.defValue, err))
				continue
			}
			f.provider = freshValueProvider(norm)
		case f.hasFn:
			probe := f.defFn()
			if _, err := f.ad.decode(probe); err != nil {
				issues = keystone.AppendIssues(issues, defaultMismatch(f.name, f.ad, probe, err))
				continue
			}
			f.provider = decodingProvider(f.name, f.ad, f.defFn)
		default:
			issues = keystone.AppendIssues(issues, keystone.Issue{
				Path:    "/" + f.name,
				Code:    keystone.CodeMissingDefault,
				Message: i18n.T(keystone.CodeMissingDefault, nil),
				Hint:    "every field needs Default or DefaultFunc",
			})
		}
	}

	if b.caps&keystone.CapOrdering != 0 {
		for _, f := range b.fields {
			if !f.ad.orderable {
				issues = keystone.AppendIssues(issues, keystone.Issue{
					Path:    "/" + f.name,
					Code:    keystone.CodeNotOrderable,
					Message: i18n.T(keystone.CodeNotOrderable, nil),
					Hint:    f.ad.kind + " cannot derive ordering",
				})
			}
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}

	fields := make([]*fieldDef, len(b.fields))
	copy(fields, b.fields)
	index := make(map[string]int, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	return &recordSchema{
		name:          b.name,
		fields:        fields,
		index:         index,
		caps:          b.caps,
		unknownPolicy: b.unknownPolicy,
	}, nil
}

// freshValueProvider deep-copies the normalized literal so callers never
// share slices or maps with the definition or with each other.
func freshValueProvider(norm any) func() any {
	return func() any { return deepcopy.Copy(norm) }
}

// decodingProvider re-runs the user fn per call and normalizes its result.
// The fn was probed once during build; a later mismatch means a non-pure fn.
func decodingProvider(name string, ad FieldAdapter, fn func() any) func() any {
	return func() any {
		v, err := ad.decode(fn())
		if err != nil {
			panic(fmt.Sprintf("keystone: default provider for %q produced a mismatched value: %v", name, err))
		}
		return v
	}
}

func defaultMismatch(name string, ad FieldAdapter, got any, err error) keystone.Issue {
	hint := fmt.Sprintf("default for %q does not fit kind %s (got %T)", name, ad.kind, got)
	if sub, ok := keystone.AsIssues(err); ok && len(sub) > 0 && sub[0].Hint != "" {
		hint += ": " + sub[0].Hint
	}
	return keystone.Issue{
		Path:    "/" + name,
		Code:    keystone.CodeDefaultMismatch,
		Message: i18n.T(keystone.CodeDefaultMismatch, nil),
		Hint:    hint,
		Cause:   err,
	}
}

// fieldStep scopes Default and Doc to the field just declared while keeping
// every builder method reachable, so definitions chain without temporaries.
type fieldStep struct {
	b *recordBuilder
	f *fieldDef
}

// Default sets the field's default to a literal value. The value is
// normalized through the field adapter at Build; a value the adapter rejects
// becomes a default_mismatch issue. Calling Default again replaces the
// previous default.
func (s *fieldStep) Default(v any) *recordBuilder {
	s.f.defValue = v
	s.f.hasValue = true
	s.f.hasFn = false
	s.f.defFn = nil
	return s.b
}

// DefaultFunc sets a function evaluated freshly for every default instance.
// Build probes it once to validate the produced type.
func (s *fieldStep) DefaultFunc(fn func() any) *recordBuilder {
	if fn == nil {
		return s.b
	}
	s.f.defFn = fn
	s.f.hasFn = true
	s.f.hasValue = false
	s.f.defValue = nil
	return s.b
}

// Doc attaches a human-readable note, surfaced by Fields and the JSON Schema
// description. Chain it before Default.
func (s *fieldStep) Doc(doc string) *fieldStep {
	s.f.doc = doc
	return s
}

func (s *fieldStep) Field(name string, ad FieldAdapter) *fieldStep {
	return s.b.Field(name, ad)
}

func (s *fieldStep) Derive(caps ...keystone.Capability) *recordBuilder {
	return s.b.Derive(caps...)
}

func (s *fieldStep) Named(name string) *recordBuilder { return s.b.Named(name) }

func (s *fieldStep) UnknownStrict() *recordBuilder { return s.b.UnknownStrict() }

func (s *fieldStep) UnknownStrip() *recordBuilder { return s.b.UnknownStrip() }

func (s *fieldStep) Build() (keystone.Record[map[string]any], error) { return s.b.Build() }

func (s *fieldStep) MustBuild() keystone.Record[map[string]any] { return s.b.MustBuild() }
