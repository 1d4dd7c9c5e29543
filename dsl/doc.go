// Package dsl provides the record definition DSL for keystone.
//
// Overview
//   - Builder API: declare a defaulted record with Record()/Field()/Default()/Derive()/MustBuild().
//   - Typed build: bind the definition to a struct T with RecordOf[T]().Field(...).MustBind(), or Bind[T](b).
//   - Inference: Infer[T]() derives the whole definition from struct tags (`default:"..."`, `doc:"..."`).
//   - Field kinds: String()/Bool()/Int()/Int64()/Float64()/Duration()/TimeRFC3339(), plus Of[T]() for slices, maps and nested structs.
//   - Defaults: every field carries one; New() evaluates providers freshly so instances never alias collection defaults.
//   - Capabilities: Derive(keystone.CapEquality, ...) attaches Equal/Clone/Compare/Format exactly as requested.
//   - Presence: DecodeWithMeta reports seen/wasNull/defaultApplied per field as a JSON Pointer-based map.
//
// Entry points
//   - Record(): create a record builder; chain Field/Default/Derive/Unknown* then MustBuild()/Build.
//   - RecordOf[T](): typed builder; at the end call MustBind()/Bind to construct Record[T].
//   - Infer[T](caps...): tag-driven definition; cached per (type, capability set).
//   - Field adapters: String()/Bool()/Int()/... passed into Field; Of[T]() adapts arbitrary Go types.
//
// File layout (roles)
//   - fields.go: FieldAdapter and the kind constructors (decode/encode/compare/JSON Schema per kind).
//   - builder.go: recordBuilder/fieldStep, definition-time validation in build().
//   - record_core.go: recordSchema over map[string]any (New/Decode/Encode/capability methods).
//   - bind.go: struct binding (Bind/RecordOf, two-way field validation, reflection moves).
//   - infer.go: struct-tag inference with a process-wide cache.
//
// Table of contents
//  1. Quickstart (minimal example)
//  2. Builder API (Record/Field/Default/DefaultFunc/Derive/Unknown*)
//  3. Typed binding (RecordOf[T]/Bind/MustBind)
//  4. Inference (Infer[T] and tags)
//  5. Defaults and providers (fresh evaluation, Provider/Default access)
//  6. Capabilities (Equal/Clone/Compare/Format, attach via Derive)
//  7. Error model (definition issues at Build, decode issues as keystone.Issues)
//
// Example (quickstart)
//
//	package main
//
//	import (
//	    "context"
//
//	    keystone "github.com/keystone-go/keystone"
//	    k "github.com/keystone-go/keystone/dsl"
//	)
//
//	type Settings struct {
//	    Thing int  `json:"thing"`
//	    Foo   bool `json:"foo"`
//	}
//
//	func main() {
//	    ctx := context.Background()
//	    settings := k.RecordOf[Settings]().
//	        Field("thing", k.Int()).Default(1).
//	        Field("foo", k.Bool()).Default(false).
//	        Derive(keystone.CapEquality).
//	        MustBind()
//
//	    // New: the all-defaults instance.
//	    def := settings.New() // Settings{Thing: 1, Foo: false}
//
//	    // DecodeFrom: wire(JSON) -> Settings; missing fields take defaults.
//	    got, _ := keystone.DecodeFrom(ctx, settings, keystone.JSONBytes([]byte(`{"thing":7}`)))
//	    _ = settings.Equal(def, got) // false: Thing differs
//	}
//
// Example (fresh collection defaults)
//
//	rec := k.Record().
//	    Field("tags", k.Of[[]string]()).Default([]string{"new"}).
//	    MustBuild()
//	a, b := rec.New(), rec.New()
//	a["tags"].([]string)[0] = "changed"
//	// b["tags"] still holds ["new"]; defaults never alias.
//
// Example (provider fallback during schema evolution)
//
//	// A reader that gained a "retries" field can fill old payloads:
//	p, _ := rec.Provider("retries")
//	v := p() // fresh default, same value Decode would have used
//	_ = v
//
// Example (inference)
//
//	type Job struct {
//	    Name     string        `json:"name" default:"job"`
//	    Timeout  time.Duration `json:"timeout" default:"30s"`
//	    Replicas int           `json:"replicas" default:"3" doc:"desired copies"`
//	}
//	job := k.MustInfer[Job](keystone.CapEquality, keystone.CapCloning)
//	_ = job.New()
//
// JSON Schema output hints
//
//	// Obtain JSON Schema from any Record
//	sch, _ := rec.JSONSchema()
//	// Every field is optional (all defaulted), defaults surface as "default".
//	// Note: UnknownStrict => additionalProperties=false,
//	//       UnknownStrip  => additionalProperties=true
package dsl
