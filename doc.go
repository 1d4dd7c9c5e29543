package keystone

// Package keystone provides:
//
// - Declarative record schemas with a per-field default expression (dsl package)
// - An all-defaults constructor and standalone per-field default providers
// - Decode-time fallback: fields missing from serialized input materialize from their defaults
// - Opt-in structural capabilities (equality, ordering, cloning, formatting) attached per record
// - A stable error model via Issues (JSON Pointer, code, message) raised at definition time
//
// Design policy:
// - Keep only public APIs in the root package; builders live under dsl/, codecs under codec/.
// - Schemas are fixed at definition time; generated records are plain values with no shared state.
// - Every field carries a default. Construction cannot fail once a record type builds.
//
// Typical usage:
//
//	rec := dsl.RecordOf[Settings]().
//		Field("thing", dsl.Int()).Default(1).
//		Field("foo", dsl.Bool()).Default(false).
//		Derive(keystone.CapEquality).
//		MustBind()
//
//	s := rec.New()                                       // all defaults, freshly evaluated
//	v, err := keystone.DecodeFrom(ctx, rec, keystone.JSONBytes(data))
//	dv, err := keystone.DecodeFromWithMeta(ctx, rec, keystone.JSONBytes(data))
