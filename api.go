package keystone

import (
	"context"
	"errors"
	"fmt"

	js "github.com/keystone-go/keystone/jsonschema"
)

// Field describes one declared record field as callers observe it.
type Field struct {
	Name string // External key used on the wire and in MetaMap paths.
	Kind string // Kind name such as "int", "bool", "string", "of".
	Doc  string // Optional description carried into JSON Schema output.
}

// Record surfaces the behavior attached to a defaulted record definition:
// construction of all-defaults values, decode with provider fallback, the
// standalone per-field providers, and whichever capabilities were derived.
type Record[T any] interface {
	// New returns a fresh all-defaults value. Every call re-evaluates the
	// defaults, so collection-typed fields never alias between instances.
	New() T

	// Decode transforms an unknown input (map[string]any as produced by the
	// wire codecs) into T, filling absent fields from their default providers.
	Decode(ctx context.Context, v any) (T, error)
	// DecodeWithMeta returns the typed value together with field metadata
	// recording which fields were seen, null, or defaulted.
	DecodeWithMeta(ctx context.Context, v any) (Decoded[T], error)
	// Encode projects v into a wire-shaped map holding only declared fields,
	// with durations and timestamps rendered as strings. The codecs marshal
	// this map.
	Encode(v T) map[string]any

	// Fields lists the declared fields in declaration order.
	Fields() []Field
	// Provider returns the standalone zero-argument default provider for the
	// named field. The provider re-evaluates on every call.
	Provider(name string) (func() any, error)
	// Default evaluates the named field's default once and returns it.
	Default(name string) (any, error)

	// Has reports whether the capability was derived at definition time.
	Has(c Capability) bool
	// Equal reports structural equality of two values.
	// It panics unless CapEquality was derived.
	Equal(a, b T) bool
	// Clone produces an independent deep copy of v.
	// It panics unless CapCloning was derived.
	Clone(v T) T
	// Compare orders two values field by field in declaration order, returning
	// -1, 0 or +1. It panics unless CapOrdering was derived.
	Compare(a, b T) int
	// Format renders a stable single-line debug representation of v.
	// It panics unless CapFormatting was derived.
	Format(v T) string

	// JSONSchema projects the record into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// Codec binds a Record to a concrete wire format. Implementations live in the
// codec subpackage (JSON, YAML).
type Codec[T any] interface {
	Decode(ctx context.Context, data []byte) (T, error)
	DecodeWithMeta(ctx context.Context, data []byte) (Decoded[T], error)
	Encode(ctx context.Context, v T) ([]byte, error)
	// EncodePreserving emits only the fields that were actually seen in the
	// input, letting decoders on the other side re-apply their own defaults.
	EncodePreserving(ctx context.Context, d Decoded[T]) ([]byte, error)
}

// EncodeMode exposes canonical vs preserving output intent at call sites.
// For non-WithMeta values, Preserving is not applicable and callers must supply metadata via Decoded.
type EncodeMode int

const (
	EncodeCanonical EncodeMode = iota
	EncodePreserve
)

// ErrEncodePreserveRequiresMeta indicates EncodePreserve was requested without field metadata.
// Callers should use EncodeWithDecoded when preserving semantics are required.
var ErrEncodePreserveRequiresMeta = errors.New("keystone: encode preserve requires metadata; supply Decoded via EncodeWithDecoded")

// EncodeWithMode encodes a value using the given mode.
// If mode is EncodePreserve, this function returns ErrEncodePreserveRequiresMeta because
// preserving semantics require field metadata. Prefer EncodeWithDecoded with a Decoded value.
func EncodeWithMode[T any](ctx context.Context, c Codec[T], v T, mode EncodeMode) ([]byte, error) {
	if mode == EncodePreserve {
		return nil, ErrEncodePreserveRequiresMeta
	}
	return c.Encode(ctx, v)
}

// EncodeWithDecoded encodes a value using the given mode, consuming field
// metadata when provided. When mode is EncodePreserve, this calls
// c.EncodePreserving to honor seen-vs-defaulted distinctions. When mode is
// EncodeCanonical it falls back to Encode.
func EncodeWithDecoded[T any](ctx context.Context, c Codec[T], d Decoded[T], mode EncodeMode) ([]byte, error) {
	switch mode {
	case EncodePreserve:
		return c.EncodePreserving(ctx, d)
	default:
		return c.Encode(ctx, d.Value)
	}
}

// ---- Convenience wrappers ----

// DecodeFrom decodes a byte-oriented source (JSON or YAML) using the record,
// applying default providers for absent fields.
func DecodeFrom[T any](ctx context.Context, r Record[T], src Source, opt ...DecodeOpt) (T, error) {
	v, err := src.value()
	if err != nil {
		var zero T
		return zero, Issues{Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return r.Decode(applyDecodeOpt(ctx, opt), v)
}

// DecodeFromWithMeta decodes like DecodeFrom and additionally reports which
// fields were seen, explicitly null, or filled from default providers.
func DecodeFromWithMeta[T any](ctx context.Context, r Record[T], src Source, opt ...DecodeOpt) (Decoded[T], error) {
	v, err := src.value()
	if err != nil {
		return Decoded[T]{}, Issues{Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return r.DecodeWithMeta(applyDecodeOpt(ctx, opt), v)
}

// SafeDecode decodes v into T, returning (zero, false) on error.
func SafeDecode[T any](ctx context.Context, r Record[T], v any) (T, bool) {
	val, err := r.Decode(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// ProviderFor returns a typed zero-argument default provider for a top-level
// field of S selected by selector. Like Record.Provider, the returned function
// re-evaluates the field's default on every call.
func ProviderFor[S any, F any](r Record[S], selector func(*S) *F) (func() F, error) {
	name := FieldNameOf(selector)
	p, err := r.Provider(name)
	if err != nil {
		return nil, err
	}
	probe, ok := p().(F)
	if !ok {
		return nil, Issues{Issue{
			Path:    "/" + name,
			Code:    CodeDefaultMismatch,
			Message: fmt.Sprintf("default for %q is %T, selector wants %T", name, p(), probe),
		}}
	}
	return func() F { return p().(F) }, nil
}

func applyDecodeOpt(ctx context.Context, opts []DecodeOpt) context.Context {
	for _, o := range opts {
		if o.FailFast {
			ctx = WithFailFast(ctx, true)
		}
	}
	return ctx
}

// ---- Decode-time context options (internal wiring, exported for subpackages) ----

type contextKey int

const _ctxKeyFailFast contextKey = iota

// WithFailFast returns a child context that marks fail-fast decode behavior.
// This is set by DecodeFrom based on DecodeOpt and consumed by record implementations.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current decode should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
