package codec

import (
	"context"

	gojson "github.com/goccy/go-json"

	keystone "github.com/keystone-go/keystone"
)

// JSON returns a Codec that reads and writes the record as JSON. Decode
// fills missing fields from their defaults; Encode emits every declared
// field in wire shape.
func JSON[T any](r keystone.Record[T]) keystone.Codec[T] {
	return &jsonCodec[T]{rec: r}
}

type jsonCodec[T any] struct {
	rec keystone.Record[T]
}

func (c *jsonCodec[T]) Decode(ctx context.Context, data []byte) (T, error) {
	return keystone.DecodeFrom(ctx, c.rec, keystone.JSONBytes(data))
}

func (c *jsonCodec[T]) DecodeWithMeta(ctx context.Context, data []byte) (keystone.Decoded[T], error) {
	return keystone.DecodeFromWithMeta(ctx, c.rec, keystone.JSONBytes(data))
}

func (c *jsonCodec[T]) Encode(ctx context.Context, v T) ([]byte, error) {
	return gojson.Marshal(c.rec.Encode(v))
}

func (c *jsonCodec[T]) EncodePreserving(ctx context.Context, d keystone.Decoded[T]) ([]byte, error) {
	return gojson.Marshal(preservedMap(c.rec, d))
}

// preservedMap projects d.Value to wire shape, then removes fields present
// only because a default was applied. The resulting payload stays missing
// those fields, so the next reader applies its own defaults.
func preservedMap[T any](r keystone.Record[T], d keystone.Decoded[T]) map[string]any {
	out := r.Encode(d.Value)
	for k := range out {
		p := d.Meta["/"+k]
		defaultOnly := p&keystone.MetaDefaultApplied != 0 && p&keystone.MetaSeen == 0
		if defaultOnly {
			delete(out, k)
		}
	}
	return out
}
