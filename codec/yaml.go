package codec

import (
	"context"

	"gopkg.in/yaml.v3"

	keystone "github.com/keystone-go/keystone"
)

// YAML returns a Codec that reads and writes the record as YAML. Decode and
// Encode mirror the JSON codec; only the wire syntax differs.
func YAML[T any](r keystone.Record[T]) keystone.Codec[T] {
	return &yamlCodec[T]{rec: r}
}

type yamlCodec[T any] struct {
	rec keystone.Record[T]
}

func (c *yamlCodec[T]) Decode(ctx context.Context, data []byte) (T, error) {
	return keystone.DecodeFrom(ctx, c.rec, keystone.YAMLBytes(data))
}

func (c *yamlCodec[T]) DecodeWithMeta(ctx context.Context, data []byte) (keystone.Decoded[T], error) {
	return keystone.DecodeFromWithMeta(ctx, c.rec, keystone.YAMLBytes(data))
}

func (c *yamlCodec[T]) Encode(ctx context.Context, v T) ([]byte, error) {
	return yaml.Marshal(c.rec.Encode(v))
}

func (c *yamlCodec[T]) EncodePreserving(ctx context.Context, d keystone.Decoded[T]) ([]byte, error) {
	return yaml.Marshal(preservedMap(c.rec, d))
}
