package codec

import (
	"context"
	"errors"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	keystone "github.com/keystone-go/keystone"
)

var errNoRecord = errors.New("codec: Defaulted has no record; construct it with NewDefaulted")

// Defaulted wraps a record-backed value so it plugs into encoding/json-style
// and yaml.v3 struct decoding: missing fields fill from the record's
// defaults. Embed it as a field of a larger config struct and initialize it
// with NewDefaulted before unmarshaling; the zero Defaulted cannot decode.
type Defaulted[T any] struct {
	rec   keystone.Record[T]
	Value T
}

// NewDefaulted wraps r with Value set to the all-defaults instance.
func NewDefaulted[T any](r keystone.Record[T]) Defaulted[T] {
	return Defaulted[T]{rec: r, Value: r.New()}
}

// Record exposes the wrapped record.
func (d Defaulted[T]) Record() keystone.Record[T] { return d.rec }

func (d Defaulted[T]) MarshalJSON() ([]byte, error) {
	if d.rec == nil {
		return nil, errNoRecord
	}
	return gojson.Marshal(d.rec.Encode(d.Value))
}

func (d *Defaulted[T]) UnmarshalJSON(data []byte) error {
	if d.rec == nil {
		return errNoRecord
	}
	v, err := keystone.DecodeFrom(context.Background(), d.rec, keystone.JSONBytes(data))
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}

func (d Defaulted[T]) MarshalYAML() (any, error) {
	if d.rec == nil {
		return nil, errNoRecord
	}
	return d.rec.Encode(d.Value), nil
}

func (d *Defaulted[T]) UnmarshalYAML(node *yaml.Node) error {
	if d.rec == nil {
		return errNoRecord
	}
	// Round-trip through bytes so decoding matches YAMLBytes normalization.
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	v, err := keystone.DecodeFrom(context.Background(), d.rec, keystone.YAMLBytes(raw))
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}
