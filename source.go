package keystone

import (
	"bytes"
	"errors"
	"io"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source abstracts over polymorphic byte-oriented inputs. A Source knows its
// own wire format and materializes the input as a generic value tree
// (map[string]any, []any, scalars) for record decoding.
type Source interface {
	// Format names the wire format, "json" or "yaml".
	Format() string

	// value decodes the underlying input. JSON numbers are preserved as
	// json.Number; YAML mappings are normalized to string keys.
	value() (any, error)
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return jsonSource{data: b} }

// JSONReader wraps an io.Reader as a JSON Source. The reader is drained on use.
func JSONReader(r io.Reader) Source { return jsonReaderSource{r: r} }

// YAMLBytes wraps a byte slice as a YAML Source.
func YAMLBytes(b []byte) Source { return yamlSource{data: b} }

// YAMLReader wraps an io.Reader as a YAML Source. The reader is drained on use.
func YAMLReader(r io.Reader) Source { return yamlReaderSource{r: r} }

type jsonSource struct{ data []byte }

func (s jsonSource) Format() string      { return "json" }
func (s jsonSource) value() (any, error) { return decodeJSONValue(s.data) }

type jsonReaderSource struct{ r io.Reader }

func (s jsonReaderSource) Format() string { return "json" }
func (s jsonReaderSource) value() (any, error) {
	b, err := io.ReadAll(s.r)
	if err != nil {
		return nil, err
	}
	return decodeJSONValue(b)
}

func decodeJSONValue(b []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after top-level value")
	}
	return v, nil
}

type yamlSource struct{ data []byte }

func (s yamlSource) Format() string      { return "yaml" }
func (s yamlSource) value() (any, error) { return decodeYAMLValue(s.data) }

type yamlReaderSource struct{ r io.Reader }

func (s yamlReaderSource) Format() string { return "yaml" }
func (s yamlReaderSource) value() (any, error) {
	b, err := io.ReadAll(s.r)
	if err != nil {
		return nil, err
	}
	return decodeYAMLValue(b)
}

func decodeYAMLValue(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return normalizeYAMLValue(v), nil
}

// normalizeYAMLValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively.
func normalizeYAMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeYAMLValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAMLValue(t[i])
		}
		return arr
	default:
		return v
	}
}
