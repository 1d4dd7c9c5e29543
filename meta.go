package keystone

import "sort"

// FieldMeta is the bit flag collected by WithMeta APIs.
type FieldMeta uint8

const (
	MetaSeen           FieldMeta = 1 << iota // Field appeared in the input.
	MetaWasNull                              // Field value was null.
	MetaDefaultApplied                       // Default provider filled the field.
)

// MetaMap maps JSON Pointers to FieldMeta flags.
type MetaMap map[string]FieldMeta

// Decoded carries the decoded value along with per-field metadata.
type Decoded[T any] struct {
	Value T
	Meta  MetaMap
}

// Seen reports whether the field at path appeared in the input.
func (m MetaMap) Seen(path string) bool { return m[path]&MetaSeen != 0 }

// WasNull reports whether the field at path was explicitly null in the input.
func (m MetaMap) WasNull(path string) bool { return m[path]&MetaWasNull != 0 }

// DefaultApplied reports whether the field at path was filled by its default
// provider rather than by the input.
func (m MetaMap) DefaultApplied(path string) bool { return m[path]&MetaDefaultApplied != 0 }

// DefaultedPaths returns the JSON Pointers whose values came from default
// providers, sorted for stable output.
func (m MetaMap) DefaultedPaths() []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v&MetaDefaultApplied != 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
