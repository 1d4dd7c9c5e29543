package keystone

import (
	"errors"

	"dario.cat/mergo"
)

// Fill completes *v with the record's defaults without disturbing what is
// already set. Map-shaped records keep every present key authoritative and
// only absent keys are filled. Struct-shaped records follow mergo semantics:
// zero-valued fields are treated as unset and receive their defaults.
func Fill[T any](r Record[T], v *T) error {
	if v == nil {
		return errors.New("keystone: Fill requires a non-nil destination")
	}
	defaults := r.New()
	if m, ok := any(*v).(map[string]any); ok {
		dm, _ := any(defaults).(map[string]any)
		if m == nil {
			m = make(map[string]any, len(dm))
		}
		for k, dv := range dm {
			if _, exists := m[k]; !exists {
				m[k] = dv
			}
		}
		*v = any(m).(T)
		return nil
	}
	return mergo.Merge(v, defaults)
}
