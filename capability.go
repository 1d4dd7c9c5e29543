package keystone

import "strings"

// Capability names an opt-in behavior a record attaches at definition time.
// Only the requested capabilities are derived; invoking a method backed by an
// unattached capability panics with a descriptive message.
type Capability uint8

const (
	CapEquality   Capability = 1 << iota // Equal reports structural equality.
	CapCloning                           // Clone produces an independent deep copy.
	CapOrdering                          // Compare orders two values field by field.
	CapFormatting                        // Format renders a debug representation.
)

// capAll is the union of every known capability bit.
const capAll = CapEquality | CapCloning | CapOrdering | CapFormatting

// String returns the stable name used in error messages and logs. Combined
// sets render as "equality|ordering".
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	names := make([]string, 0, 4)
	for _, e := range []struct {
		bit  Capability
		name string
	}{
		{CapEquality, "equality"},
		{CapCloning, "cloning"},
		{CapOrdering, "ordering"},
		{CapFormatting, "formatting"},
	} {
		if c&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// Known reports whether every bit in c names a defined capability.
func (c Capability) Known() bool { return c != 0 && c&^capAll == 0 }
