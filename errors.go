package keystone

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Definition-time codes: a malformed schema never survives Build/Bind.
	CodeDuplicateField    = "duplicate_field"
	CodeMissingDefault    = "missing_default"
	CodeDefaultMismatch   = "default_mismatch"
	CodeUnknownCapability = "unknown_capability"
	CodeNotOrderable      = "not_orderable"
	CodeUnboundField      = "unbound_field"
	CodeUnknownField      = "unknown_field"
	CodeEmptyRecord       = "empty_record"

	// Decode-time codes raised by the serialization fallback layer.
	CodeInvalidType = "invalid_type"
	CodeUnknownKey  = "unknown_key"
	CodeParseError  = "parse_error"
)

// Issue represents a single definition or decode entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /thing).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected types, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"field":"thing", "want":"int"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of schema/decode errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. duplicate_field at /thing
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// RebaseIssues re-anchors child issues under the given field pointer so that
// a nested decode error reads "/field/inner" rather than "/inner".
func RebaseIssues(base string, err error) Issues {
	child, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		out = append(out, Issue{Path: p, Code: it.Code, Message: it.Message, Hint: it.Hint, Cause: it.Cause, Params: it.Params})
	}
	return out
}
