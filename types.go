package keystone

// UnknownPolicy controls how unknown keys are handled during decode.
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                       // Drop unknown keys silently.
)

// DecodeOpt bundles decode options.
type DecodeOpt struct {
	FailFast bool // Stop at the first issue instead of collecting all of them.
}
