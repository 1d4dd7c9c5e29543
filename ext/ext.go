// Package ext carries small conveniences that sit outside the record
// facility proper: expression helpers, error-tolerant unwrapping and
// best-effort filesystem walks. Nothing in the core packages depends on ext.
package ext

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
)

var logger = newDefaultLogger()

func newDefaultLogger() *charmlog.Logger {
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "keystone",
	})
}

// SetLogger replaces the logger used by Logged, LogErr and the walk helpers.
// Passing nil restores the stderr default.
func SetLogger(l *charmlog.Logger) {
	if l == nil {
		l = newDefaultLogger()
	}
	logger = l
}

// If returns a when cond holds, otherwise b. Both arms are evaluated.
func If[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// Str renders any value as a string; strings pass through unchanged.
func Str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Must unwraps v or panics. For package-level initialization that cannot
// reasonably fail.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Logged reports err through the package logger and returns v either way.
func Logged[T any](v T, err error) T {
	LogErr(err)
	return v
}

// LogErr reports err through the package logger; nil is a no-op.
func LogErr(err error) {
	if err == nil {
		return
	}
	logger.Error("continuing after error", "error", err)
}
