package ext_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/keystone-go/keystone/ext"
)

func TestIf(t *testing.T) {
	if got := ext.If(true, "a", "b"); got != "a" {
		t.Fatalf("want a, got %q", got)
	}
	if got := ext.If(false, 1, 2); got != 2 {
		t.Fatalf("want 2, got %d", got)
	}
}

func TestStr(t *testing.T) {
	if got := ext.Str("plain"); got != "plain" {
		t.Fatalf("want plain, got %q", got)
	}
	if got := ext.Str(42); got != "42" {
		t.Fatalf("want 42, got %q", got)
	}
	if got := ext.Str(true); got != "true" {
		t.Fatalf("want true, got %q", got)
	}
}

func TestMust(t *testing.T) {
	if got := ext.Must(7, nil); got != 7 {
		t.Fatalf("want 7, got %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on error")
		}
	}()
	ext.Must(0, errors.New("boom"))
}

func TestLogged_ReportsAndPassesThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	ext.SetLogger(charmlog.New(buf))
	defer ext.SetLogger(nil)

	if got := ext.Logged(9, errors.New("boom")); got != 9 {
		t.Fatalf("want 9, got %d", got)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error in log output, got %q", buf.String())
	}

	buf.Reset()
	if got := ext.Logged("ok", nil); got != "ok" {
		t.Fatalf("want ok, got %q", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("nil error must not log, got %q", buf.String())
	}
}

func TestLogErr_NilIsNoOp(t *testing.T) {
	buf := &bytes.Buffer{}
	ext.SetLogger(charmlog.New(buf))
	defer ext.SetLogger(nil)

	ext.LogErr(nil)
	if buf.Len() != 0 {
		t.Fatalf("nil error must not log, got %q", buf.String())
	}
	ext.LogErr(errors.New("kaboom"))
	if !strings.Contains(buf.String(), "kaboom") {
		t.Fatalf("expected error in log output, got %q", buf.String())
	}
}
