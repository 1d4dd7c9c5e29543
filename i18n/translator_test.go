package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes should echo the code, got %q", msg)
	}
}

type prefixTranslator struct{}

func (prefixTranslator) Message(code string, _ map[string]string) string { return "CODE:" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(prefixTranslator{})
	if msg := T("parse_error", nil); msg != "CODE:parse_error" {
		t.Fatalf("custom translator not used, got %q", msg)
	}

	SetTranslator(nil)
	if msg := T("parse_error", nil); msg != "parse error" {
		t.Fatalf("nil should restore the builtin dictionary, got %q", msg)
	}
}
