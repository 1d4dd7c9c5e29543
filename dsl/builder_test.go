package dsl_test

import (
	"strings"
	"testing"

	keystone "github.com/keystone-go/keystone"
	g "github.com/keystone-go/keystone/dsl"
)

func TestBuild_CollectsDefinitionIssues(t *testing.T) {
	_, err := g.Record().
		Field("thing", g.Int()).Default(1).
		Field("thing", g.Int()).Default(2).
		Field("bare", g.Bool()).
		Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected two issues, got: %v", err)
	}
	if iss[0].Code != keystone.CodeDuplicateField || iss[0].Path != "/thing" {
		t.Fatalf("unexpected first issue: %+v", iss[0])
	}
	if iss[1].Code != keystone.CodeMissingDefault || iss[1].Path != "/bare" {
		t.Fatalf("unexpected second issue: %+v", iss[1])
	}
}

func TestBuild_DefaultMismatch(t *testing.T) {
	_, err := g.Record().
		Field("thing", g.Int()).Default("one").
		Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeDefaultMismatch {
		t.Fatalf("expected default_mismatch, got: %v", err)
	}
	if iss[0].Path != "/thing" {
		t.Fatalf("unexpected path: %q", iss[0].Path)
	}
}

func TestBuild_DefaultFuncProbedOnceThenFreshPerCall(t *testing.T) {
	calls := 0
	rec, err := g.Record().
		Field("n", g.Int()).DefaultFunc(func() any { calls++; return calls }).
		Build()
	if err != nil {
		t.Fatalf("build err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("build must probe the fn exactly once, got %d calls", calls)
	}
	a := rec.New()["n"]
	b := rec.New()["n"]
	if a != 2 || b != 3 {
		t.Fatalf("each New must re-run the fn: got %v then %v", a, b)
	}
}

func TestBuild_DefaultFuncMismatch(t *testing.T) {
	_, err := g.Record().
		Field("n", g.Int()).DefaultFunc(func() any { return "nope" }).
		Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeDefaultMismatch {
		t.Fatalf("expected default_mismatch from probe, got: %v", err)
	}
}

func TestBuild_EmptyRecord(t *testing.T) {
	_, err := g.Record().Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeEmptyRecord {
		t.Fatalf("expected empty_record, got: %v", err)
	}
}

func TestBuild_UnknownCapability(t *testing.T) {
	_, err := g.Record().
		Field("a", g.Int()).Default(0).
		Derive(keystone.Capability(1 << 6)).
		Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeUnknownCapability {
		t.Fatalf("expected unknown_capability, got: %v", err)
	}
}

func TestBuild_OrderingRequiresOrderableFields(t *testing.T) {
	_, err := g.Record().
		Field("tags", g.Of[[]string]()).Default([]string{}).
		Derive(keystone.CapOrdering).
		Build()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeNotOrderable {
		t.Fatalf("expected not_orderable, got: %v", err)
	}
	if iss[0].Path != "/tags" {
		t.Fatalf("unexpected path: %q", iss[0].Path)
	}
}

func TestMustBuild_PanicsWithDescriptiveMessage(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "invalid record definition") {
			t.Fatalf("unexpected panic message: %v", r)
		}
	}()
	g.Record().MustBuild()
}

func TestDefault_LastWins(t *testing.T) {
	b := g.Record()
	st := b.Field("a", g.Int())
	st.Default(1)
	st.Default(2)
	rec := b.MustBuild()
	if got := rec.New()["a"]; got != 2 {
		t.Fatalf("want 2, got %v", got)
	}
}

func TestNew_FreshCollectionDefaults(t *testing.T) {
	rec := g.Record().
		Field("tags", g.Of[[]string]()).Default([]string{"new"}).
		MustBuild()

	a := rec.New()
	b := rec.New()
	a["tags"].([]string)[0] = "changed"
	if got := b["tags"].([]string)[0]; got != "new" {
		t.Fatalf("instances must not alias defaults; got %q", got)
	}
	// The definition itself stays untouched as well.
	if got := rec.New()["tags"].([]string)[0]; got != "new" {
		t.Fatalf("later instances must still see the pristine default; got %q", got)
	}
}

func TestNew_FreshMapDefaults(t *testing.T) {
	rec := g.Record().
		Field("labels", g.Of[map[string]string]()).Default(map[string]string{"app": "web"}).
		MustBuild()

	a := rec.New()
	a["labels"].(map[string]string)["app"] = "mutated"
	if got := rec.New()["labels"].(map[string]string)["app"]; got != "web" {
		t.Fatalf("map defaults must not alias; got %q", got)
	}
}
