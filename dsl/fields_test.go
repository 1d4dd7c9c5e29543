package dsl_test

import (
	"context"
	"testing"
	"time"

	keystone "github.com/keystone-go/keystone"
	g "github.com/keystone-go/keystone/dsl"
)

func TestInt_AcceptedWireForms(t *testing.T) {
	ctx := context.Background()
	rec := g.Record().
		Field("n", g.Int()).Default(0).
		MustBuild()

	// JSON numbers arrive as json.Number, YAML numbers as int; integral
	// floats appear when callers hand-build maps.
	for _, in := range []any{42, int64(42), float64(42)} {
		v, err := rec.Decode(ctx, map[string]any{"n": in})
		if err != nil {
			t.Fatalf("decode %T err: %v", in, err)
		}
		if v["n"] != 42 {
			t.Fatalf("decode %T: want 42, got %#v", in, v["n"])
		}
	}

	for _, in := range []any{"42", 1.5, true} {
		if _, err := rec.Decode(ctx, map[string]any{"n": in}); err == nil {
			t.Fatalf("decode %T (%v) should fail", in, in)
		}
	}
}

func TestFloat64_AcceptsIntegers(t *testing.T) {
	ctx := context.Background()
	rec := g.Record().
		Field("ratio", g.Float64()).Default(0.0).
		MustBuild()

	v, err := rec.Decode(ctx, map[string]any{"ratio": 2})
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if v["ratio"] != 2.0 {
		t.Fatalf("want 2.0, got %#v", v["ratio"])
	}
}

func TestDuration_WireStringForm(t *testing.T) {
	ctx := context.Background()
	rec := g.Record().
		Field("timeout", g.Duration()).Default(30 * time.Second).
		MustBuild()

	v, err := rec.Decode(ctx, map[string]any{"timeout": "1h30m"})
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if v["timeout"] != 90*time.Minute {
		t.Fatalf("want 1h30m, got %v", v["timeout"])
	}

	out := rec.Encode(rec.New())
	if out["timeout"] != "30s" {
		t.Fatalf("encode must render the duration string, got %#v", out["timeout"])
	}

	_, err = rec.Decode(ctx, map[string]any{"timeout": "soon"})
	iss, ok := keystone.AsIssues(err)
	if !ok || iss[0].Path != "/timeout" || iss[0].Code != keystone.CodeInvalidType {
		t.Fatalf("expected invalid_type at /timeout, got: %v", err)
	}
}

func TestTimeRFC3339_WireStringForm(t *testing.T) {
	ctx := context.Background()
	epoch := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := g.Record().
		Field("at", g.TimeRFC3339()).Default(epoch).
		Derive(keystone.CapOrdering).
		MustBuild()

	v, err := rec.Decode(ctx, map[string]any{"at": "2024-05-02T00:00:00Z"})
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	later := v["at"].(time.Time)
	if !later.After(epoch) {
		t.Fatalf("unexpected parsed time: %v", later)
	}

	if got := rec.Compare(rec.New(), v); got != -1 {
		t.Fatalf("earlier instant orders first: want -1, got %d", got)
	}

	out := rec.Encode(rec.New())
	if out["at"] != "2024-05-01T12:00:00Z" {
		t.Fatalf("encode must render RFC 3339, got %#v", out["at"])
	}
}

func TestOf_SliceAndNestedStruct(t *testing.T) {
	ctx := context.Background()

	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	rec := g.Record().
		Field("nums", g.Of[[]int]()).Default([]int{1}).
		Field("origin", g.Of[point]()).Default(point{X: 1, Y: 2}).
		MustBuild()

	v, err := keystone.DecodeFrom(ctx, rec, keystone.JSONBytes([]byte(`{"nums":[3,4],"origin":{"x":9,"y":8}}`)))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	nums := v["nums"].([]int)
	if len(nums) != 2 || nums[0] != 3 || nums[1] != 4 {
		t.Fatalf("unexpected nums: %#v", nums)
	}
	if p := v["origin"].(point); p.X != 9 || p.Y != 8 {
		t.Fatalf("unexpected origin: %+v", p)
	}
}

func TestOf_NestedErrorPathsRebase(t *testing.T) {
	ctx := context.Background()
	rec := g.Record().
		Field("nums", g.Of[[]int]()).Default([]int{}).
		MustBuild()

	_, err := keystone.DecodeFrom(ctx, rec, keystone.JSONBytes([]byte(`{"nums":[1,"x"]}`)))
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Path != "/nums/1" {
		t.Fatalf("nested issue must carry the full pointer, got %q", iss[0].Path)
	}
}

func TestAdapter_KindNames(t *testing.T) {
	rec := g.Record().
		Field("a", g.String()).Default("").
		Field("b", g.Int64()).Default(int64(0)).
		Field("c", g.Of[[]string]()).Default([]string{}).
		MustBuild()

	fields := rec.Fields()
	want := []struct{ name, kind string }{
		{"a", "string"},
		{"b", "int64"},
		{"c", "[]string"},
	}
	for i, w := range want {
		if fields[i].Name != w.name || fields[i].Kind != w.kind {
			t.Fatalf("field %d: want %s/%s, got %s/%s", i, w.name, w.kind, fields[i].Name, fields[i].Kind)
		}
	}
}
