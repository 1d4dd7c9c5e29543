package dsl_test

import (
	"context"
	"testing"
	"time"

	keystone "github.com/keystone-go/keystone"
	g "github.com/keystone-go/keystone/dsl"
)

type inferSettings struct {
	Thing int  `json:"thing" default:"1"`
	Foo   bool `json:"foo" default:"false"`
}

func TestInfer_TagDrivenDefaults(t *testing.T) {
	ctx := context.Background()
	rec, err := g.Infer[inferSettings](keystone.CapEquality)
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}

	def := rec.New()
	if def.Thing != 1 || def.Foo != false {
		t.Fatalf("unexpected defaults: %+v", def)
	}

	v, err := keystone.DecodeFrom(ctx, rec, keystone.JSONBytes([]byte(`{"foo":true}`)))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if v.Thing != 1 || v.Foo != true {
		t.Fatalf("unexpected value: %+v", v)
	}
	if !rec.Equal(def, inferSettings{Thing: 1}) {
		t.Fatalf("equality must hold for identical values")
	}
}

type inferJob struct {
	Name     string        `json:"name" default:"job"`
	Timeout  time.Duration `json:"timeout" default:"30s"`
	Started  time.Time     `json:"started" default:"2024-01-02T03:04:05Z"`
	Replicas int           `json:"replicas" default:"3" doc:"desired copies"`
	Ratio    float64       `json:"ratio" default:"0.5"`
	Attempts int64         `json:"attempts"`
}

func TestInfer_KindsAndDocs(t *testing.T) {
	rec, err := g.Infer[inferJob]()
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	def := rec.New()
	if def.Name != "job" || def.Timeout != 30*time.Second || def.Replicas != 3 || def.Ratio != 0.5 {
		t.Fatalf("unexpected defaults: %+v", def)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !def.Started.Equal(want) {
		t.Fatalf("unexpected started default: %v", def.Started)
	}
	if def.Attempts != 0 {
		t.Fatalf("untagged field must default to its zero value: %+v", def)
	}

	var doc string
	for _, f := range rec.Fields() {
		if f.Name == "replicas" {
			doc = f.Doc
		}
	}
	if doc != "desired copies" {
		t.Fatalf("doc tag must surface in Fields: %q", doc)
	}
}

type inferTags struct {
	Tags []string `json:"tags" default:"[\"a\",\"b\"]"`
}

func TestInfer_CollectionDefaultsFromJSONLiteral(t *testing.T) {
	rec, err := g.Infer[inferTags]()
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	a := rec.New()
	if len(a.Tags) != 2 || a.Tags[0] != "a" || a.Tags[1] != "b" {
		t.Fatalf("unexpected tags default: %+v", a)
	}
	a.Tags[0] = "mutated"
	if got := rec.New().Tags[0]; got != "a" {
		t.Fatalf("collection defaults must not alias: %q", got)
	}
}

type inferBadTag struct {
	Thing int `json:"thing" default:"one"`
}

func TestInfer_MalformedTagReported(t *testing.T) {
	_, err := g.Infer[inferBadTag]()
	iss, ok := keystone.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != keystone.CodeDefaultMismatch {
		t.Fatalf("expected default_mismatch, got: %v", err)
	}
	if iss[0].Path != "/thing" {
		t.Fatalf("unexpected path: %q", iss[0].Path)
	}
}

func TestInfer_CachesPerTypeAndCaps(t *testing.T) {
	a, err := g.Infer[inferSettings](keystone.CapEquality)
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	b, err := g.Infer[inferSettings](keystone.CapEquality)
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	if a != b {
		t.Fatalf("same type and caps must hit the cache")
	}
	c, err := g.Infer[inferSettings]()
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	if any(a) == any(c) {
		t.Fatalf("different caps must build a distinct record")
	}
	if c.Has(keystone.CapEquality) {
		t.Fatalf("capless inference must not attach equality")
	}
}

type inferPort struct {
	Port port `json:"port" default:"8080"`
}

func TestInfer_NamedScalarTypes(t *testing.T) {
	rec, err := g.Infer[inferPort]()
	if err != nil {
		t.Fatalf("infer err: %v", err)
	}
	if got := rec.New().Port; got != port(8080) {
		t.Fatalf("want 8080, got %v", got)
	}
}

func TestMustInfer_PanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	g.MustInfer[inferBadTag]()
}

func TestInfer_ConcurrentFirstUse(t *testing.T) {
	type burst struct {
		N int `json:"n" default:"7"`
	}
	done := make(chan keystone.Record[burst], 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- g.MustInfer[burst]()
		}()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		if got := <-done; got != first {
			t.Fatalf("concurrent inference must converge on one record")
		}
	}
	if first.New().N != 7 {
		t.Fatalf("unexpected default: %+v", first.New())
	}
}
