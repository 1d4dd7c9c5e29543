package ext_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/keystone-go/keystone/ext"
)

func newWalkFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, p := range []string{"data/a.json", "data/sub/b.yaml", "data/sub/deep/c.json"} {
		if err := afero.WriteFile(fsys, p, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return fsys
}

func TestWalkFiles_VisitsRegularFiles(t *testing.T) {
	fsys := newWalkFs(t)
	var got []string
	ext.WalkFiles(fsys, "data", func(path string) error {
		got = append(got, path)
		return nil
	})
	sort.Strings(got)
	want := []string{"data/a.json", "data/sub/b.yaml", "data/sub/deep/c.json"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestWalkFiles_ErrorsLoggedNotFatal(t *testing.T) {
	buf := &bytes.Buffer{}
	ext.SetLogger(charmlog.New(buf))
	defer ext.SetLogger(nil)

	fsys := newWalkFs(t)
	var visits int
	ext.WalkFiles(fsys, "data", func(path string) error {
		visits++
		if strings.HasSuffix(path, ".yaml") {
			return errors.New("yaml rejected")
		}
		return nil
	})
	if visits != 3 {
		t.Fatalf("walk must continue past errors, visited %d", visits)
	}
	if !strings.Contains(buf.String(), "yaml rejected") {
		t.Fatalf("expected logged error, got %q", buf.String())
	}
}

func TestWalkFilesParallel_VisitsAll(t *testing.T) {
	ctx := context.Background()
	fsys := newWalkFs(t)

	var mu sync.Mutex
	var got []string
	err := ext.WalkFilesParallel(ctx, fsys, "data", 2, func(ctx context.Context, path string) error {
		mu.Lock()
		got = append(got, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("walk err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 files, got %v", got)
	}
}

func TestWalkFilesParallel_FirstErrorWins(t *testing.T) {
	ctx := context.Background()
	fsys := newWalkFs(t)

	boom := errors.New("boom")
	err := ext.WalkFilesParallel(ctx, fsys, "data", 1, func(ctx context.Context, path string) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got: %v", err)
	}
}
