package ext

import (
	"context"
	"io/fs"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// WalkFiles visits every regular file under root in fsys, calling fn with
// the file path. Walk and fn errors are logged and skipped so one bad entry
// never aborts the sweep. A nil fsys walks the OS filesystem.
func WalkFiles(fsys afero.Fs, root string, fn func(path string) error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			LogErr(err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if err := fn(path); err != nil {
			LogErr(err)
		}
		return nil
	})
	LogErr(err)
}

// WalkFilesParallel fans fn out across at most workers goroutines. Unlike
// WalkFiles it is strict: the first error cancels the remaining work and is
// returned. workers <= 0 means no limit.
func WalkFilesParallel(ctx context.Context, fsys afero.Fs, root string, workers int, fn func(ctx context.Context, path string) error) error {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	walkErr := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.Go(func() error { return fn(ctx, path) })
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}
