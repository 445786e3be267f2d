package fsops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/eunmann/fsfixture/pkg/limiter"
	"golang.org/x/sync/errgroup"
)

// ErrNotDir is returned when a directory is requested at a path occupied by
// something else.
var ErrNotDir = errors.New("exists and is not a directory")

// DefaultDirWorkers returns the default directory-creation pool size.
func DefaultDirWorkers() int {
	return min(32, runtime.NumCPU()+4)
}

// Creator performs idempotent directory and file creation. File writes are
// gated by the limiter; directory creation is fanned out over a bounded
// worker pool instead.
type Creator struct {
	fsys       Filesystem
	lim        *limiter.Limiter
	dirWorkers int
}

// NewCreator returns a Creator writing through fsys. dirWorkers <= 0 selects
// DefaultDirWorkers.
func NewCreator(fsys Filesystem, lim *limiter.Limiter, dirWorkers int) *Creator {
	if dirWorkers <= 0 {
		dirWorkers = DefaultDirWorkers()
	}
	return &Creator{
		fsys:       fsys,
		lim:        lim,
		dirWorkers: dirWorkers,
	}
}

// CreateDir ensures a directory exists at path. An existing directory is
// success; any other failure is returned.
func (c *Creator) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.fsys.Mkdir(path, DirPerm)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create dir %s: %w", path, err)
	}

	info, statErr := c.fsys.Stat(path)
	if statErr != nil {
		return fmt.Errorf("stat existing dir %s: %w", path, statErr)
	}
	if !info.IsDir() {
		return fmt.Errorf("create dir %s: %w", path, ErrNotDir)
	}
	return nil
}

// CreateDirs creates all paths concurrently on the directory worker pool and
// waits for them. The first failure cancels directories not yet started and
// is returned.
func (c *Creator) CreateDirs(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.dirWorkers)

	for _, p := range paths {
		g.Go(func() error {
			return c.CreateDir(ctx, p)
		})
	}
	return g.Wait()
}

// CreateFile writes data to path while holding one write permit. The file
// is created or truncated; its previous content is not inspected.
func (c *Creator) CreateFile(ctx context.Context, path string, data []byte) error {
	return c.lim.Do(ctx, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.fsys.WriteFile(path, data, FilePerm); err != nil {
			return fmt.Errorf("write file %s: %w", path, err)
		}
		return nil
	})
}

// IsNonEmptyDir reports whether path is an existing directory with at least
// one entry. A missing path is not an error.
func (c *Creator) IsNonEmptyDir(path string) (bool, error) {
	entries, err := c.fsys.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read dir %s: %w", path, err)
	}
	return len(entries) > 0, nil
}
