// Package duscan computes the disk usage of a tree the way du does, in
// parallel.
//
// Usage is counted in 512-byte blocks from each file's allocated size.
// Hard links are counted once: every inode seen is recorded in a sharded set
// shared by all walkers. Symbolic links are not followed and count as one
// block. Directories themselves are not charged.
//
// Unreadable entries below the root are logged and skipped; only a failure
// to read the root itself fails the scan.
package duscan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// BlockSize is the unit of Result.Blocks.
const BlockSize = 512

// DefaultMaxHandles bounds simultaneously open directory handles.
const DefaultMaxHandles = 224

// Options configures a scan.
type Options struct {
	// MaxHandles bounds open directory handles (0 = DefaultMaxHandles).
	MaxHandles int
}

// Result is the outcome of a scan.
type Result struct {
	// Blocks is the usage in 512-byte blocks.
	Blocks int64
	Dirs   int64
	Files  int64
	// HardLinks counts entries skipped because their inode was already seen.
	HardLinks int64
	// Errors counts entries that could not be read.
	Errors  int64
	Elapsed time.Duration
}

// Bytes returns the usage in bytes.
func (r Result) Bytes() int64 {
	return r.Blocks * BlockSize
}

type scanner struct {
	log     zerolog.Logger
	handles *semaphore.Weighted
	seen    *inodeSet

	dirs, files, hardLinks, errs atomic.Int64
}

// Scan walks root and returns its disk usage.
func Scan(ctx context.Context, root string, opts Options) (Result, error) {
	maxHandles := opts.MaxHandles
	if maxHandles <= 0 {
		maxHandles = DefaultMaxHandles
	}
	s := &scanner{
		log:     logctx.FromContext(ctx).With().Str("phase", "du").Logger(),
		handles: semaphore.NewWeighted(int64(maxHandles)),
		seen:    newInodeSet(),
	}

	start := time.Now()
	blocks, err := s.dir(ctx, root)
	if err != nil {
		return Result{}, err
	}
	// Subdirectories abandoned on cancellation are not counted as errors.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		Blocks:    blocks,
		Dirs:      s.dirs.Load(),
		Files:     s.files.Load(),
		HardLinks: s.hardLinks.Load(),
		Errors:    s.errs.Load(),
		Elapsed:   time.Since(start),
	}
	logging.PhaseComplete(s.log, "du", res.Elapsed).
		Str("root", root).
		Count("dirs", res.Dirs).
		Count("files", res.Files).
		Int64("hard_links", res.HardLinks).
		Int64("errors", res.Errors).
		Bytes("bytes", res.Bytes()).
		LogDebug("disk usage scan complete")
	return res, nil
}

// dir returns the blocks below path. Subdirectories are scanned
// concurrently; their failures are reported and count as zero.
func (s *scanner) dir(ctx context.Context, path string) (int64, error) {
	entries, err := s.readDir(ctx, path)
	if err != nil {
		return 0, err
	}
	s.dirs.Add(1)

	var (
		total atomic.Int64
		wg    sync.WaitGroup
	)
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		switch typ := e.Type(); {
		case typ.IsDir():
			wg.Add(1)
			go func() {
				defer wg.Done()
				blocks, err := s.dir(ctx, child)
				if err != nil {
					s.report(err)
					return
				}
				total.Add(blocks)
			}()
		case typ.IsRegular(), typ&fs.ModeSymlink != 0:
			blocks, ino, err := lstatBlocks(child)
			if err != nil {
				s.report(err)
				continue
			}
			if typ&fs.ModeSymlink != 0 {
				blocks = 1
			}
			s.files.Add(1)
			if !s.seen.add(ino) {
				s.hardLinks.Add(1)
				continue
			}
			total.Add(blocks)
		}
	}
	wg.Wait()
	return total.Load(), nil
}

// readDir lists path while holding one directory handle.
func (s *scanner) readDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := s.handles.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire dir handle: %w", err)
	}
	defer s.handles.Release(1)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	return entries, nil
}

func (s *scanner) report(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.errs.Add(1)
	s.log.Warn().Err(err).Msg("cannot access")
}
