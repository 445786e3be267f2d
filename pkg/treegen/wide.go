package treegen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/logging"
)

// Wide builds the wide benchmark under root: cfg.Dirs sibling directories,
// each holding cfg.FilesPerDir files of cfg.FileSize bytes.
//
// All directories are created before any file is written. If root/wide
// already exists and is non-empty the tree is assumed complete and nothing
// is written.
func Wide(ctx context.Context, c *fsops.Creator, root string, cfg WideConfig) (Result, error) {
	log := logctx.FromContext(ctx).With().Str("phase", WideName).Logger()
	benchDir := WidePath(root)

	res := Result{
		Name:  WideName,
		Path:  benchDir,
		Dirs:  int64(cfg.Dirs),
		Files: cfg.TotalFiles(),
		Bytes: cfg.TotalBytes(),
	}

	exists, err := c.IsNonEmptyDir(benchDir)
	if err != nil {
		return res, fmt.Errorf("check wide benchmark: %w", err)
	}
	if exists {
		res.Skipped = true
		logging.PhaseSkipped(log, WideName).
			Str("path", benchDir).
			Int("dirs", cfg.Dirs).
			Int("files_per_dir", cfg.FilesPerDir).
			Count("files", res.Files).
			Log("wide benchmark already exists, skipping creation")
		return res, nil
	}

	start := time.Now()
	if err := c.CreateDir(ctx, benchDir); err != nil {
		return res, err
	}
	logging.PhaseStarted(log.With().Str("path", benchDir).Logger(), WideName, res.Dirs, res.Files)

	dirs := make([]string, cfg.Dirs)
	for i := range dirs {
		dirs[i] = filepath.Join(benchDir, WideDirName(i))
	}
	if err := c.CreateDirs(ctx, dirs); err != nil {
		return res, fmt.Errorf("create wide dirs: %w", err)
	}
	log.Info().Int("dirs", cfg.Dirs).Msg("all directories created, now creating files")

	payload := cfg.Payload()
	b := newBatcher(ctx, c, cfg.BatchSize, res.Files, log, WideName)
	half := max(1, cfg.Dirs/2)

	for i, dir := range dirs {
		for j := 0; j < cfg.FilesPerDir; j++ {
			if err := b.add(filepath.Join(dir, WideFileName(j)), payload); err != nil {
				return res, fmt.Errorf("write wide files: %w", err)
			}
		}
		if (i+1)%half == 0 {
			log.Info().
				Int("done", i+1).
				Int("total", cfg.Dirs).
				Msgf("created files for %d/%d directories", i+1, cfg.Dirs)
		}
	}
	if err := b.flush(); err != nil {
		return res, fmt.Errorf("write wide files: %w", err)
	}

	res.Elapsed = time.Since(start)
	logging.PhaseComplete(log, WideName, res.Elapsed).
		Count("dirs", res.Dirs).
		Count("files", res.Files).
		Bytes("bytes", res.Bytes).
		Throughput(res.Bytes).
		Log("wide benchmark complete")
	return res, nil
}
