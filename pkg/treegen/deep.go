package treegen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Node is a deep tree directory in the frontier.
type Node struct {
	Path  string
	Depth int
}

// Children returns the n child nodes of nd in branch order.
func (nd Node) Children(n int) []Node {
	out := make([]Node, n)
	for b := range out {
		out[b] = Node{
			Path:  filepath.Join(nd.Path, DeepDirName(nd.Depth+1, b)),
			Depth: nd.Depth + 1,
		}
	}
	return out
}

// Deep builds the deep benchmark under root: a tree cfg.Levels deep in which
// every non-leaf directory has cfg.Branching children and every directory
// holds cfg.FilesPerDir files.
//
// The tree is built one level at a time. A level's files are all written and
// its children all created before the next level starts. If root/deep
// already exists and is non-empty the tree is assumed complete and nothing is
// written.
func Deep(ctx context.Context, c *fsops.Creator, root string, cfg DeepConfig) (Result, error) {
	log := logctx.FromContext(ctx).With().Str("phase", DeepName).Logger()
	benchDir := DeepPath(root)

	res := Result{
		Name:   DeepName,
		Path:   benchDir,
		Levels: cfg.Levels,
		Dirs:   cfg.TotalDirs(),
		Files:  cfg.TotalFiles(),
		Bytes:  cfg.TotalBytes(),
	}

	exists, err := c.IsNonEmptyDir(benchDir)
	if err != nil {
		return res, fmt.Errorf("check deep benchmark: %w", err)
	}
	if exists {
		res.Skipped = true
		logging.PhaseSkipped(log, DeepName).
			Str("path", benchDir).
			Int("levels", cfg.Levels).
			Int("branching", cfg.Branching).
			Count("estimated_dirs", res.Dirs).
			Log("deep benchmark already exists, skipping creation")
		return res, nil
	}

	start := time.Now()
	if err := c.CreateDir(ctx, benchDir); err != nil {
		return res, err
	}
	logging.PhaseStarted(log.With().Str("path", benchDir).Logger(), DeepName, res.Dirs, res.Files)

	payload := DeepPayload()
	milestone := max(1, cfg.Levels/4)
	tracker := logging.NewProgressTracker(int64(cfg.Levels))

	frontier := []Node{{Path: benchDir, Depth: 0}}
	var dirsCreated int64 = 1

	for len(frontier) > 0 {
		depth := frontier[0].Depth
		levelStart := time.Now()

		next, err := fillLevel(ctx, c, frontier, cfg, payload)
		if err != nil {
			return res, fmt.Errorf("build deep level %d: %w", depth, err)
		}
		dirsCreated += int64(len(next))

		elapsed := time.Since(levelStart)
		tracker.RecordCompletion(elapsed)
		levelBytes := int64(len(frontier)) * int64(cfg.FilesPerDir) * int64(len(payload))
		logging.LevelComplete(log, DeepName, elapsed).
			Int("depth", depth).
			Int("frontier", len(frontier)).
			Int("children", len(next)).
			ProgressFromTracker(tracker).
			Throughput(levelBytes).
			LogDebug("deep level complete")

		current := depth + 1
		if current%milestone == 0 || current == cfg.Levels {
			log.Info().
				Int("depth", current).
				Int("levels", cfg.Levels).
				Int64("dirs", dirsCreated).
				Msgf("completed level %d/%d, %d directories created", current, cfg.Levels, dirsCreated)
		}

		frontier = next
	}

	res.Dirs = dirsCreated
	res.Elapsed = time.Since(start)
	logging.PhaseComplete(log, DeepName, res.Elapsed).
		Int("levels", cfg.Levels).
		Count("dirs", res.Dirs).
		Count("files", res.Files).
		Bytes("bytes", res.Bytes).
		Throughput(res.Bytes).
		Log("deep benchmark complete")
	return res, nil
}

// fillLevel writes the files of every frontier directory, then creates the
// next level's directories and returns them. Nothing of the next level is
// created until every write of this level has finished.
func fillLevel(ctx context.Context, c *fsops.Creator, frontier []Node, cfg DeepConfig, payload []byte) ([]Node, error) {
	g, gctx := errgroup.WithContext(ctx)
	var next []Node

	for _, nd := range frontier {
		g.Go(func() error {
			return fillDir(gctx, c, nd.Path, cfg, payload)
		})
		if nd.Depth < cfg.Levels-1 {
			next = append(next, nd.Children(cfg.Branching)...)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(next))
	for i, nd := range next {
		paths[i] = nd.Path
	}
	if err := c.CreateDirs(ctx, paths); err != nil {
		return nil, err
	}
	return next, nil
}

// fillDir writes one directory's file quota in chunks of at most
// cfg.BatchSize, waiting for each chunk before submitting the next.
func fillDir(ctx context.Context, c *fsops.Creator, dir string, cfg DeepConfig, payload []byte) error {
	for lo := 0; lo < cfg.FilesPerDir; lo += cfg.BatchSize {
		hi := min(lo+cfg.BatchSize, cfg.FilesPerDir)
		tasks := make([]fileTask, 0, hi-lo)
		for i := lo; i < hi; i++ {
			tasks = append(tasks, fileTask{path: filepath.Join(dir, DeepFileName(i)), data: payload})
		}
		if err := writeFiles(ctx, c, tasks); err != nil {
			return err
		}
	}
	return nil
}
