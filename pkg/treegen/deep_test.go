package treegen_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/fsops/fsopstest"
	"github.com/eunmann/fsfixture/pkg/treegen"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepBuildsTree(t *testing.T) {
	root := t.TempDir()
	cfg := treegen.DeepConfig{Levels: 3, Branching: 2, FilesPerDir: 1, BatchSize: 3000}

	res, err := treegen.Deep(context.Background(), newCreator(fsops.OSFS{}, 8), root, cfg)
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.Levels)
	assert.Equal(t, int64(7), res.Dirs)
	assert.Equal(t, int64(7), res.Files)

	deep := filepath.Join(root, "deep")
	dirs, files := countTree(t, deep)
	assert.Equal(t, 7, dirs)
	for dir, n := range files {
		assert.Equal(t, 1, n, "files in %s", dir)
	}

	requireContent(t, filepath.Join(deep, "f0.txt"), []byte(strings.Repeat("content", 10)))
	for _, p := range []string{"d1_b0/d2_b0", "d1_b0/d2_b1", "d1_b1/d2_b0", "d1_b1/d2_b1"} {
		info, err := os.Stat(filepath.Join(deep, filepath.FromSlash(p)))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestDeepDirCountMatchesGeometricSum(t *testing.T) {
	tests := []struct {
		levels, branching int
	}{
		{1, 2},
		{2, 3},
		{4, 2},
		{3, 1},
	}
	for _, tc := range tests {
		root := t.TempDir()
		cfg := treegen.DeepConfig{Levels: tc.levels, Branching: tc.branching, FilesPerDir: 2, BatchSize: 10}

		res, err := treegen.Deep(context.Background(), newCreator(fsops.OSFS{}, 8), root, cfg)
		require.NoError(t, err)

		var want int64
		for l := 0; l < tc.levels; l++ {
			want += int64(math.Pow(float64(tc.branching), float64(l)))
		}
		dirs, files := countTree(t, filepath.Join(root, "deep"))
		assert.Equal(t, want, res.Dirs, "L=%d B=%d", tc.levels, tc.branching)
		assert.Equal(t, int(want), dirs, "L=%d B=%d", tc.levels, tc.branching)
		for dir, n := range files {
			assert.Equal(t, 2, n, "files in %s", dir)
		}
	}
}

func TestDeepChunksLargeDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := treegen.DeepConfig{Levels: 2, Branching: 2, FilesPerDir: 7, BatchSize: 3}

	_, err := treegen.Deep(context.Background(), newCreator(fsops.OSFS{}, 2), root, cfg)
	require.NoError(t, err)

	_, files := countTree(t, filepath.Join(root, "deep"))
	assert.Equal(t, map[string]int{".": 7, "d1_b0": 7, "d1_b1": 7}, files)
}

func TestDeepLevelBarrier(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "deep")
	rec := fsopstest.New()
	rec.WriteDelay = time.Millisecond
	cfg := treegen.DeepConfig{Levels: 4, Branching: 2, FilesPerDir: 3, BatchSize: 2}

	_, err := treegen.Deep(context.Background(), newCreator(rec, 5), root, cfg)
	require.NoError(t, err)

	lastWriteDone := map[int]int64{}
	firstWriteStart := map[int]int64{}
	firstMkdir := map[int]int64{}
	lastMkdir := map[int]int64{}
	for _, e := range rec.Events() {
		switch e.Op {
		case "write":
			d := depthUnder(deep, e.Path, true)
			if e.Done {
				lastWriteDone[d] = max(lastWriteDone[d], e.Seq)
			} else if s, ok := firstWriteStart[d]; !ok || e.Seq < s {
				firstWriteStart[d] = e.Seq
			}
		case "mkdir":
			d := depthUnder(deep, e.Path, false)
			if s, ok := firstMkdir[d]; !ok || e.Seq < s {
				firstMkdir[d] = e.Seq
			}
			lastMkdir[d] = max(lastMkdir[d], e.Seq)
		}
	}

	for d := 0; d < cfg.Levels-1; d++ {
		assert.Less(t, lastWriteDone[d], firstMkdir[d+1],
			"depth %d directory created before depth %d writes finished", d+1, d)
		assert.Less(t, lastMkdir[d+1], firstWriteStart[d+1],
			"depth %d write started before all depth %d directories existed", d+1, d+1)
	}
}

func TestDeepSkipsExistingTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "deep", "f0.txt"), nil, 0o644))

	rec := fsopstest.New()
	cfg := treegen.DeepConfig{Levels: 12, Branching: 2, FilesPerDir: 100, BatchSize: 3000}
	res, err := treegen.Deep(context.Background(), newCreator(rec, 8), root, cfg)
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, int64(4095), res.Dirs)
	assert.Equal(t, int64(409_500), res.Files)
	assert.Zero(t, rec.Writes())
}

func TestDeepMkdirPermissionFailure(t *testing.T) {
	root := t.TempDir()
	rec := fsopstest.New()
	rec.FailMkdir = func(path string) error {
		if filepath.Base(path) == "d1_b1" {
			return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrPermission}
		}
		return nil
	}
	cfg := treegen.DeepConfig{Levels: 4, Branching: 2, FilesPerDir: 2, BatchSize: 10}

	_, err := treegen.Deep(context.Background(), newCreator(rec, 8), root, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrPermission), "got %v", err)

	// Only the root level was written before the failing level.
	assert.Equal(t, int64(2), rec.Writes())
	for _, e := range rec.Events() {
		if e.Op == "write" {
			assert.NotContains(t, e.Path, "d1_b1")
		}
	}
	_, statErr := os.Stat(filepath.Join(root, "deep", "d1_b1"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestDeepWriteFailureStopsRun(t *testing.T) {
	root := t.TempDir()
	rec := fsopstest.New()
	boom := errors.New("disk full")
	rec.FailWrite = func(path string) error {
		if strings.HasSuffix(path, filepath.Join("d1_b0", "f1.txt")) {
			return boom
		}
		return nil
	}
	cfg := treegen.DeepConfig{Levels: 4, Branching: 2, FilesPerDir: 3, BatchSize: 10}

	_, err := treegen.Deep(context.Background(), newCreator(rec, 8), root, cfg)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "build deep level 1")

	for _, e := range rec.Events() {
		if e.Op == "mkdir" {
			assert.NotContains(t, e.Path, "d2_", "level 2 created after a level 1 failure")
		}
	}
}

func TestNodeChildren(t *testing.T) {
	n := treegen.Node{Path: filepath.Join("deep", "d1_b1"), Depth: 1}
	kids := n.Children(3)

	require.Len(t, kids, 3)
	for b, k := range kids {
		assert.Equal(t, 2, k.Depth)
		assert.Equal(t, filepath.Join("deep", "d1_b1", treegen.DeepDirName(2, b)), k.Path)
	}
}

func TestDeepLogsKeepLevelField(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(oldLevel)

	var buf bytes.Buffer
	ctx := logctx.WithLogger(context.Background(), zerolog.New(&buf))
	cfg := treegen.DeepConfig{Levels: 4, Branching: 2, FilesPerDir: 1, BatchSize: 10}

	_, err := treegen.Deep(ctx, newCreator(fsops.OSFS{}, 8), t.TempDir(), cfg)
	require.NoError(t, err)

	var milestones, levelEvents []float64
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))

		level, ok := line["level"].(string)
		require.True(t, ok, "level field overwritten in %v", line)
		assert.Contains(t, []string{"debug", "info"}, level)

		depth, _ := line["depth"].(float64)
		msg, _ := line["message"].(string)
		switch {
		case line["event"] == "level_completed":
			levelEvents = append(levelEvents, depth)
		case strings.HasPrefix(msg, "completed level"):
			milestones = append(milestones, depth)
		}
	}
	assert.Equal(t, []float64{0, 1, 2, 3}, levelEvents)
	assert.Equal(t, []float64{1, 2, 3, 4}, milestones)
}
