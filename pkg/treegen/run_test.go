package treegen_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/eunmann/fsfixture/pkg/fsops/fsopstest"
	"github.com/eunmann/fsfixture/pkg/metrics"
	"github.com/eunmann/fsfixture/pkg/treegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(root string) treegen.Config {
	cfg := treegen.DefaultConfig()
	cfg.Root = root
	cfg.Concurrency = 4
	cfg.DirWorkers = 2
	cfg.Wide = treegen.WideConfig{Dirs: 3, FilesPerDir: 4, FileSize: 10, BatchSize: 5}
	cfg.Deep = treegen.DeepConfig{Levels: 3, Branching: 2, FilesPerDir: 2, BatchSize: 3}
	return cfg
}

func TestRunBuildsBothTrees(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")
	cfg := smallConfig(root)

	report, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	require.NotNil(t, report.Wide)
	require.NotNil(t, report.Deep)
	assert.Equal(t, int64(12), report.Wide.Files)
	assert.Equal(t, int64(7), report.Deep.Dirs)
	assert.Equal(t, int64(14), report.Deep.Files)

	results := report.Results()
	require.Len(t, results, 2)
	assert.Equal(t, treegen.WideName, results[0].Name)
	assert.Equal(t, treegen.DeepName, results[1].Name)

	wideDirs, _ := countTree(t, filepath.Join(root, "wide"))
	deepDirs, _ := countTree(t, filepath.Join(root, "deep"))
	assert.Equal(t, 4, wideDirs)
	assert.Equal(t, 7, deepDirs)
}

func TestRunSecondRunIsNoop(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	_, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{})
	require.NoError(t, err)

	rec := fsopstest.New()
	report, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{Filesystem: rec})
	require.NoError(t, err)

	assert.True(t, report.Wide.Skipped)
	assert.True(t, report.Deep.Skipped)
	assert.Equal(t, int64(12), report.Wide.Files)
	assert.Equal(t, int64(7), report.Deep.Dirs)
	assert.Zero(t, rec.Writes())
	for _, e := range rec.Events() {
		assert.Equal(t, "mkdirall", e.Op, "unexpected %s %s", e.Op, e.Path)
	}
}

func TestRunOnlyDeep(t *testing.T) {
	root := t.TempDir()
	cfg := smallConfig(root)
	cfg.Only = treegen.DeepName

	report, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{})
	require.NoError(t, err)

	assert.Nil(t, report.Wide)
	require.NotNil(t, report.Deep)
	_, err = os.Stat(filepath.Join(root, "wide"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	cfg.Deep.Branching = 0

	rec := fsopstest.New()
	_, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{Filesystem: rec})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Empty(t, rec.Events())
}

func TestRunStopsAfterWideFailure(t *testing.T) {
	root := t.TempDir()
	cfg := smallConfig(root)
	rec := fsopstest.New()
	rec.FailMkdir = func(path string) error {
		if filepath.Base(path) == "dir_001" {
			return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrPermission}
		}
		return nil
	}

	_, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{Filesystem: rec})
	require.ErrorIs(t, err, fs.ErrPermission)

	assert.Zero(t, rec.Writes())
	_, err = os.Stat(filepath.Join(root, "deep"))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "deep tree started after wide failed")
}

func TestRunCanceledContext(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := fsopstest.New()
	_, err := treegen.Run(ctx, cfg, treegen.RunOptions{Filesystem: rec})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.Writes())
}

func TestRunRecordsMetrics(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	m := metrics.New()

	_, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{Metrics: m})
	require.NoError(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				key := mf.GetName()
				for _, lp := range metric.GetLabel() {
					key += "," + lp.GetName() + "=" + lp.GetValue()
				}
				values[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}

	// 12 wide files plus 14 deep files of 10 and 70 bytes.
	assert.Equal(t, float64(26), values["fsfixture_fs_ops_total,op=write,outcome=ok"])
	assert.Equal(t, float64(12*10+14*70), values["fsfixture_bytes_written_total"])
	// Benchmark root, wide dir and its 3 children, deep root and its 6 descendants.
	assert.Equal(t, float64(12), values["fsfixture_fs_ops_total,op=mkdir,outcome=ok"])
	assert.Equal(t, float64(4), values["fsfixture_write_permits_capacity"])
	assert.Equal(t, float64(0), values["fsfixture_write_permits_in_flight"])
	assert.LessOrEqual(t, values["fsfixture_write_permits_peak"], float64(4))
}
