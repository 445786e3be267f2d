package inventory_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eunmann/fsfixture/pkg/inventory"
	"github.com/eunmann/fsfixture/pkg/treegen"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	cfg := treegen.DefaultConfig()
	cfg.Root = root
	cfg.Concurrency = 4
	cfg.Wide = treegen.WideConfig{Dirs: 2, FilesPerDir: 3, FileSize: 100, BatchSize: 10}
	cfg.Deep = treegen.DeepConfig{Levels: 3, Branching: 2, FilesPerDir: 1, BatchSize: 10}
	_, err := treegen.Run(context.Background(), cfg, treegen.RunOptions{})
	require.NoError(t, err)
	return root
}

func TestWalk(t *testing.T) {
	root := buildFixture(t)

	var entries []inventory.Entry
	err := inventory.Walk(context.Background(), root, func(e inventory.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)

	// wide: 1 + 2 dirs, 6 files; deep: 7 dirs, 7 files.
	require.Len(t, entries, 3+6+7+7)

	byPath := map[string]inventory.Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, inventory.Entry{Path: "wide", Kind: inventory.KindDir, Depth: 1}, byPath["wide"])
	assert.Equal(t, inventory.Entry{Path: "wide/dir_001/file_002.txt", Kind: inventory.KindFile, Size: 100, Depth: 3},
		byPath["wide/dir_001/file_002.txt"])
	assert.Equal(t, inventory.Entry{Path: "deep/d1_b1/d2_b0/f0.txt", Kind: inventory.KindFile, Size: 70, Depth: 4},
		byPath["deep/d1_b1/d2_b0/f0.txt"])

	for i := 1; i < len(entries); i++ {
		assert.Less(t, filepath.FromSlash(entries[i-1].Path), filepath.FromSlash(entries[i].Path))
	}
}

func TestExportRoundTrip(t *testing.T) {
	root := buildFixture(t)
	var want []inventory.Entry
	require.NoError(t, inventory.Walk(context.Background(), root, func(e inventory.Entry) error {
		want = append(want, e)
		return nil
	}))

	for _, tc := range []struct {
		name   string
		format inventory.Format
	}{
		{"inv.parquet", inventory.FormatParquet},
		{"inv.csv", inventory.FormatCSV},
		{"inv.csv.zst", inventory.FormatCSVZstd},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), tc.name)

			stats, err := inventory.Export(context.Background(), root, out, tc.format)
			require.NoError(t, err)
			assert.Equal(t, inventory.Stats{Dirs: 10, Files: 13, Bytes: 6*100 + 7*70}, stats)

			r, err := inventory.OpenFile(out)
			require.NoError(t, err)
			defer r.Close()

			got, err := inventory.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = os.Stat(out + ".tmp")
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestParquetExportReadableByParquetGo(t *testing.T) {
	root := buildFixture(t)
	out := filepath.Join(t.TempDir(), "inv.parquet")

	_, err := inventory.Export(context.Background(), root, out, inventory.FormatParquet)
	require.NoError(t, err)

	rows, err := parquet.ReadFile[inventory.Entry](out)
	require.NoError(t, err)
	assert.Len(t, rows, 23)
}

func TestCSVFormat(t *testing.T) {
	var buf bytes.Buffer
	w, err := inventory.NewWriter(&buf, inventory.FormatCSV)
	require.NoError(t, err)
	require.NoError(t, w.Write(inventory.Entry{Path: "a,b", Kind: inventory.KindFile, Size: 3, Depth: 1}))
	require.NoError(t, w.Close())

	assert.Equal(t, "path,kind,size,depth\n\"a,b\",file,3,1\n", buf.String())
}

func TestEmptyCSV(t *testing.T) {
	var buf bytes.Buffer
	w, err := inventory.NewWriter(&buf, inventory.FormatCSVZstd)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := inventory.NewCSVReader(&buf, true)
	require.NoError(t, err)
	got, err := inventory.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportRootNotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := inventory.Export(context.Background(), file, filepath.Join(t.TempDir(), "x.csv"), inventory.FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestExportCanceled(t *testing.T) {
	root := buildFixture(t)
	out := filepath.Join(t.TempDir(), "inv.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inventory.Export(ctx, root, out, inventory.FormatCSV)
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    inventory.Format
		wantErr bool
	}{
		{"parquet", inventory.FormatParquet, false},
		{"CSV", inventory.FormatCSV, false},
		{"csv.zst", inventory.FormatCSVZstd, false},
		{"zstd", inventory.FormatCSVZstd, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		got, err := inventory.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]inventory.Format{
		"/x/inv.parquet":   inventory.FormatParquet,
		"inv.CSV":          inventory.FormatCSV,
		"inv.csv.zst":      inventory.FormatCSVZstd,
		"dir/inv.csv.zstd": inventory.FormatCSVZstd,
	}
	for path, want := range tests {
		got, err := inventory.FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := inventory.FormatFromPath("inv.txt")
	assert.Error(t, err)
}
