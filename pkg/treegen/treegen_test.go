package treegen_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/limiter"
	"github.com/stretchr/testify/require"
)

func newCreator(fsys fsops.Filesystem, capacity int) *fsops.Creator {
	return fsops.NewCreator(fsys, limiter.New(capacity), 4)
}

// countTree walks root and returns the directories (root included) and the
// file count of each directory keyed by path relative to root.
func countTree(t *testing.T, root string) (dirs int, filesPerDir map[string]int) {
	t.Helper()
	filesPerDir = make(map[string]int)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs++
			filesPerDir[rel] += 0
			return nil
		}
		filesPerDir[filepath.Dir(rel)]++
		return nil
	})
	require.NoError(t, err)
	return dirs, filesPerDir
}

func requireContent(t *testing.T, path string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	if !bytes.Equal(got, want) {
		t.Fatalf("%s: content %q, want %q", path, got, want)
	}
}

// depthUnder returns the directory depth of path below base, counting base
// itself as depth 0. For files it is the depth of the parent directory.
func depthUnder(base, path string, isFile bool) int {
	if isFile {
		path = filepath.Dir(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
