// Package treegen builds the wide and deep benchmark fixture trees.
//
// Both generators write through an fsops.Creator, so directory creation runs
// on a bounded worker pool and every file write holds a limiter permit.
// A generator whose target subtree already exists and is non-empty is
// skipped without inspecting the subtree further.
package treegen

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eunmann/fsfixture/pkg/limiter"
)

// Subtree names under the benchmark root.
const (
	WideName = "wide"
	DeepName = "deep"
)

// Defaults.
const (
	DefaultRoot = "temp"

	DefaultWideDirs        = 500
	DefaultWideFilesPerDir = 500
	DefaultWideFileSize    = 100
	DefaultWideBatchSize   = 10_000

	DefaultDeepLevels      = 12
	DefaultDeepBranching   = 2
	DefaultDeepFilesPerDir = 100
	DefaultDeepBatchSize   = 3_000
)

// Filler content.
const (
	wideFillByte   = 'x'
	deepFillString = "content"
	deepFillRepeat = 10
)

// WideConfig configures the wide tree.
type WideConfig struct {
	// Dirs is the number of sibling directories.
	Dirs int
	// FilesPerDir is the number of files in each directory.
	FilesPerDir int
	// FileSize is the payload length of every file in bytes.
	FileSize int
	// BatchSize is the number of write tasks submitted before waiting.
	BatchSize int
}

// DeepConfig configures the deep tree.
type DeepConfig struct {
	// Levels is the tree depth; the root is level 0.
	Levels int
	// Branching is the number of children of every non-leaf directory.
	Branching int
	// FilesPerDir is the number of files in every directory.
	FilesPerDir int
	// BatchSize caps the write tasks submitted together for one directory.
	BatchSize int
}

// Config configures a full generation run.
type Config struct {
	// Root is the benchmark root directory.
	Root string
	// Concurrency is the write permit capacity.
	Concurrency int
	// DirWorkers is the size of the directory-creation pool (0 = default).
	DirWorkers int
	// Only restricts the run to one generator ("wide" or "deep"); empty runs both.
	Only string

	Wide WideConfig
	Deep DeepConfig
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Root:        DefaultRoot,
		Concurrency: limiter.DefaultCapacity,
		Wide: WideConfig{
			Dirs:        DefaultWideDirs,
			FilesPerDir: DefaultWideFilesPerDir,
			FileSize:    DefaultWideFileSize,
			BatchSize:   DefaultWideBatchSize,
		},
		Deep: DeepConfig{
			Levels:      DefaultDeepLevels,
			Branching:   DefaultDeepBranching,
			FilesPerDir: DefaultDeepFilesPerDir,
			BatchSize:   DefaultDeepBatchSize,
		},
	}
}

// Validate checks that the configuration can be run.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.DirWorkers < 0 {
		errs = append(errs, fmt.Errorf("dir workers must not be negative, got %d", c.DirWorkers))
	}
	switch c.Only {
	case "", WideName, DeepName:
	default:
		errs = append(errs, fmt.Errorf("only must be %q or %q, got %q", WideName, DeepName, c.Only))
	}
	if err := c.Wide.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Deep.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the wide configuration.
func (w WideConfig) Validate() error {
	switch {
	case w.Dirs <= 0:
		return fmt.Errorf("wide dirs must be positive, got %d", w.Dirs)
	case w.FilesPerDir < 0:
		return fmt.Errorf("wide files per dir must not be negative, got %d", w.FilesPerDir)
	case w.FileSize < 0:
		return fmt.Errorf("wide file size must not be negative, got %d", w.FileSize)
	case w.BatchSize <= 0:
		return fmt.Errorf("wide batch size must be positive, got %d", w.BatchSize)
	}
	return nil
}

// Validate checks the deep configuration.
func (d DeepConfig) Validate() error {
	switch {
	case d.Levels <= 0:
		return fmt.Errorf("deep levels must be positive, got %d", d.Levels)
	case d.Branching <= 0:
		return fmt.Errorf("deep branching must be positive, got %d", d.Branching)
	case d.FilesPerDir < 0:
		return fmt.Errorf("deep files per dir must not be negative, got %d", d.FilesPerDir)
	case d.BatchSize <= 0:
		return fmt.Errorf("deep batch size must be positive, got %d", d.BatchSize)
	}
	return nil
}

// WantWide reports whether the wide generator is selected.
func (c Config) WantWide() bool { return c.Only == "" || c.Only == WideName }

// WantDeep reports whether the deep generator is selected.
func (c Config) WantDeep() bool { return c.Only == "" || c.Only == DeepName }

// TotalFiles returns the number of files in the wide tree.
func (w WideConfig) TotalFiles() int64 {
	return int64(w.Dirs) * int64(w.FilesPerDir)
}

// TotalBytes returns the payload bytes of the wide tree.
func (w WideConfig) TotalBytes() int64 {
	return w.TotalFiles() * int64(w.FileSize)
}

// Payload returns the content written to every wide file.
func (w WideConfig) Payload() []byte {
	return bytes.Repeat([]byte{wideFillByte}, w.FileSize)
}

// TotalDirs returns Σ Branching^level for level in [0, Levels).
func (d DeepConfig) TotalDirs() int64 {
	var total, width int64 = 0, 1
	for level := 0; level < d.Levels; level++ {
		total += width
		width *= int64(d.Branching)
	}
	return total
}

// TotalFiles returns the number of files in the deep tree.
func (d DeepConfig) TotalFiles() int64 {
	return d.TotalDirs() * int64(d.FilesPerDir)
}

// TotalBytes returns the payload bytes of the deep tree.
func (d DeepConfig) TotalBytes() int64 {
	return d.TotalFiles() * int64(len(DeepPayload()))
}

// DeepPayload returns the content written to every deep file.
func DeepPayload() []byte {
	return bytes.Repeat([]byte(deepFillString), deepFillRepeat)
}

// WideDirName returns the name of the i-th wide directory.
func WideDirName(i int) string { return fmt.Sprintf("dir_%03d", i) }

// WideFileName returns the name of the j-th file in a wide directory.
func WideFileName(j int) string { return fmt.Sprintf("file_%03d.txt", j) }

// DeepDirName returns the name of a deep directory at depth with the given
// branch index under its parent.
func DeepDirName(depth, branch int) string { return fmt.Sprintf("d%d_b%d", depth, branch) }

// DeepFileName returns the name of the i-th file in a deep directory.
func DeepFileName(i int) string { return fmt.Sprintf("f%d.txt", i) }

// WidePath returns the wide subtree path under root.
func WidePath(root string) string { return filepath.Join(root, WideName) }

// DeepPath returns the deep subtree path under root.
func DeepPath(root string) string { return filepath.Join(root, DeepName) }
