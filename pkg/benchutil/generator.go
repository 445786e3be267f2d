// Package benchutil provides synthetic trees for benchmarks and tests of
// code that reads fixture trees.
package benchutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// FakeFile is one generated file.
type FakeFile struct {
	// Path is relative to the tree root and slash separated.
	Path string
	Size int
	// LinkTo, when set, makes the file a hard link to that earlier path.
	LinkTo string
}

// GeneratorConfig configures synthetic tree generation.
type GeneratorConfig struct {
	// NumFiles is the total number of files to generate.
	NumFiles int
	// Fanout is the number of distinct directory names per level.
	Fanout int
	// MaxDepth is the maximum directory depth of a file.
	MaxDepth int
	// MaxFileSize caps generated file sizes.
	MaxFileSize int
	// HardLinkRatio is the fraction of files that are hard links to an
	// earlier file.
	HardLinkRatio float64
	// Seed for reproducible generation. 0 = use default seed.
	Seed int64
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig(numFiles int) GeneratorConfig {
	return GeneratorConfig{
		NumFiles:      numFiles,
		Fanout:        8,
		MaxDepth:      6,
		MaxFileSize:   64 * 1024,
		HardLinkRatio: 0.05,
		Seed:          BenchmarkSeed,
	}
}

// Generator generates irregular synthetic trees.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a new tree generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = BenchmarkSeed
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate returns the files of one tree. File paths are unique and hard
// links always point at a regular file.
func (g *Generator) Generate() []FakeFile {
	files := make([]FakeFile, 0, g.cfg.NumFiles)
	var originals []int
	for i := 0; i < g.cfg.NumFiles; i++ {
		f := FakeFile{Path: g.generatePath(i), Size: g.generateSize()}
		if len(originals) > 0 && g.rng.Float64() < g.cfg.HardLinkRatio {
			target := files[originals[g.rng.Intn(len(originals))]]
			f.LinkTo = target.Path
			f.Size = target.Size
		} else {
			originals = append(originals, i)
		}
		files = append(files, f)
	}
	return files
}

func (g *Generator) generatePath(i int) string {
	depth := g.rng.Intn(g.cfg.MaxDepth + 1)
	segs := make([]string, 0, depth+1)
	for d := 0; d < depth; d++ {
		segs = append(segs, g.generateSegment(d))
	}
	segs = append(segs, fmt.Sprintf("file_%06d%s", i, g.generateExt()))
	return strings.Join(segs, "/")
}

func (g *Generator) generateSegment(depth int) string {
	n := g.rng.Intn(max(1, g.cfg.Fanout))
	switch g.rng.Intn(3) {
	case 0:
		return fmt.Sprintf("dt=2024-%02d-%02d", 1+n%12, 1+depth)
	case 1:
		return fmt.Sprintf("part_%02d", n)
	default:
		return string(rune('a' + n%26))
	}
}

func (g *Generator) generateExt() string {
	extensions := []string{".json", ".csv", ".txt", ".log", ".dat"}
	return extensions[g.rng.Intn(len(extensions))]
}

func (g *Generator) generateSize() int {
	if g.cfg.MaxFileSize <= 0 {
		return 0
	}
	// Mostly small files, some up to the cap.
	switch g.rng.Intn(10) {
	case 0:
		return 0
	case 1, 2, 3, 4, 5, 6:
		return g.rng.Intn(min(1024, g.cfg.MaxFileSize) + 1)
	default:
		return g.rng.Intn(g.cfg.MaxFileSize + 1)
	}
}

// WriteTree materializes files under root.
func WriteTree(root string, files []FakeFile) error {
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", f.Path, err)
		}
		if f.LinkTo != "" {
			if err := os.Link(filepath.Join(root, filepath.FromSlash(f.LinkTo)), path); err != nil {
				return fmt.Errorf("link %s: %w", f.Path, err)
			}
			continue
		}
		if err := os.WriteFile(path, make([]byte, f.Size), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}
