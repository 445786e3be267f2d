package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/fileutil"
	"github.com/eunmann/fsfixture/pkg/logging"
)

// Stats counts the rows of an exported inventory.
type Stats struct {
	Dirs  int64
	Files int64
	Bytes int64
}

// Walk calls fn for every entry below root in lexical order. The root itself
// is not reported. Symbolic links are reported as files with their link size.
func Walk(ctx context.Context, root string, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		e := Entry{
			Path:  rel,
			Depth: int32(strings.Count(rel, "/") + 1),
		}
		if d.IsDir() {
			e.Kind = KindDir
		} else {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			e.Kind = KindFile
			e.Size = info.Size()
		}
		return fn(e)
	})
}

// Export writes the inventory of root to outPath in the given format. The
// output appears atomically once complete.
func Export(ctx context.Context, root, outPath string, format Format) (Stats, error) {
	log := logctx.FromContext(ctx).With().Str("phase", "inventory").Logger()
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return Stats{}, fmt.Errorf("stat inventory root: %w", err)
	}
	if !info.IsDir() {
		return Stats{}, fmt.Errorf("inventory root %s is not a directory", root)
	}

	var stats Stats
	err = fileutil.WriteAtomic(outPath, func(w io.Writer) error {
		iw, err := NewWriter(w, format)
		if err != nil {
			return err
		}
		walkErr := Walk(ctx, root, func(e Entry) error {
			if e.Kind == KindDir {
				stats.Dirs++
			} else {
				stats.Files++
				stats.Bytes += e.Size
			}
			return iw.Write(e)
		})
		if walkErr != nil {
			iw.Close()
			return fmt.Errorf("walk %s: %w", root, walkErr)
		}
		return iw.Close()
	})
	if err != nil {
		return stats, err
	}

	logging.PhaseComplete(log, "inventory", time.Since(start)).
		Str("root", root).
		Str("output", outPath).
		Str("format", string(format)).
		Count("dirs", stats.Dirs).
		Count("files", stats.Files).
		Bytes("bytes", stats.Bytes).
		Log("inventory written")
	return stats, nil
}

// OpenFile opens an inventory file, choosing the reader by file name.
func OpenFile(path string) (Reader, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}

	var r Reader
	switch format {
	case FormatParquet:
		var info os.FileInfo
		info, err = f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat inventory: %w", err)
		}
		r, err = NewParquetReader(f, info.Size())
	default:
		r, err = NewCSVReader(f, format == FormatCSVZstd)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{Reader: r, f: f}, nil
}

// ReadAll reads every remaining row of r.
func ReadAll(r Reader) ([]Entry, error) {
	var out []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

type fileReader struct {
	Reader
	f *os.File
}

func (fr *fileReader) Close() error {
	err := fr.Reader.Close()
	if cerr := fr.f.Close(); err == nil {
		err = cerr
	}
	return err
}
