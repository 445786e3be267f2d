// Package inventory exports listings of fixture trees.
//
// An inventory has one row per directory or file below a root: its slash
// separated path relative to the root, its kind, its size in bytes (zero for
// directories) and its depth (one for direct children of the root). Rows are
// emitted in lexical walk order, so two inventories of identical trees are
// identical.
//
// Three formats are supported: Parquet, CSV, and zstd-compressed CSV.
package inventory

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Entry kinds.
const (
	KindDir  = "dir"
	KindFile = "file"
)

// Entry is one inventory row.
type Entry struct {
	Path  string `parquet:"path"`
	Kind  string `parquet:"kind,dict"`
	Size  int64  `parquet:"size"`
	Depth int32  `parquet:"depth"`
}

// Format is an inventory file format.
type Format string

// Supported formats.
const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatCSVZstd Format = "csv.zst"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatParquet, FormatCSV, FormatCSVZstd:
		return f, nil
	case "csv.zstd", "zst", "zstd":
		return FormatCSVZstd, nil
	default:
		return "", fmt.Errorf("unknown inventory format %q", s)
	}
}

// FormatFromPath infers the format from a file name.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(name, ".csv.zst"), strings.HasSuffix(name, ".csv.zstd"):
		return FormatCSVZstd, nil
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot infer inventory format from %q", path)
	}
}

// Writer writes inventory rows.
type Writer interface {
	// Write appends one row.
	Write(Entry) error
	// Close flushes buffered rows and finalizes the format. It does not
	// close the underlying io.Writer.
	Close() error
}

// Reader reads inventory rows.
type Reader interface {
	// Next returns the next row. Returns io.EOF when done.
	Next() (Entry, error)
	// Close releases resources.
	Close() error
}

// NewWriter returns a Writer encoding format to w.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatParquet:
		return newParquetWriter(w), nil
	case FormatCSV:
		return newCSVWriter(w, nil), nil
	case FormatCSVZstd:
		return newZstdCSVWriter(w)
	default:
		return nil, fmt.Errorf("unknown inventory format %q", format)
	}
}
