// Package fsops provides the idempotent directory and file creators used by
// the tree generators, together with the Filesystem abstraction they run on.
package fsops

import (
	"io/fs"
	"os"
)

// Default permissions for created entries.
const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// Filesystem is the set of blocking primitives the creators need.
// OSFS is the production implementation; tests substitute doubles.
type Filesystem interface {
	// Mkdir creates a single directory. Returns an error wrapping
	// fs.ErrExist if the path already exists.
	Mkdir(path string, perm os.FileMode) error
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm os.FileMode) error
	// WriteFile creates or truncates path and writes data to it.
	WriteFile(path string, data []byte, perm os.FileMode) error
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists the entries of a directory.
	ReadDir(path string) ([]fs.DirEntry, error)
}

// OSFS implements Filesystem on the host filesystem.
type OSFS struct{}

// Mkdir implements Filesystem.
func (OSFS) Mkdir(path string, perm os.FileMode) error { return os.Mkdir(path, perm) }

// MkdirAll implements Filesystem.
func (OSFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// WriteFile implements Filesystem.
func (OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Stat implements Filesystem.
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// ReadDir implements Filesystem.
func (OSFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }
