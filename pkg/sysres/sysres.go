// Package sysres reads host resource limits relevant to fixture generation:
// free space on the target filesystem and the open file descriptor limit.
//
// Detection is platform specific. On unsupported platforms every probe
// reports Reliable=false and callers should skip the related check.
package sysres

import (
	"os"
	"path/filepath"
)

// Disk describes the filesystem holding a path.
type Disk struct {
	// Path is the existing path that was probed. It may be an ancestor of
	// the requested path when that does not exist yet.
	Path string
	// FreeBytes is the space available to unprivileged users.
	FreeBytes uint64
	// BlockSize is the filesystem's preferred block size.
	BlockSize uint64
	// Reliable is false when detection failed or is unsupported.
	Reliable bool
}

// DiskFor probes the filesystem that path lives on, walking up to the
// nearest existing ancestor when path does not exist yet.
func DiskFor(path string) Disk {
	p := nearestExisting(path)
	free, bsize, ok := diskFree(p)
	if !ok {
		return Disk{Path: p}
	}
	return Disk{Path: p, FreeBytes: free, BlockSize: bsize, Reliable: true}
}

// FDLimit is the process's open file descriptor limit.
type FDLimit struct {
	Soft     uint64
	Hard     uint64
	Reliable bool
}

// OpenFiles returns the RLIMIT_NOFILE limits of the current process.
func OpenFiles() FDLimit {
	soft, hard, ok := openFileLimit()
	if !ok {
		return FDLimit{}
	}
	return FDLimit{Soft: soft, Hard: hard, Reliable: true}
}

func nearestExisting(path string) string {
	p := filepath.Clean(path)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
