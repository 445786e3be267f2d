//go:build linux || darwin || freebsd

package duscan

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// lstatBlocks returns the allocated 512-byte blocks and inode of path
// without following symlinks.
func lstatBlocks(path string) (int64, uint64, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return 0, 0, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return int64(st.Blocks), uint64(st.Ino), nil
}
