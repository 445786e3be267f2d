//go:build linux || darwin || freebsd

package sysres

import "golang.org/x/sys/unix"

// diskFree returns available bytes and block size using statfs.
func diskFree(path string) (uint64, uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, false
	}
	bsize := uint64(st.Bsize)
	return uint64(st.Bavail) * bsize, bsize, true
}

// openFileLimit returns the soft and hard RLIMIT_NOFILE values.
func openFileLimit() (uint64, uint64, bool) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0, 0, false
	}
	return uint64(rl.Cur), uint64(rl.Max), true
}
