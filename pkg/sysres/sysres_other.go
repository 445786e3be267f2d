//go:build !linux && !darwin && !freebsd

package sysres

// diskFree is unsupported on this platform.
func diskFree(string) (uint64, uint64, bool) {
	return 0, 0, false
}

// openFileLimit is unsupported on this platform.
func openFileLimit() (uint64, uint64, bool) {
	return 0, 0, false
}
