// Package fsopstest provides Filesystem doubles for testing code built on
// fsops.
package fsopstest

import (
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eunmann/fsfixture/pkg/fsops"
)

// Event is one recorded mutating call.
type Event struct {
	Seq  int64
	Op   string // "mkdir", "mkdirall", "write"
	Path string
	// Done is true for the completion record of a write; writes produce a
	// start and a done event so overlap can be reconstructed.
	Done bool
}

// RecordingFS forwards to an underlying Filesystem while recording every
// mutating call in order, tracking write concurrency, and injecting faults.
type RecordingFS struct {
	Base fsops.Filesystem

	// WriteDelay is slept inside every write, widening the window in which
	// concurrent writes overlap.
	WriteDelay time.Duration

	// FailMkdir, when set, is consulted before every Mkdir; a non-nil
	// result is returned instead of creating the directory.
	FailMkdir func(path string) error
	// FailWrite is the WriteFile counterpart of FailMkdir.
	FailWrite func(path string) error

	mu     sync.Mutex
	seq    int64
	events []Event

	activeWrites atomic.Int64
	maxWrites    atomic.Int64
	writes       atomic.Int64
}

// New returns a RecordingFS over the host filesystem.
func New() *RecordingFS {
	return &RecordingFS{Base: fsops.OSFS{}}
}

func (r *RecordingFS) record(op, path string, done bool) {
	r.mu.Lock()
	r.seq++
	r.events = append(r.events, Event{Seq: r.seq, Op: op, Path: path, Done: done})
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in call order.
func (r *RecordingFS) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// MaxConcurrentWrites returns the highest number of overlapping writes seen.
func (r *RecordingFS) MaxConcurrentWrites() int64 {
	return r.maxWrites.Load()
}

// Writes returns the number of WriteFile calls that reached the double.
func (r *RecordingFS) Writes() int64 {
	return r.writes.Load()
}

// Mkdir implements fsops.Filesystem.
func (r *RecordingFS) Mkdir(path string, perm os.FileMode) error {
	r.record("mkdir", path, false)
	if r.FailMkdir != nil {
		if err := r.FailMkdir(path); err != nil {
			return err
		}
	}
	return r.Base.Mkdir(path, perm)
}

// MkdirAll implements fsops.Filesystem.
func (r *RecordingFS) MkdirAll(path string, perm os.FileMode) error {
	r.record("mkdirall", path, false)
	return r.Base.MkdirAll(path, perm)
}

// WriteFile implements fsops.Filesystem.
func (r *RecordingFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	r.writes.Add(1)
	n := r.activeWrites.Add(1)
	defer r.activeWrites.Add(-1)
	for {
		m := r.maxWrites.Load()
		if n <= m || r.maxWrites.CompareAndSwap(m, n) {
			break
		}
	}

	r.record("write", path, false)
	defer r.record("write", path, true)

	if r.FailWrite != nil {
		if err := r.FailWrite(path); err != nil {
			return err
		}
	}
	if r.WriteDelay > 0 {
		time.Sleep(r.WriteDelay)
	}
	return r.Base.WriteFile(path, data, perm)
}

// Stat implements fsops.Filesystem.
func (r *RecordingFS) Stat(path string) (fs.FileInfo, error) {
	return r.Base.Stat(path)
}

// ReadDir implements fsops.Filesystem.
func (r *RecordingFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return r.Base.ReadDir(path)
}
