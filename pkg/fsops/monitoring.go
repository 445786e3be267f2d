package fsops

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/eunmann/fsfixture/pkg/metrics"
)

// WithMonitoring wraps a Filesystem so every mkdir and write is counted and
// timed on m.
func WithMonitoring(fsys Filesystem, m *metrics.Metrics) Filesystem {
	return &monitoringFilesystem{
		wrapped: fsys,
		m:       m,
	}
}

type monitoringFilesystem struct {
	wrapped Filesystem
	m       *metrics.Metrics
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, fs.ErrExist):
		return metrics.OutcomeExists
	default:
		return metrics.OutcomeError
	}
}

func (mfs *monitoringFilesystem) Mkdir(path string, perm os.FileMode) error {
	start := time.Now()
	err := mfs.wrapped.Mkdir(path, perm)
	mfs.m.ObserveOp(metrics.OpMkdir, outcome(err), start)
	return err
}

func (mfs *monitoringFilesystem) MkdirAll(path string, perm os.FileMode) error {
	start := time.Now()
	err := mfs.wrapped.MkdirAll(path, perm)
	mfs.m.ObserveOp(metrics.OpMkdir, outcome(err), start)
	return err
}

func (mfs *monitoringFilesystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	start := time.Now()
	err := mfs.wrapped.WriteFile(path, data, perm)
	mfs.m.ObserveOp(metrics.OpWrite, outcome(err), start)
	if err == nil {
		mfs.m.AddBytes(len(data))
	}
	return err
}

func (mfs *monitoringFilesystem) Stat(path string) (fs.FileInfo, error) {
	return mfs.wrapped.Stat(path)
}

func (mfs *monitoringFilesystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return mfs.wrapped.ReadDir(path)
}
