package treegen

import (
	"context"
	"fmt"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/eunmann/fsfixture/pkg/sysres"
)

// fdHeadroom is the number of descriptors reserved beyond the write permits
// for directory handles, the log file and the runtime.
const fdHeadroom = 64

// defaultBlockSize is assumed when the filesystem block size is unknown.
const defaultBlockSize = 4096

// PreflightReport is the outcome of Preflight.
type PreflightReport struct {
	// NeededBytes is the estimated allocation of the selected trees.
	NeededBytes int64
	Disk        sysres.Disk
	FDs         sysres.FDLimit
	// Warnings lists every failed check. An empty list means all checks
	// passed or could not be performed.
	Warnings []string
}

// EstimateBytes returns the space the selected trees would allocate with
// the given block size. Every file and directory is charged whole blocks.
func EstimateBytes(cfg Config, blockSize int64) int64 {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	blocks := func(size int64) int64 {
		if size == 0 {
			return 0
		}
		return (size + blockSize - 1) / blockSize * blockSize
	}

	var total int64
	if cfg.WantWide() {
		total += cfg.Wide.TotalFiles()*blocks(int64(cfg.Wide.FileSize)) + int64(cfg.Wide.Dirs+1)*blockSize
	}
	if cfg.WantDeep() {
		total += cfg.Deep.TotalFiles()*blocks(int64(len(DeepPayload()))) + cfg.Deep.TotalDirs()*blockSize
	}
	return total
}

// Preflight checks free space and the descriptor limit against cfg and logs
// a warning for each check that fails. It never fails the run.
func Preflight(ctx context.Context, cfg Config) PreflightReport {
	log := logctx.FromContext(ctx).With().Str("phase", "preflight").Logger()

	r := PreflightReport{
		Disk: sysres.DiskFor(cfg.Root),
		FDs:  sysres.OpenFiles(),
	}
	r.NeededBytes = EstimateBytes(cfg, int64(r.Disk.BlockSize))

	if r.Disk.Reliable && uint64(r.NeededBytes) > r.Disk.FreeBytes {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"estimated %s needed but only %s free on %s",
			humanfmt.Bytes(r.NeededBytes), humanfmt.Bytes(int64(r.Disk.FreeBytes)), r.Disk.Path))
	}
	if r.FDs.Reliable {
		need := uint64(cfg.Concurrency) + fdHeadroom
		if need > r.FDs.Soft {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"open file limit %d is below %d write permits plus %d headroom",
				r.FDs.Soft, cfg.Concurrency, fdHeadroom))
		}
	}

	for _, w := range r.Warnings {
		log.Warn().Msg(w)
	}
	log.Debug().
		Int64("needed_bytes", r.NeededBytes).
		Uint64("free_bytes", r.Disk.FreeBytes).
		Bool("disk_reliable", r.Disk.Reliable).
		Uint64("fd_soft_limit", r.FDs.Soft).
		Bool("fd_reliable", r.FDs.Reliable).
		Int("warnings", len(r.Warnings)).
		Msg("preflight complete")
	return r
}
