package treegen

import (
	"context"
	"fmt"
	"time"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/eunmann/fsfixture/pkg/limiter"
	"github.com/eunmann/fsfixture/pkg/metrics"
)

// RunOptions holds the collaborators of Run. The zero value writes to the
// host filesystem without metrics.
type RunOptions struct {
	// Filesystem overrides the host filesystem.
	Filesystem fsops.Filesystem
	// Metrics, when set, records every operation and the limiter occupancy.
	Metrics *metrics.Metrics
	// Preflight runs the advisory resource checks first.
	Preflight bool
}

// Run ensures the benchmark root exists and then builds the wide tree
// followed by the deep tree, as selected by cfg.Only. It stops at the first
// error; a partially built tree is left in place.
func Run(ctx context.Context, cfg Config, opts RunOptions) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid config: %w", err)
	}

	ctx, runID := logctx.WithRunID(ctx)
	ctx = logctx.WithStr(ctx, "root", cfg.Root)
	log := logctx.FromContext(ctx)

	report := Report{RunID: runID, Root: cfg.Root}
	start := time.Now()

	if opts.Preflight {
		Preflight(ctx, cfg)
	}

	fsys := opts.Filesystem
	if fsys == nil {
		fsys = fsops.OSFS{}
	}
	lim := limiter.New(cfg.Concurrency)
	if opts.Metrics != nil {
		fsys = fsops.WithMonitoring(fsys, opts.Metrics)
		if err := opts.Metrics.RegisterLimiter(lim); err != nil {
			return report, err
		}
	}
	c := fsops.NewCreator(fsys, lim, cfg.DirWorkers)

	if err := fsys.MkdirAll(cfg.Root, fsops.DirPerm); err != nil {
		return report, fmt.Errorf("create benchmark root: %w", err)
	}

	log.Info().
		Int("concurrency", lim.Capacity()).
		Str("only", cfg.Only).
		Msg("starting fixture generation")

	if cfg.WantWide() {
		res, err := Wide(ctx, c, cfg.Root, cfg.Wide)
		if err != nil {
			return report, err
		}
		report.Wide = &res
	}
	if cfg.WantDeep() {
		res, err := Deep(ctx, c, cfg.Root, cfg.Deep)
		if err != nil {
			return report, err
		}
		report.Deep = &res
	}

	report.Elapsed = time.Since(start)
	stats := lim.Stats()
	log.Info().
		Dur("elapsed", report.Elapsed).
		Str("elapsed_h", humanfmt.Duration(report.Elapsed)).
		Int64("writes", stats.Acquired).
		Int("peak_in_flight", stats.Peak).
		Msg("fixture generation complete")
	return report, nil
}
