package treegen

import (
	"context"
	"time"

	"github.com/eunmann/fsfixture/pkg/fsops"
	"github.com/eunmann/fsfixture/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type fileTask struct {
	path string
	data []byte
}

// writeFiles writes all tasks concurrently and waits for them. Each write
// holds a limiter permit; the first error cancels writes not yet started.
func writeFiles(ctx context.Context, c *fsops.Creator, tasks []fileTask) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			return c.CreateFile(ctx, t.path, t.data)
		})
	}
	return g.Wait()
}

// batcher accumulates write tasks and drains them in fixed-size batches,
// waiting for each batch before accepting more. It bounds the number of
// pending tasks independently of the limiter's bound on running writes.
type batcher struct {
	ctx     context.Context
	c       *fsops.Creator
	size    int
	pending []fileTask

	log     zerolog.Logger
	phase   string
	tracker *logging.ProgressTracker
	batches int
}

func newBatcher(ctx context.Context, c *fsops.Creator, size int, totalTasks int64, log zerolog.Logger, phase string) *batcher {
	totalBatches := (totalTasks + int64(size) - 1) / int64(size)
	return &batcher{
		ctx:     ctx,
		c:       c,
		size:    size,
		pending: make([]fileTask, 0, size),
		log:     log,
		phase:   phase,
		tracker: logging.NewProgressTracker(totalBatches),
	}
}

// add queues one task, draining the batch when it is full.
func (b *batcher) add(path string, data []byte) error {
	b.pending = append(b.pending, fileTask{path: path, data: data})
	if len(b.pending) >= b.size {
		return b.flush()
	}
	return nil
}

// flush writes and waits for all pending tasks.
func (b *batcher) flush() error {
	if len(b.pending) == 0 {
		return nil
	}

	start := time.Now()
	if err := writeFiles(b.ctx, b.c, b.pending); err != nil {
		return err
	}
	elapsed := time.Since(start)

	b.batches++
	b.tracker.RecordCompletion(elapsed)

	var bytes int64
	for _, t := range b.pending {
		bytes += int64(len(t.data))
	}
	logging.BatchComplete(b.log, b.phase, elapsed).
		Int("batch", b.batches).
		Int("files", len(b.pending)).
		Bytes("bytes", bytes).
		ProgressFromTracker(b.tracker).
		Throughput(bytes).
		LogDebug("write batch complete")

	b.pending = b.pending[:0]
	return nil
}
