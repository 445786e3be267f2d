package logging

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/rs/zerolog"
)

// etaWindow is the number of recent unit durations averaged for the ETA.
const etaWindow = 8

// ProgressTracker counts finished units of work, such as write batches or
// deep tree levels, against a known total. It is safe for concurrent use.
type ProgressTracker struct {
	total int64
	done  atomic.Int64

	mu     sync.Mutex
	recent [etaWindow]time.Duration
	filled int
	next   int
}

// NewProgressTracker returns a tracker for total units.
func NewProgressTracker(total int64) *ProgressTracker {
	return &ProgressTracker{total: total}
}

// RecordCompletion marks one unit done after taking d.
func (pt *ProgressTracker) RecordCompletion(d time.Duration) {
	pt.done.Add(1)

	pt.mu.Lock()
	pt.recent[pt.next] = d
	pt.next = (pt.next + 1) % etaWindow
	if pt.filled < etaWindow {
		pt.filled++
	}
	pt.mu.Unlock()
}

// Done returns the number of completed units.
func (pt *ProgressTracker) Done() int64 { return pt.done.Load() }

// Total returns the planned number of units.
func (pt *ProgressTracker) Total() int64 { return pt.total }

// Percent returns completion in the range [0, 100]. A zero total is complete.
func (pt *ProgressTracker) Percent() float64 {
	if pt.total <= 0 {
		return 100
	}
	return float64(min(pt.done.Load(), pt.total)) * 100 / float64(pt.total)
}

// ETA estimates the time left from the mean of the recent unit durations.
// It is zero before the first completion and after the last.
func (pt *ProgressTracker) ETA() time.Duration {
	left := pt.total - pt.done.Load()
	if left <= 0 {
		return 0
	}

	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.filled == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range pt.recent[:pt.filled] {
		sum += d
	}
	return sum / time.Duration(pt.filled) * time.Duration(left)
}

// CompletionEvent builds a structured log line for a finished phase, batch
// or level. Fields are emitted in the order they were added.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  []func(*zerolog.Event)
}

func newCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{log: log, event: event, phase: phase, elapsed: elapsed}
}

func (ce *CompletionEvent) add(f func(*zerolog.Event)) *CompletionEvent {
	ce.fields = append(ce.fields, f)
	return ce
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) { e.Str(key, val) })
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) { e.Int(key, val) })
}

// Int64 adds an int64 field.
func (ce *CompletionEvent) Int64(key string, val int64) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) { e.Int64(key, val) })
}

// Count adds a count, plus a "_h" companion in pretty mode.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) {
		e.Int64(key, n)
		if IsPrettyMode() {
			e.Str(key+"_h", humanfmt.Count(n))
		}
	})
}

// Bytes adds a byte count, plus a "_h" companion in pretty mode.
func (ce *CompletionEvent) Bytes(key string, n int64) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) {
		e.Int64(key, n)
		if IsPrettyMode() {
			e.Str(key+"_h", humanfmt.Bytes(n))
		}
	})
}

// ProgressFromTracker adds done, total, progress_pct and, when known, the ETA.
// The tracker is read when the event is emitted.
func (ce *CompletionEvent) ProgressFromTracker(pt *ProgressTracker) *CompletionEvent {
	return ce.add(func(e *zerolog.Event) {
		e.Int64("done", pt.Done()).
			Int64("total", pt.Total()).
			Float64("progress_pct", pt.Percent())
		if eta := pt.ETA(); eta > 0 {
			e.Int64("eta_ms", eta.Milliseconds())
			if IsPrettyMode() {
				e.Str("eta_h", humanfmt.Duration(eta))
			}
		}
	})
}

// Throughput adds bytes per second over the event's elapsed time. It adds
// nothing when the elapsed time is zero.
func (ce *CompletionEvent) Throughput(bytes int64) *CompletionEvent {
	if ce.elapsed <= 0 {
		return ce
	}
	elapsed := ce.elapsed
	return ce.add(func(e *zerolog.Event) {
		e.Float64("throughput_bps", float64(bytes)/elapsed.Seconds())
		if IsPrettyMode() {
			e.Str("throughput_h", humanfmt.Throughput(bytes, elapsed))
		}
	})
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	if e == nil {
		return
	}
	e.Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())
	if IsPrettyMode() {
		e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}
	for _, f := range ce.fields {
		f(e)
	}
	e.Msg(msg)
}

// PhaseStarted logs the planned totals of a phase.
func PhaseStarted(log zerolog.Logger, phase string, dirs, files int64) {
	e := log.Info().
		Str("event", "phase_started").
		Str("phase", phase).
		Int64("dirs_planned", dirs).
		Int64("files_planned", files)
	if IsPrettyMode() {
		e = e.Str("dirs_planned_h", humanfmt.Count(dirs)).
			Str("files_planned_h", humanfmt.Count(files))
	}
	e.Msg("phase started")
}

// PhaseComplete starts a "phase_completed" event.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return newCompletionEvent(log, "phase_completed", phase, elapsed)
}

// PhaseSkipped starts a "phase_skipped" event for a phase whose output was
// already present.
func PhaseSkipped(log zerolog.Logger, phase string) *CompletionEvent {
	return newCompletionEvent(log, "phase_skipped", phase, 0)
}

// BatchComplete starts a "batch_completed" event.
func BatchComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return newCompletionEvent(log, "batch_completed", phase, elapsed)
}

// LevelComplete starts a "level_completed" event.
func LevelComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return newCompletionEvent(log, "level_completed", phase, elapsed)
}
