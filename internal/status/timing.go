package status

import (
	"fmt"
	"io"
	"time"
)

// stageTiming records one stage's wall-clock elapsed time.
type stageTiming struct {
	stage   Stage
	label   string
	elapsed time.Duration
}

// VerboseTimingReporter wraps a Reporter, recording per-stage wall-clock
// elapsed time between a stage's start event and either the next stage's
// start or a Done() call, then flushing a localised summary at completion.
// Now is injectable so tests can supply a deterministic clock.
type VerboseTimingReporter struct {
	Inner Reporter
	Out   io.Writer
	Loc   Localizer
	Now   func() time.Time

	started   bool
	complete  bool
	pending   Event
	pendingAt time.Time
	timings   []stageTiming
}

func (r *VerboseTimingReporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Stage forwards ev to Inner and closes out the timing window for whichever
// stage was previously open.
func (r *VerboseTimingReporter) Stage(ev Event) {
	r.closeOpenStage()
	r.pending = ev
	r.pendingAt = r.now()
	r.started = true
	if r.Inner != nil {
		r.Inner.Stage(ev)
	}
}

// Task forwards to Inner unchanged; task progress does not participate in
// stage timing.
func (r *VerboseTimingReporter) Task(current, total uint32, description string) {
	if r.Inner != nil {
		r.Inner.Task(current, total, description)
	}
}

// Done closes out any open stage timing and flushes the summary. Completion
// is idempotent: a second call is a no-op.
func (r *VerboseTimingReporter) Done() {
	if r.complete {
		return
	}
	r.closeOpenStage()
	r.complete = true
	if r.Inner != nil {
		r.Inner.Done()
	}
	r.flush()
}

func (r *VerboseTimingReporter) closeOpenStage() {
	if !r.started || r.complete {
		return
	}
	elapsed := r.now().Sub(r.pendingAt)
	r.timings = append(r.timings, stageTiming{
		stage:   r.pending.Stage,
		label:   r.pending.Description,
		elapsed: elapsed,
	})
}

func (r *VerboseTimingReporter) flush() {
	if r.Out == nil || r.Loc == nil {
		return
	}
	var total time.Duration
	for _, t := range r.timings {
		total += t.elapsed
		fmt.Fprintln(r.Out, r.Loc.T("status.timing.stage", t.label, t.elapsed.Round(time.Millisecond).String()))
	}
	fmt.Fprintln(r.Out, r.Loc.T("status.timing.summary", total.Round(time.Millisecond).String()))
}
