package rtspd

import "time"

// Scheduler is the narrow contract between the core and its host's event
// loop (spec.md §5, formalized in SPEC_FULL.md §12). The only primitive
// tests need to control deterministically is the delayed one-shot task
// used for liveness reclamation; readable-handler registration is played
// by Go's own goroutine-per-connection scheduling instead of a second
// interface method.
type Scheduler interface {
	// ScheduleOnce arranges for fn to run once after d elapses. The
	// returned cancel function is idempotent and safe to call even after
	// fn has already run.
	ScheduleOnce(d time.Duration, fn func()) (cancel func())
}

// realScheduler is the default Scheduler, a thin wrapper over
// time.AfterFunc.
type realScheduler struct{}

// NewScheduler returns the production Scheduler used when a Server is not
// given one explicitly.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) ScheduleOnce(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
