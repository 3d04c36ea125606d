// Package reactor implements the single-threaded cooperative event loop
// the process engine and daemon controller run on (§5 of the spec). All
// state transitions, timer fires, and module callbacks are expected to
// execute one at a time, run to completion, on the reactor's own
// goroutine; anything arriving from another goroutine must be marshaled in
// through Post.
package reactor

import "sync"

// Reactor is a single-goroutine work-item dispatcher. The zero value is not
// usable; construct with New.
type Reactor struct {
	workCh chan func()
	doneCh chan struct{}

	stopOnce sync.Once
}

// New returns a Reactor ready to Run.
func New() *Reactor {
	return &Reactor{
		workCh: make(chan func(), 64),
		doneCh: make(chan struct{}),
	}
}

// Post schedules fn to run on the reactor's loop goroutine. Safe to call
// from any goroutine, including from within a work item itself (fn is
// queued, never called re-entrantly).
func (r *Reactor) Post(fn func()) {
	select {
	case r.workCh <- fn:
	case <-r.doneCh:
	}
}

// Run drains the work queue until Stop is called. It must be called from
// exactly one goroutine, and that goroutine is the "reactor thread" every
// other package's single-threading assumptions refer to.
func (r *Reactor) Run() {
	for {
		select {
		case fn := <-r.workCh:
			fn()
		case <-r.doneCh:
			r.drain()
			return
		}
	}
}

// drain runs any work items already queued at the moment Stop fires, but
// schedules no new timers. A Post that arrives after Stop may be dropped.
func (r *Reactor) drain() {
	for {
		select {
		case fn := <-r.workCh:
			fn()
		default:
			return
		}
	}
}

// Stop requests Run to return once the currently queued work items have
// drained. Idempotent.
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() { close(r.doneCh) })
}
