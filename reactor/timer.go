package reactor

import (
	"time"

	"github.com/Assada/ncd/logging"
)

// Timer is a single-shot timer keyed to a real-time deadline, re-armable.
// Exactly one Timer is needed per Process (§4.4.3, §9 "Timer as scheduling
// primitive") since only the statement at AP can ever be waiting.
type Timer struct {
	r     *Reactor
	timer *time.Timer
	gen   uint64 // generation counter to ignore a fire from a disarmed timer
}

// NewTimer returns a disarmed Timer bound to r. fn runs on the reactor's
// loop goroutine when the timer fires, never directly on the Go runtime's
// own timer goroutine.
func NewTimer(r *Reactor) *Timer {
	return &Timer{r: r}
}

// Arm schedules fn to run at the given deadline, replacing any previously
// armed fire. If deadline is already in the past, fn still runs through the
// reactor (asynchronously, but as soon as the loop is free) rather than
// synchronously inline, preserving the "always returns to the reactor"
// invariant of §5.
func (t *Timer) Arm(deadline time.Time, fn func()) {
	t.Disarm()
	t.gen++
	gen := t.gen
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	t.timer = time.AfterFunc(d, func() {
		t.r.Post(func() {
			if gen != t.gen {
				logging.Logger(logging.ChannelReactor).Printf("[TRACE] timer: dropping fire superseded by a later Arm/Disarm")
				return
			}
			fn()
		})
	})
}

// Disarm cancels any pending fire. Safe to call when already disarmed.
func (t *Timer) Disarm() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
