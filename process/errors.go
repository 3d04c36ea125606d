package process

import "time"

// RetryInterval is the build-time constant governing how long a statement
// waits after an advance failure before being retried (§4.5). Chosen in
// the "domain-appropriate order of seconds" the spec calls for. A var, not
// a const, solely so tests can shrink it instead of sleeping for the
// production interval.
var RetryInterval = 10 * time.Second

// setError requires ps.state == Forgotten (§4.5). It records a live error
// with a retry deadline RetryInterval from now.
func (p *Process) setError(ps *Statement) {
	if ps.state != Forgotten {
		panic("process: setError on a non-FORGOTTEN statement")
	}
	ps.haveError = true
	ps.errorUntil = p.now().Add(RetryInterval)
}

// clearError drops any live error on ps.
func (p *Process) clearError(ps *Statement) {
	ps.haveError = false
	ps.errorUntil = time.Time{}
}
