package process

import (
	"time"

	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/value"
)

// Statement is the runtime instance of a StatementTemplate within a
// Process (§3). Its index in the owning Process's stmts slice is stable
// for its lifetime, and is how module-instance callbacks find their way
// back (§9, "arena-plus-index").
type Statement struct {
	Template *StatementTemplate
	i        int

	state State

	haveError  bool
	errorUntil time.Time

	instance module.Instance
	args     []value.Value
}

// Index returns the statement's stable position in its process.
func (s *Statement) Index() int { return s.i }

// State returns the statement's current state.
func (s *Statement) State() State { return s.state }

// HaveError reports whether the statement is carrying a live error (§4.5).
func (s *Statement) HaveError() bool { return s.haveError }

// ErrorUntil returns the retry deadline recorded by setError. Only
// meaningful when HaveError is true.
func (s *Statement) ErrorUntil() time.Time { return s.errorUntil }

// Name returns the statement template's local name, or "" if unnamed.
func (s *Statement) Name() string { return s.Template.Name }
