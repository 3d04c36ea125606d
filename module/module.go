// Package module defines the capability set the process engine depends on:
// a module type's lifecycle hooks, and the two callbacks a live instance
// uses to report state back into the engine. Concrete module types live
// under modules/; this package only fixes the contract between them and
// the engine.
package module

import (
	"context"

	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/value"
)

// EventCode is one of the three state transitions a live instance may
// report spontaneously.
type EventCode int

const (
	// Up reports that the instance has become live.
	Up EventCode = iota
	// Down reports that a previously live instance has stopped being live,
	// without yet terminating.
	Down
	// Dying reports that the instance has begun terminating on its own,
	// before the engine asked it to.
	Dying
)

func (e EventCode) String() string {
	switch e {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// Callbacks is the pair of callbacks a live Instance uses to report state
// back into the engine. Both are safe to call synchronously from inside
// NewInstance or Die, and from any other goroutine — implementations must
// marshal onto the Reactor themselves (see InitInput.Reactor).
type Callbacks struct {
	// Event reports a spontaneous UP, DOWN, or DYING transition.
	Event func(EventCode)
	// Died reports that the instance has fully terminated, following a Die
	// request or a spontaneous DYING. isError indicates whether the
	// instance's own termination should be treated as a failure for the
	// purposes of the engine's retry bookkeeping.
	Died func(isError bool)
}

// InitInput carries everything a module type needs to create an instance.
type InitInput struct {
	// StatementName is the local name of the statement being instantiated,
	// if it has one.
	StatementName string
	// Args is the materialized argument list for this statement (§4.4.2).
	Args []value.Value
	// LogPrefix is "process <pname>: statement <i>: module: ", per §6.
	LogPrefix string
	// Reactor is the single-threaded event loop the instance must marshal
	// its callbacks and any background work onto.
	Reactor *reactor.Reactor
	// Callbacks are the instance's link back into the engine.
	Callbacks Callbacks
}

// Instance is a live realization of a module for one statement.
type Instance interface {
	// Die asks the instance to begin terminating. The instance must
	// eventually call InitInput.Callbacks.Died, possibly synchronously
	// from within Die itself.
	Die(ctx context.Context)
	// Free releases any resources held by a terminated instance. Called
	// exactly once, after Died has been observed.
	Free()
	// GetVar resolves a variable path against the instance's current
	// state. Called only while the instance is ADULT.
	GetVar(path string) (value.Value, error)
}

// Module is a module type: a factory for Instances, keyed by name in a
// Registry.
type Module interface {
	// Type returns the module's dotted type name, e.g. "process.exec".
	Type() string
	// GlobalInit runs once at daemon start, before any instance of this
	// type is created. A module type with no global state may return nil
	// without doing anything.
	GlobalInit() error
	// NewInstance creates a live instance from the given input.
	NewInstance(in InitInput) (Instance, error)
}
