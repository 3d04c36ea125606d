// Package process implements the per-process state engine: the state
// machine that drives statement instantiation, propagates up/down/dying/
// died transitions, enforces ordered teardown, and schedules retries after
// initialization failure (§4.4 of the spec).
package process

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/value"
)

// Host is the daemon controller's view into a Process: whether the daemon
// is terminating, and where to report that this process has finished
// retreating (§4.6).
type Host interface {
	// Terminating reports whether the daemon has requested shutdown.
	Terminating() bool
	// Retreated is called exactly once, when FP has returned to 0 during a
	// retreat (§4.4.4). The process must not be touched again afterward.
	Retreated(p *Process)
}

// Process owns an ordered array of process-statements, the two pointers AP
// and FP, and the retry timer (§3).
type Process struct {
	Name string

	stmts []*Statement
	ap    int
	fp    int

	timer   *reactor.Timer
	reactor *reactor.Reactor
	host    Host
	log     *log.Logger

	now func() time.Time
}

// New builds a Process from a set of already-loaded statement templates.
// All statements start Forgotten, AP == FP == 0.
func New(name string, templates []*StatementTemplate, r *reactor.Reactor, host Host) *Process {
	p := &Process{
		Name:    name,
		reactor: r,
		host:    host,
		log:     logging.Logger(logging.ChannelEngine),
		now:     time.Now,
	}
	p.stmts = make([]*Statement, len(templates))
	for i, tmpl := range templates {
		p.stmts[i] = &Statement{Template: tmpl, i: i, state: Forgotten}
	}
	p.timer = reactor.NewTimer(r)
	return p
}

// AP returns the advance pointer.
func (p *Process) AP() int { return p.ap }

// FP returns the failure/live pointer.
func (p *Process) FP() int { return p.fp }

// N returns the number of statements.
func (p *Process) N() int { return len(p.stmts) }

// Statement returns the statement at index i.
func (p *Process) Statement(i int) *Statement { return p.stmts[i] }

// Start kicks off a freshly constructed, quiescent process by invoking
// Work — the same entry point every later external event uses.
func (p *Process) Start() {
	p.Work()
}

// Work is the engine's single entry point for every external event: a
// module callback, a timer fire, or a termination request. It disarms the
// retry timer, then dispatches to retreat (if the daemon is terminating)
// or fight (§4.4).
func (p *Process) Work() {
	p.timer.Disarm()

	if p.host.Terminating() {
		p.retreat()
		return
	}
	p.fight()
}

// fight makes forward progress toward AP == FP == N with all prior
// statements ADULT (§4.4.1).
func (p *Process) fight() {
	if p.ap < p.fp {
		ps := p.stmts[p.fp-1]
		if ps.state != Dying {
			p.killInstance(ps)
		}
		return
	}

	// AP == FP
	if p.ap > 0 && p.stmts[p.ap-1].state == Child {
		return
	}
	p.advance()
}

// advance instantiates the next statement, or logs victory if the process
// is fully up (§4.4.2).
func (p *Process) advance() {
	if p.ap == len(p.stmts) {
		p.log.Printf("[INFO] process %s: victory", p.Name)
		return
	}

	ps := p.stmts[p.ap]
	if ps.state != Forgotten {
		panic("process: advance on a non-FORGOTTEN statement")
	}

	if ps.haveError {
		if ps.errorUntil.After(p.now()) {
			p.wait(ps)
			return
		}
		p.clearError(ps)
	}

	stmtLog := logging.Logger(logging.ChannelEngine)
	stmtLog.SetPrefix(fmt.Sprintf("process %s: statement %d: ", p.Name, ps.i))

	args, err := p.materializeArgs(ps)
	if err != nil {
		stmtLog.Printf("[ERR] argument error: %s", err)
		p.setError(ps)
		p.wait(ps)
		return
	}

	logPrefix := fmt.Sprintf("process %s: statement %d: module: ", p.Name, ps.i)
	instance, err := ps.Template.Module.NewInstance(module.InitInput{
		StatementName: ps.Template.Name,
		Args:          args,
		LogPrefix:     logPrefix,
		Reactor:       p.reactor,
		Callbacks: module.Callbacks{
			Event: func(ev module.EventCode) { p.reactor.Post(func() { p.OnEvent(ps, ev) }) },
			Died:  func(isErr bool) { p.reactor.Post(func() { p.OnDied(ps, isErr) }) },
		},
	})
	if err != nil {
		stmtLog.Printf("[ERR] instance init failed: %s", err)
		p.setError(ps)
		p.wait(ps)
		return
	}

	ps.instance = instance
	ps.args = args
	ps.state = Child
	p.ap++
	p.fp++
}

// wait arms the retry timer for ps (§4.4.3).
func (p *Process) wait(ps *Statement) {
	if !ps.haveError {
		panic("process: wait on a statement without a live error")
	}
	p.timer.Arm(ps.errorUntil, func() {
		p.clearError(ps)
		p.advance()
	})
}

// retreat tears the process down one statement at a time, in reverse
// order, for as long as the daemon is terminating (§4.4.4).
func (p *Process) retreat() {
	if p.fp == 0 {
		p.host.Retreated(p)
		return
	}

	ps := p.stmts[p.fp-1]
	if ps.state != Dying {
		p.killInstance(ps)
		if p.ap > ps.i {
			p.ap = ps.i
		}
	}
}

// killInstance asks ps's live instance to terminate and marks it Dying.
func (p *Process) killInstance(ps *Statement) {
	ps.state = Dying
	ps.instance.Die(context.Background())
}

// OnEvent dispatches a module-event callback (§4.4.5). Preconditions are
// enforced as panics: an instance violating the contract is a programming
// error in that module, not a recoverable runtime condition.
func (p *Process) OnEvent(ps *Statement, ev module.EventCode) {
	switch ev {
	case module.Up:
		if ps.state != Child {
			panic(fmt.Sprintf("process %s: statement %d: UP while %s", p.Name, ps.i, ps.state))
		}
		ps.state = Adult
	case module.Down:
		if ps.state != Adult {
			panic(fmt.Sprintf("process %s: statement %d: DOWN while %s", p.Name, ps.i, ps.state))
		}
		ps.state = Child
		if p.ap > ps.i+1 {
			p.ap = ps.i + 1
		}
	case module.Dying:
		if ps.state != Child && ps.state != Adult {
			panic(fmt.Sprintf("process %s: statement %d: DYING while %s", p.Name, ps.i, ps.state))
		}
		ps.state = Dying
		if p.ap > ps.i {
			p.ap = ps.i
		}
	default:
		panic(fmt.Sprintf("process %s: statement %d: unknown event %v", p.Name, ps.i, ev))
	}

	p.Work()
}

// OnDied dispatches a module-died callback (§4.4.6).
func (p *Process) OnDied(ps *Statement, isError bool) {
	if ps.state != Child && ps.state != Adult && ps.state != Dying {
		panic(fmt.Sprintf("process %s: statement %d: died while %s", p.Name, ps.i, ps.state))
	}

	ps.instance.Free()
	ps.instance = nil
	ps.args = nil
	ps.state = Forgotten

	if isError {
		p.setError(ps)
	} else {
		p.clearError(ps)
	}

	if p.ap > ps.i {
		p.ap = ps.i
	}

	for p.fp > 0 && p.stmts[p.fp-1].state == Forgotten {
		p.fp--
	}

	p.Work()
}

// materializeArgs resolves every argument of ps's template into a fresh
// Value list (§4.4.2): literals are deep-copied, variable references go
// through resolveVar.
func (p *Process) materializeArgs(ps *Statement) ([]value.Value, error) {
	out := make([]value.Value, 0, len(ps.Template.Args))
	for _, arg := range ps.Template.Args {
		if !arg.IsVarRef() {
			out = append(out, arg.Literal().Copy())
			continue
		}
		v, err := p.resolveVar(ps, arg.Target(), arg.Path())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
