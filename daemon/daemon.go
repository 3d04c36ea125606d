// Package daemon implements the controller that owns the set of live
// Processes: it builds them from configuration, starts each one on the
// reactor, and drives an orderly shutdown when asked (§4.6).
package daemon

import (
	"log"
	"sync"

	"github.com/Assada/ncd/config"
	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/process"
	"github.com/Assada/ncd/reactor"
)

// Daemon owns every Process built from a configuration, and implements
// process.Host for all of them.
type Daemon struct {
	reactor *reactor.Reactor
	log     *log.Logger

	mu          sync.Mutex
	terminating bool
	processes   []*process.Process
	retreated   map[*process.Process]bool

	doneCh chan struct{}
}

// New builds a Daemon whose processes run on r. It does not start them —
// call Start.
func New(r *reactor.Reactor) *Daemon {
	return &Daemon{
		reactor:   r,
		log:       logging.Logger(logging.ChannelDaemon),
		retreated: make(map[*process.Process]bool),
		doneCh:    make(chan struct{}),
	}
}

// Load resolves every process stanza in conf against registry and
// constructs the corresponding Process values, without starting them. A
// load failure in any one process aborts the whole load (§4.2, "atomic per
// process" extended here to the whole configuration, per §4.6: the daemon
// either runs a fully-resolved configuration or none at all).
func (d *Daemon) Load(conf *config.Config, registry *module.Registry) error {
	processes := make([]*process.Process, 0, len(conf.Processes))

	for _, pc := range conf.Processes {
		node, err := pc.ToNode()
		if err != nil {
			return err
		}

		templates, err := process.LoadProcessTemplates(registry, node)
		if err != nil {
			return err
		}

		processes = append(processes, process.New(node.Name, templates, d.reactor, d))
	}

	d.mu.Lock()
	d.processes = processes
	d.mu.Unlock()

	return nil
}

// Start kicks every loaded process off. Must run on the reactor goroutine,
// or before Run starts it.
func (d *Daemon) Start() {
	d.mu.Lock()
	processes := append([]*process.Process{}, d.processes...)
	d.mu.Unlock()

	for _, p := range processes {
		d.log.Printf("[INFO] daemon: starting process %s", p.Name)
		p.Start()
	}
}

// Terminating implements process.Host.
func (d *Daemon) Terminating() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.terminating
}

// Retreated implements process.Host. Once every process has retreated, Done
// is closed.
func (d *Daemon) Retreated(p *process.Process) {
	d.mu.Lock()
	d.log.Printf("[INFO] daemon: process %s retreated", p.Name)
	d.retreated[p] = true
	allDone := len(d.retreated) == len(d.processes)
	d.mu.Unlock()

	if allDone {
		close(d.doneCh)
	}
}

// Shutdown requests every process begin retreating. Safe to call from any
// goroutine; the actual state transitions are marshaled onto the reactor
// via each Process's Work entry point. Idempotent.
func (d *Daemon) Shutdown() {
	d.mu.Lock()
	if d.terminating {
		d.mu.Unlock()
		return
	}
	d.terminating = true
	processes := append([]*process.Process{}, d.processes...)
	empty := len(processes) == 0
	d.mu.Unlock()

	if empty {
		close(d.doneCh)
		return
	}

	for _, p := range processes {
		p := p
		d.reactor.Post(func() { p.Work() })
	}
}

// Done returns a channel that closes once every process has fully
// retreated following a Shutdown.
func (d *Daemon) Done() <-chan struct{} {
	return d.doneCh
}
