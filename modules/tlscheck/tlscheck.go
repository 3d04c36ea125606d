// Package tlscheck implements the net.tls_check built-in module: a
// statement that stays UP for as long as a TLS handshake against a given
// host:port succeeds, verified against the system (or configured) root
// CAs (§11).
package tlscheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	rootcerts "github.com/hashicorp/go-rootcerts"
	"github.com/pkg/errors"

	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/value"
)

// Type is the module type name used in statement blocks.
const Type = "net.tls_check"

const (
	defaultCheckInterval = 30 * time.Second
	defaultDialTimeout   = 10 * time.Second
)

// Module periodically dials a host:port and verifies the TLS handshake.
type Module struct {
	rootCAs       *rootcerts.Config
	checkInterval time.Duration
	dialTimeout   time.Duration
}

// New builds a net.tls_check module. rootCAs may be nil to use the system
// trust store.
func New(rootCAs *rootcerts.Config) *Module {
	return &Module{
		rootCAs:       rootCAs,
		checkInterval: defaultCheckInterval,
		dialTimeout:   defaultDialTimeout,
	}
}

func (m *Module) Type() string      { return Type }
func (m *Module) GlobalInit() error { return nil }

// NewInstance starts polling a "host:port" endpoint (the statement's first
// argument). An optional second argument overrides the check interval, as
// a Go duration string (e.g. "1s"). UP fires once the first handshake
// succeeds; DOWN/UP toggle as connectivity changes.
func (m *Module) NewInstance(in module.InitInput) (module.Instance, error) {
	if len(in.Args) < 1 || len(in.Args) > 2 || !in.Args[0].IsString() {
		return nil, errors.New("net.tls_check: requires a host:port argument and an optional interval")
	}

	addr := in.Args[0].Str()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "net.tls_check: invalid address %q", addr)
	}

	interval := m.checkInterval
	if len(in.Args) == 2 {
		if !in.Args[1].IsString() {
			return nil, errors.New("net.tls_check: interval argument must be a string")
		}
		interval, err = time.ParseDuration(in.Args[1].Str())
		if err != nil {
			return nil, errors.Wrap(err, "net.tls_check: invalid interval")
		}
	}

	tlsConfig := &tls.Config{ServerName: host}
	if m.rootCAs != nil {
		if err := rootcerts.ConfigureTLS(tlsConfig, m.rootCAs); err != nil {
			return nil, errors.Wrap(err, "net.tls_check: configuring root CAs")
		}
	}

	inst := &instance{
		addr:        addr,
		tlsConfig:   tlsConfig,
		dialTimeout: m.dialTimeout,
		interval:    interval,
		logPrefix:   in.LogPrefix,
		log:         logging.Logger(logging.ChannelModule),
		cb:          in.Callbacks,
		reactor:     in.Reactor,
		stopCh:      make(chan struct{}),
	}
	go inst.poll()
	return inst, nil
}

type instance struct {
	addr        string
	tlsConfig   *tls.Config
	dialTimeout time.Duration
	interval    time.Duration
	logPrefix   string
	log         *log.Logger
	cb          module.Callbacks
	reactor     *reactor.Reactor

	stopCh   chan struct{}
	stopOnce sync.Once
	diedOnce sync.Once

	mu sync.Mutex
	up bool
}

func (i *instance) poll() {
	for {
		up, err := i.checkOnce()

		i.mu.Lock()
		was := i.up
		i.up = up
		i.mu.Unlock()

		if up && !was {
			i.reactor.Post(func() { i.cb.Event(module.Up) })
		} else if !up && was {
			i.log.Printf("[WARN] %s%s: handshake failed: %s", i.logPrefix, i.addr, err)
			i.reactor.Post(func() { i.cb.Event(module.Down) })
		}

		select {
		case <-time.After(i.interval):
		case <-i.stopCh:
			return
		}
	}
}

func (i *instance) checkOnce() (bool, error) {
	dialer := &net.Dialer{Timeout: i.dialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", i.addr, i.tlsConfig)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	return true, nil
}

func (i *instance) Die(ctx context.Context) {
	i.stopOnce.Do(func() { close(i.stopCh) })
	i.diedOnce.Do(func() {
		i.reactor.Post(func() { i.cb.Died(false) })
	})
}

func (i *instance) Free() {}

func (i *instance) GetVar(path string) (value.Value, error) {
	switch path {
	case "", "up":
		i.mu.Lock()
		defer i.mu.Unlock()
		return value.StringFrom(fmt.Sprintf("%t", i.up)), nil
	case "address":
		return value.StringFrom(i.addr), nil
	default:
		return value.Value{}, errors.Errorf("net.tls_check: no such variable %q", path)
	}
}
