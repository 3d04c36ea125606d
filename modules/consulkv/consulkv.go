package consulkv

import (
	"context"
	"log"
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/pkg/errors"

	"github.com/Assada/ncd/config"
	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/value"
)

// Type is the module type name used in statement blocks.
const Type = "consul.kv"

// pollWaitTime bounds each blocking KV query so a stopped instance cannot
// wait on the Consul server forever.
const pollWaitTime = 5 * time.Minute

// Module polls a single Consul KV key per statement instance and reports
// its presence as up/down (§11).
type Module struct {
	clients *ClientSet
	retry   *config.RetryConfig
}

// New builds a consul.kv module against an already-connected client set.
// A nil retry uses the finalized default backoff (§9, RETRY_INTERVAL is a
// separate, engine-level concern from this module's own poll backoff).
func New(clients *ClientSet, retry *config.RetryConfig) *Module {
	if retry == nil {
		retry = config.DefaultRetryConfig()
		retry.Finalize()
	}
	return &Module{clients: clients, retry: retry}
}

func (m *Module) Type() string { return Type }

func (m *Module) GlobalInit() error {
	if m.clients == nil || m.clients.Consul() == nil {
		return errors.New("consul.kv: no consul client configured")
	}
	return nil
}

// NewInstance starts polling the key named by the statement's single
// argument. UP/DOWN fire on the reactor as the key's presence changes.
func (m *Module) NewInstance(in module.InitInput) (module.Instance, error) {
	if len(in.Args) != 1 || !in.Args[0].IsString() {
		return nil, errors.New("consul.kv: requires exactly one string argument: the key")
	}

	inst := &instance{
		kv:        m.clients.Consul().KV(),
		key:       in.Args[0].Str(),
		retry:     m.retry.RetryFunc(),
		logPrefix: in.LogPrefix,
		log:       logging.Logger(logging.ChannelModule),
		cb:        in.Callbacks,
		reactor:   in.Reactor,
		stopCh:    make(chan struct{}),
	}
	go inst.poll()
	return inst, nil
}

type instance struct {
	kv        *consulapi.KV
	key       string
	retry     config.RetryFunc
	logPrefix string
	log       *log.Logger
	cb        module.Callbacks
	reactor   *reactor.Reactor

	stopCh   chan struct{}
	stopOnce sync.Once
	diedOnce sync.Once

	mu      sync.Mutex
	bytes   []byte
	present bool
}

func (i *instance) poll() {
	var lastIndex uint64
	attempt := 0

	for {
		select {
		case <-i.stopCh:
			return
		default:
		}

		pair, meta, err := i.kv.Get(i.key, &consulapi.QueryOptions{
			WaitIndex: lastIndex,
			WaitTime:  pollWaitTime,
		})
		if err != nil {
			retry, wait := i.retry(attempt)
			if !retry {
				i.log.Printf("[ERR] %skey %q: giving up after %d attempts: %s", i.logPrefix, i.key, attempt, err)
				i.reportDied(true)
				return
			}
			attempt++
			i.log.Printf("[WARN] %skey %q: %s, retrying in %s", i.logPrefix, i.key, err, wait)
			select {
			case <-time.After(wait):
			case <-i.stopCh:
				return
			}
			continue
		}
		attempt = 0
		lastIndex = meta.LastIndex

		i.mu.Lock()
		wasPresent := i.present
		if pair != nil {
			i.present = true
			i.bytes = append([]byte{}, pair.Value...)
		} else {
			i.present = false
			i.bytes = nil
		}
		nowPresent := i.present
		i.mu.Unlock()

		if nowPresent && !wasPresent {
			i.reactor.Post(func() { i.cb.Event(module.Up) })
		} else if !nowPresent && wasPresent {
			i.reactor.Post(func() { i.cb.Event(module.Down) })
		}
	}
}

func (i *instance) reportDied(isError bool) {
	i.diedOnce.Do(func() {
		i.reactor.Post(func() { i.cb.Died(isError) })
	})
}

// Die stops polling. The poll loop's current blocking query still has to
// return before it observes stopCh, so teardown is best-effort-prompt
// rather than instant.
func (i *instance) Die(ctx context.Context) {
	i.stopOnce.Do(func() { close(i.stopCh) })
	i.reportDied(false)
}

func (i *instance) Free() {}

func (i *instance) GetVar(path string) (value.Value, error) {
	if path != "" && path != "value" {
		return value.Value{}, errors.Errorf("consul.kv: no such variable %q", path)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.present {
		return value.Value{}, errors.Errorf("consul.kv: key %q not present", i.key)
	}
	return value.String(i.bytes), nil
}
