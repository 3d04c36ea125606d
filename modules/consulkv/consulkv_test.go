package consulkv

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/hashicorp/consul/testutil"

	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/value"
)

var testConsul *testutil.TestServer
var testClients *ClientSet

func TestMain(m *testing.M) {
	consul, err := testutil.NewTestServerConfig(func(c *testutil.TestServerConfig) {
		c.LogLevel = "warn"
	})
	if err != nil {
		log.Fatal(fmt.Errorf("failed to start consul server: %v", err))
	}
	testConsul = consul

	clients := NewClientSet()
	if err := clients.CreateConsulClient(&CreateConsulClientInput{
		Address: testConsul.HTTPAddr,
	}); err != nil {
		testConsul.Stop()
		log.Fatal(err)
	}
	testClients = clients

	exitCh := make(chan int, 1)
	func() {
		defer func() {
			if r := recover(); r != nil {
				testConsul.Stop()
				panic(r)
			}
		}()
		exitCh <- m.Run()
	}()

	exit := <-exitCh
	testConsul.Stop()
	os.Exit(exit)
}

func waitEvent(t *testing.T, ch chan module.EventCode) module.EventCode {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a module event")
		return 0
	}
}

func putKV(t *testing.T, key string, val []byte) {
	t.Helper()
	if _, err := testClients.Consul().KV().Put(&consulapi.KVPair{Key: key, Value: val}, nil); err != nil {
		t.Fatal(err)
	}
}

func deleteKV(t *testing.T, key string) {
	t.Helper()
	if _, err := testClients.Consul().KV().Delete(key, nil); err != nil {
		t.Fatal(err)
	}
}

func TestConsulKVReportsUpWhenKeyExists(t *testing.T) {
	putKV(t, "ncd-test/present", []byte("hello"))

	r := reactor.New()
	go r.Run()
	defer r.Stop()

	events := make(chan module.EventCode, 4)
	m := New(testClients, nil)

	inst, err := m.NewInstance(module.InitInput{
		StatementName: "kv",
		Args:          []value.Value{value.StringFrom("ncd-test/present")},
		Reactor:       r,
		Callbacks: module.Callbacks{
			Event: func(ev module.EventCode) { events <- ev },
			Died:  func(bool) {},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Die(context.Background())

	if ev := waitEvent(t, events); ev != module.Up {
		t.Fatalf("expected UP, got %v", ev)
	}

	v, err := inst.GetVar("value")
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "hello" {
		t.Fatalf("expected value %q, got %q", "hello", v.Str())
	}
}

func TestConsulKVReportsDownWhenKeyRemoved(t *testing.T) {
	putKV(t, "ncd-test/flapping", []byte("x"))

	r := reactor.New()
	go r.Run()
	defer r.Stop()

	events := make(chan module.EventCode, 4)
	m := New(testClients, nil)

	inst, err := m.NewInstance(module.InitInput{
		StatementName: "kv",
		Args:          []value.Value{value.StringFrom("ncd-test/flapping")},
		Reactor:       r,
		Callbacks: module.Callbacks{
			Event: func(ev module.EventCode) { events <- ev },
			Died:  func(bool) {},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Die(context.Background())

	if ev := waitEvent(t, events); ev != module.Up {
		t.Fatalf("expected UP, got %v", ev)
	}

	deleteKV(t, "ncd-test/flapping")

	if ev := waitEvent(t, events); ev != module.Down {
		t.Fatalf("expected DOWN, got %v", ev)
	}
}

func TestConsulKVRejectsWrongArgCount(t *testing.T) {
	m := New(testClients, nil)
	_, err := m.NewInstance(module.InitInput{
		StatementName: "kv",
		Args:          nil,
		Callbacks:     module.Callbacks{Event: func(module.EventCode) {}, Died: func(bool) {}},
	})
	if err == nil {
		t.Fatal("expected an error for zero arguments")
	}
}
