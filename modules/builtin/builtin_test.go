package builtin

import (
	"testing"

	"github.com/Assada/ncd/config"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/modules/consulkv"
	"github.com/Assada/ncd/modules/exec"
	"github.com/Assada/ncd/modules/tlscheck"
)

func TestRegisterWithNilConfigRegistersExecAndTLSCheckOnly(t *testing.T) {
	r := module.NewRegistry()

	if err := Register(r, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, ok := r.Lookup(exec.Type); !ok {
		t.Fatalf("expected %s to be registered", exec.Type)
	}
	if _, ok := r.Lookup(tlscheck.Type); !ok {
		t.Fatalf("expected %s to be registered", tlscheck.Type)
	}
	if _, ok := r.Lookup(consulkv.Type); ok {
		t.Fatalf("did not expect %s to be registered without a consul address", consulkv.Type)
	}
}

func TestRegisterWithoutConsulAddressSkipsConsulKV(t *testing.T) {
	r := module.NewRegistry()
	conf := config.DefaultConfig()
	conf.Finalize()

	if err := Register(r, conf); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, ok := r.Lookup(consulkv.Type); ok {
		t.Fatalf("did not expect %s to be registered without a consul address", consulkv.Type)
	}
}

func TestRootCertsForRequiresCACertOrPath(t *testing.T) {
	if rc := rootCertsFor(nil); rc != nil {
		t.Fatalf("expected nil for nil consul config")
	}

	c := config.DefaultConsulConfig()
	c.Finalize()
	if rc := rootCertsFor(c); rc != nil {
		t.Fatalf("expected nil when no CA cert/path is configured")
	}

	c.SSL.CaCert = config.String("/tmp/ca.pem")
	if rc := rootCertsFor(c); rc == nil {
		t.Fatalf("expected non-nil once CA cert is configured")
	}
}

func TestConsulClientInputMapsAuthAndSSL(t *testing.T) {
	c := config.DefaultConsulConfig()
	c.Finalize()
	c.Address = config.String("127.0.0.1:8500")
	c.Auth.Enabled = config.Bool(true)
	c.Auth.Username = config.String("user")
	c.Auth.Password = config.String("pass")
	c.SSL.Enabled = config.Bool(true)
	c.SSL.Verify = config.Bool(false)

	in := consulClientInput(c)

	if in.Address != "127.0.0.1:8500" {
		t.Fatalf("expected address to be mapped, got %q", in.Address)
	}
	if !in.AuthEnabled || in.AuthUsername != "user" || in.AuthPassword != "pass" {
		t.Fatalf("expected auth fields to be mapped, got %+v", in)
	}
	if !in.SSLEnabled || in.SSLVerify {
		t.Fatalf("expected SSL enabled and verify disabled, got %+v", in)
	}
}
