// Package builtin wires the three module types that ship with the daemon
// itself (§11: process.exec, consul.kv, net.tls_check) into a
// module.Registry at startup.
package builtin

import (
	rootcerts "github.com/hashicorp/go-rootcerts"
	"github.com/pkg/errors"

	"github.com/Assada/ncd/config"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/modules/consulkv"
	"github.com/Assada/ncd/modules/exec"
	"github.com/Assada/ncd/modules/tlscheck"
)

// Register builds and registers process.exec, consul.kv, and
// net.tls_check against conf. consul.kv is only registered when conf.Consul
// has an address configured, since it has no function without a backend.
func Register(r *module.Registry, conf *config.Config) error {
	var consulCfg *config.ConsulConfig
	if conf != nil {
		consulCfg = conf.Consul
	}

	r.Register(exec.New(nil))

	r.Register(tlscheck.New(rootCertsFor(consulCfg)))

	if conf != nil && conf.Consul != nil && config.StringPresent(conf.Consul.Address) {
		clients := consulkv.NewClientSet()
		if err := clients.CreateConsulClient(consulClientInput(conf.Consul)); err != nil {
			return errors.Wrap(err, "builtin: consul.kv: building consul client")
		}
		r.Register(consulkv.New(clients, conf.Consul.Retry))
	}

	return nil
}

func consulClientInput(c *config.ConsulConfig) *consulkv.CreateConsulClientInput {
	in := &consulkv.CreateConsulClientInput{
		Address: config.StringVal(c.Address),
		Token:   config.StringVal(c.Token),
	}

	if c.Auth != nil && config.BoolVal(c.Auth.Enabled) {
		in.AuthEnabled = true
		in.AuthUsername = config.StringVal(c.Auth.Username)
		in.AuthPassword = config.StringVal(c.Auth.Password)
	}

	if c.SSL != nil && config.BoolVal(c.SSL.Enabled) {
		in.SSLEnabled = true
		in.SSLVerify = config.BoolVal(c.SSL.Verify)
		in.SSLCert = config.StringVal(c.SSL.Cert)
		in.SSLKey = config.StringVal(c.SSL.Key)
		in.SSLCACert = config.StringVal(c.SSL.CaCert)
		in.SSLCAPath = config.StringVal(c.SSL.CaPath)
		in.ServerName = config.StringVal(c.SSL.ServerName)
	}

	if c.Transport != nil {
		in.TransportDialKeepAlive = config.TimeDurationVal(c.Transport.DialKeepAlive)
		in.TransportDialTimeout = config.TimeDurationVal(c.Transport.DialTimeout)
		in.TransportDisableKeepAlives = config.BoolVal(c.Transport.DisableKeepAlives)
		in.TransportIdleConnTimeout = config.TimeDurationVal(c.Transport.IdleConnTimeout)
		in.TransportMaxIdleConns = config.IntVal(c.Transport.MaxIdleConns)
		in.TransportMaxIdleConnsPerHost = config.IntVal(c.Transport.MaxIdleConnsPerHost)
		in.TransportTLSHandshakeTimeout = config.TimeDurationVal(c.Transport.TLSHandshakeTimeout)
	}

	return in
}

// rootCertsFor builds a rootcerts.Config for net.tls_check instances from
// the daemon's consul SSL stanza, since that is the only CA material the
// config format carries. A nil result means "use the system trust store".
func rootCertsFor(c *config.ConsulConfig) *rootcerts.Config {
	if c == nil || c.SSL == nil {
		return nil
	}
	if !config.StringPresent(c.SSL.CaCert) && !config.StringPresent(c.SSL.CaPath) {
		return nil
	}
	return &rootcerts.Config{
		CAFile: config.StringVal(c.SSL.CaCert),
		CAPath: config.StringVal(c.SSL.CaPath),
	}
}
