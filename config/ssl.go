package config

import "fmt"

// SSLConfig is used to configure the transport layer for connecting to the
// Consul backend used by the consul.kv module (§11).
type SSLConfig struct {
	CaCert     *string `mapstructure:"ca_cert"`
	CaPath     *string `mapstructure:"ca_path"`
	Cert       *string `mapstructure:"cert"`
	Enabled    *bool   `mapstructure:"enabled"`
	Key        *string `mapstructure:"key"`
	ServerName *string `mapstructure:"server_name"`
	Verify     *bool   `mapstructure:"verify"`
}

func DefaultSSLConfig() *SSLConfig {
	return &SSLConfig{}
}

func (c *SSLConfig) Copy() *SSLConfig {
	if c == nil {
		return nil
	}

	var o SSLConfig
	o.CaCert = c.CaCert
	o.CaPath = c.CaPath
	o.Cert = c.Cert
	o.Enabled = c.Enabled
	o.Key = c.Key
	o.ServerName = c.ServerName
	o.Verify = c.Verify
	return &o
}

func (c *SSLConfig) Merge(o *SSLConfig) *SSLConfig {
	if c == nil {
		if o == nil {
			return nil
		}
		return o.Copy()
	}

	if o == nil {
		return c.Copy()
	}

	r := c.Copy()

	if o.CaCert != nil {
		r.CaCert = o.CaCert
	}

	if o.CaPath != nil {
		r.CaPath = o.CaPath
	}

	if o.Cert != nil {
		r.Cert = o.Cert
	}

	if o.Enabled != nil {
		r.Enabled = o.Enabled
	}

	if o.Key != nil {
		r.Key = o.Key
	}

	if o.ServerName != nil {
		r.ServerName = o.ServerName
	}

	if o.Verify != nil {
		r.Verify = o.Verify
	}

	return r
}

func (c *SSLConfig) Finalize() {
	if c.CaCert == nil {
		c.CaCert = String("")
	}

	if c.CaPath == nil {
		c.CaPath = String("")
	}

	if c.Cert == nil {
		c.Cert = String("")
	}

	if c.Enabled == nil {
		c.Enabled = Bool(StringPresent(c.CaCert) ||
			StringPresent(c.CaPath) ||
			StringPresent(c.Cert) ||
			StringPresent(c.Key))
	}

	if c.Key == nil {
		c.Key = String("")
	}

	if c.ServerName == nil {
		c.ServerName = String("")
	}

	if c.Verify == nil {
		c.Verify = Bool(true)
	}
}

func (c *SSLConfig) GoString() string {
	if c == nil {
		return "(*SSLConfig)(nil)"
	}

	return fmt.Sprintf("&SSLConfig{"+
		"CaCert:%s, "+
		"CaPath:%s, "+
		"Cert:%s, "+
		"Enabled:%s, "+
		"Key:%s, "+
		"ServerName:%s, "+
		"Verify:%s"+
		"}",
		StringGoString(c.CaCert),
		StringGoString(c.CaPath),
		StringGoString(c.Cert),
		BoolGoString(c.Enabled),
		StringGoString(c.Key),
		StringGoString(c.ServerName),
		BoolGoString(c.Verify),
	)
}
