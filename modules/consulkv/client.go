// Package consulkv implements the consul.kv built-in module: a statement
// that tracks the presence of a single Consul KV key (§11).
package consulkv

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	rootcerts "github.com/hashicorp/go-rootcerts"
)

// ClientSet holds the single Consul API client shared by every consul.kv
// instance, adapted from the daemon's wider client-set pattern down to the
// one backend this module needs.
type ClientSet struct {
	sync.RWMutex

	client    *consulapi.Client
	transport *http.Transport
}

// CreateConsulClientInput configures a new Consul client.
type CreateConsulClientInput struct {
	Address      string
	Token        string
	AuthEnabled  bool
	AuthUsername string
	AuthPassword string
	SSLEnabled   bool
	SSLVerify    bool
	SSLCert      string
	SSLKey       string
	SSLCACert    string
	SSLCAPath    string
	ServerName   string

	TransportDialKeepAlive       time.Duration
	TransportDialTimeout         time.Duration
	TransportDisableKeepAlives   bool
	TransportIdleConnTimeout     time.Duration
	TransportMaxIdleConns        int
	TransportMaxIdleConnsPerHost int
	TransportTLSHandshakeTimeout time.Duration
}

// NewClientSet creates an empty client set.
func NewClientSet() *ClientSet {
	return &ClientSet{}
}

// CreateConsulClient builds the underlying Consul API client from i.
func (c *ClientSet) CreateConsulClient(i *CreateConsulClientInput) error {
	consulConfig := consulapi.DefaultConfig()

	if i.Address != "" {
		consulConfig.Address = i.Address
	}
	if i.Token != "" {
		consulConfig.Token = i.Token
	}
	if i.AuthEnabled {
		consulConfig.HttpAuth = &consulapi.HttpBasicAuth{
			Username: i.AuthUsername,
			Password: i.AuthPassword,
		}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		Dial: (&net.Dialer{
			Timeout:   i.TransportDialTimeout,
			KeepAlive: i.TransportDialKeepAlive,
		}).Dial,
		DisableKeepAlives:   i.TransportDisableKeepAlives,
		MaxIdleConns:        i.TransportMaxIdleConns,
		IdleConnTimeout:     i.TransportIdleConnTimeout,
		MaxIdleConnsPerHost: i.TransportMaxIdleConnsPerHost,
		TLSHandshakeTimeout: i.TransportTLSHandshakeTimeout,
	}

	if i.SSLEnabled {
		consulConfig.Scheme = "https"

		var tlsConfig tls.Config

		if i.SSLCert != "" && i.SSLKey != "" {
			cert, err := tls.LoadX509KeyPair(i.SSLCert, i.SSLKey)
			if err != nil {
				return fmt.Errorf("consul.kv: client: %s", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}

		if i.SSLCACert != "" || i.SSLCAPath != "" {
			rootConfig := &rootcerts.Config{
				CAFile: i.SSLCACert,
				CAPath: i.SSLCAPath,
			}
			if err := rootcerts.ConfigureTLS(&tlsConfig, rootConfig); err != nil {
				return fmt.Errorf("consul.kv: client: configuring TLS failed: %s", err)
			}
		}

		tlsConfig.BuildNameToCertificate()

		if i.ServerName != "" {
			tlsConfig.ServerName = i.ServerName
			tlsConfig.InsecureSkipVerify = false
		}
		if !i.SSLVerify {
			log.Printf("[WARN] (consul.kv) disabling consul SSL verification")
			tlsConfig.InsecureSkipVerify = true
		}

		transport.TLSClientConfig = &tlsConfig
	}

	consulConfig.Transport = transport

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		return fmt.Errorf("consul.kv: client: %s", err)
	}

	c.Lock()
	c.client = client
	c.transport = transport
	c.Unlock()

	return nil
}

// Consul returns the underlying Consul API client.
func (c *ClientSet) Consul() *consulapi.Client {
	c.RLock()
	defer c.RUnlock()
	return c.client
}

// Stop closes idle connections held by the client's transport.
func (c *ClientSet) Stop() {
	c.Lock()
	defer c.Unlock()
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}
