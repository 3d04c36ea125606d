package config

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hashicorp/hcl"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"

	"github.com/pkg/errors"

	"github.com/Assada/ncd/signals"
)

const (
	// DefaultLogLevel is the default logging level, used whenever a
	// statement's channel has no more specific override (§10.2).
	DefaultLogLevel = "WARN"

	// DefaultReloadSignal is the default signal for reload.
	DefaultReloadSignal = syscall.SIGHUP

	// DefaultKillSignal is the default signal for graceful termination.
	DefaultKillSignal = syscall.SIGINT
)

var (
	// homePath is the location to the user's home directory.
	homePath, _ = homedir.Dir()
)

// Config is the top-level, unresolved configuration for the daemon: the set
// of process stanzas plus the ambient logging, syslog, and Consul backend
// settings shared by every process (§6, §10).
type Config struct {
	// Processes are the process stanzas, in the order they appeared across
	// every loaded file.
	Processes []*ProcessConfig `mapstructure:"process"`

	// Consul configures the backend used by the consul.kv built-in module.
	Consul *ConsulConfig `mapstructure:"consul"`

	// KillSignal is the signal that requests graceful termination (§4.6).
	KillSignal *os.Signal `mapstructure:"kill_signal"`

	// ReloadSignal is decoded and merged, but the daemon has no configuration
	// reload: the signal it names is ignored like any other non-kill signal.
	ReloadSignal *os.Signal `mapstructure:"reload_signal"`

	// LogLevel is a default logging level for any channel without a more
	// specific override. It is decoded, merged and finalized (NCD_LOG), but
	// startup does not read it: the daemon's levels come from the -loglevel
	// and -channel-loglevel flags.
	LogLevel *string `mapstructure:"log_level"`

	// ChannelLogLevel holds per-channel overrides of LogLevel (§10.2), keyed
	// by channel name ("engine", "config", "daemon", "module", "reactor").
	// Like LogLevel, it is not read at startup.
	ChannelLogLevel map[string]string `mapstructure:"channel_log_level"`

	// PidFile is a path for a PID file. It is decoded and merged, but no PID
	// file is written.
	PidFile *string `mapstructure:"pid_file"`

	// Syslog is the configuration for syslog.
	Syslog *SyslogConfig `mapstructure:"syslog"`
}

// Copy returns a deep copy of the current configuration.
func (c *Config) Copy() *Config {
	var o Config

	if c.Processes != nil {
		o.Processes = make([]*ProcessConfig, len(c.Processes))
		for i, p := range c.Processes {
			o.Processes[i] = p.Copy()
		}
	}

	if c.Consul != nil {
		o.Consul = c.Consul.Copy()
	}

	o.KillSignal = c.KillSignal
	o.ReloadSignal = c.ReloadSignal
	o.LogLevel = c.LogLevel
	o.PidFile = c.PidFile

	if c.ChannelLogLevel != nil {
		o.ChannelLogLevel = make(map[string]string, len(c.ChannelLogLevel))
		for k, v := range c.ChannelLogLevel {
			o.ChannelLogLevel[k] = v
		}
	}

	if c.Syslog != nil {
		o.Syslog = c.Syslog.Copy()
	}

	return &o
}

// Merge merges the values in o into this config object. Values in o
// overwrite the values in c. Process lists concatenate rather than
// overwrite, since multiple files each contribute their own processes.
func (c *Config) Merge(o *Config) *Config {
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

	if len(o.Processes) > 0 {
		r.Processes = append(r.Processes, o.Processes...)
	}

	if o.Consul != nil {
		r.Consul = r.Consul.Merge(o.Consul)
	}

	if o.KillSignal != nil {
		r.KillSignal = o.KillSignal
	}

	if o.ReloadSignal != nil {
		r.ReloadSignal = o.ReloadSignal
	}

	if o.LogLevel != nil {
		r.LogLevel = o.LogLevel
	}

	if o.PidFile != nil {
		r.PidFile = o.PidFile
	}

	if len(o.ChannelLogLevel) > 0 {
		if r.ChannelLogLevel == nil {
			r.ChannelLogLevel = make(map[string]string, len(o.ChannelLogLevel))
		}
		for k, v := range o.ChannelLogLevel {
			r.ChannelLogLevel[k] = v
		}
	}

	if o.Syslog != nil {
		r.Syslog = r.Syslog.Merge(o.Syslog)
	}

	return r
}

// Parse parses the given string contents as a config.
func Parse(s string) (*Config, error) {
	var shadow interface{}
	if err := hcl.Decode(&shadow, s); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}

	parsed, ok := shadow.(map[string]interface{})
	if !ok {
		return nil, errors.New("error converting config")
	}

	// process and statement are repeatable blocks and stay as lists;
	// everything singleton-shaped gets flattened from HCL's list-of-one-map
	// representation down to a plain map.
	flattenKeys(parsed, []string{
		"consul",
		"consul.auth",
		"consul.retry",
		"consul.ssl",
		"consul.transport",
		"channel_log_level",
		"syslog",
	})

	var c Config

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			ConsulStringToStructFunc(),
			StringToFileModeFunc(),
			signals.StringToSignalFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Metadata:    &md,
		Result:      &c,
	})
	if err != nil {
		return nil, errors.Wrap(err, "mapstructure decoder creation failed")
	}
	if err := decoder.Decode(parsed); err != nil {
		return nil, errors.Wrap(err, "mapstructure decode failed")
	}

	return &c, nil
}

// Must returns a config object that must compile. If there are any errors,
// this function panics via log.Fatal. Most useful in testing or constants.
func Must(s string) *Config {
	c, err := Parse(s)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// TestConfig returns a default, finalized config, with the provided
// configuration taking precedence.
func TestConfig(c *Config) *Config {
	d := DefaultConfig().Merge(c)
	d.Finalize()
	return d
}

// FromFile reads the configuration file at the given path and returns a new
// Config struct with the data populated. path may use a leading "~" for the
// user's home directory.
func FromFile(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "from file: "+path)
	}

	c, err := ioutil.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "from file: "+path)
	}

	config, err := Parse(string(c))
	if err != nil {
		return nil, errors.Wrap(err, "from file: "+path)
	}
	return config, nil
}

// FromPath iterates and merges all configuration files in a given
// directory, returning the resulting config.
func FromPath(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "missing file/folder: "+path)
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) {
		return nil, errors.Wrap(err, "missing file/folder: "+expanded)
	}

	stat, err := os.Stat(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "failed stating file: "+expanded)
	}

	if stat.Mode().IsDir() {
		_, err := ioutil.ReadDir(expanded)
		if err != nil {
			return nil, errors.Wrap(err, "failed listing dir: "+expanded)
		}

		var c *Config

		// Potential bug: Walk does not follow symlinks!
		err = filepath.Walk(expanded, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}

			newConfig, err := FromFile(path)
			if err != nil {
				return err
			}
			c = c.Merge(newConfig)

			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "walk error")
		}

		return c, nil
	} else if stat.Mode().IsRegular() {
		return FromFile(expanded)
	}

	return nil, fmt.Errorf("unknown filetype: %q", stat.Mode().String())
}

// GoString defines the printable version of this struct.
func (c *Config) GoString() string {
	if c == nil {
		return "(*Config)(nil)"
	}

	return fmt.Sprintf("&Config{"+
		"Processes:%#v, "+
		"Consul:%#v, "+
		"KillSignal:%s, "+
		"ReloadSignal:%s, "+
		"LogLevel:%s, "+
		"ChannelLogLevel:%v, "+
		"PidFile:%s, "+
		"Syslog:%#v"+
		"}",
		c.Processes,
		c.Consul,
		SignalGoString(c.KillSignal),
		SignalGoString(c.ReloadSignal),
		StringGoString(c.LogLevel),
		c.ChannelLogLevel,
		StringGoString(c.PidFile),
		c.Syslog,
	)
}

// DefaultConfig returns the default configuration struct. It reads no
// environment variables; Finalize is where they fill in unset values.
func DefaultConfig() *Config {
	return &Config{
		Consul: DefaultConsulConfig(),
		Syslog: DefaultSyslogConfig(),
	}
}

// Finalize ensures all configuration options have default values, so it is
// safe to dereference the pointers later down the line.
func (c *Config) Finalize() {
	if c.Processes == nil {
		c.Processes = []*ProcessConfig{}
	}
	for _, p := range c.Processes {
		p.Finalize()
	}

	if c.Consul == nil {
		c.Consul = DefaultConsulConfig()
	}
	c.Consul.Finalize()

	if c.KillSignal == nil {
		c.KillSignal = Signal(DefaultKillSignal)
	}

	if c.ReloadSignal == nil {
		c.ReloadSignal = Signal(DefaultReloadSignal)
	}

	if c.LogLevel == nil {
		c.LogLevel = stringFromEnv([]string{
			"NCD_LOG",
		}, DefaultLogLevel)
	}

	if c.ChannelLogLevel == nil {
		c.ChannelLogLevel = map[string]string{}
	}

	if c.PidFile == nil {
		c.PidFile = String("")
	}

	if c.Syslog == nil {
		c.Syslog = DefaultSyslogConfig()
	}
	c.Syslog.Finalize()
}

func stringFromEnv(list []string, def string) *string {
	for _, s := range list {
		if v := os.Getenv(s); v != "" {
			return String(strings.TrimSpace(v))
		}
	}
	return String(def)
}

// flattenKeys is a function that takes a map[string]interface{} and
// recursively flattens any keys that are a []map[string]interface{} where
// the key is in the given list of keys.
func flattenKeys(m map[string]interface{}, keys []string) {
	keyMap := make(map[string]struct{})
	for _, key := range keys {
		keyMap[key] = struct{}{}
	}

	var flatten func(map[string]interface{}, string)
	flatten = func(m map[string]interface{}, parent string) {
		for k, v := range m {
			mapKey := k
			if parent != "" {
				mapKey = parent + "." + k
			}

			if _, ok := keyMap[mapKey]; !ok {
				continue
			}

			switch typed := v.(type) {
			case []map[string]interface{}:
				if len(typed) > 0 {
					last := typed[len(typed)-1]
					flatten(last, mapKey)
					m[k] = last
				} else {
					m[k] = nil
				}
			case map[string]interface{}:
				flatten(typed, mapKey)
				m[k] = typed
			default:
				m[k] = v
			}
		}
	}

	flatten(m, "")
}
