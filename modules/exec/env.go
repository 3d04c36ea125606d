package exec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig controls which environment variables a process.exec child
// inherits from the daemon. Adapted from consul-template's exec.env
// stanza, scoped down to this module since it is the only component that
// spawns subprocesses.
type EnvConfig struct {
	Blacklist []string
	Custom    []string
	Pristine  bool
	Whitelist []string
}

func DefaultEnvConfig() *EnvConfig {
	return &EnvConfig{}
}

func (c *EnvConfig) Copy() *EnvConfig {
	if c == nil {
		return nil
	}

	var o EnvConfig

	if c.Blacklist != nil {
		o.Blacklist = append([]string{}, c.Blacklist...)
	}
	if c.Custom != nil {
		o.Custom = append([]string{}, c.Custom...)
	}
	o.Pristine = c.Pristine
	if c.Whitelist != nil {
		o.Whitelist = append([]string{}, c.Whitelist...)
	}

	return &o
}

// Env computes the final environment list for a child process: starting
// from os.Environ() (unless Pristine), filtered by Whitelist/Blacklist
// glob patterns, with Custom entries appended last so they always win.
func (c *EnvConfig) Env() []string {
	if c.Pristine {
		if len(c.Custom) > 0 {
			return append([]string{}, c.Custom...)
		}
		return []string{}
	}

	environ := os.Environ()
	keys := make([]string, len(environ))
	env := make(map[string]string, len(environ))
	for i, v := range environ {
		list := strings.SplitN(v, "=", 2)
		keys[i] = list[0]
		env[list[0]] = list[1]
	}

	anyGlobMatch := func(s string, patterns []string) bool {
		for _, pattern := range patterns {
			if matched, _ := filepath.Match(pattern, s); matched {
				return true
			}
		}
		return false
	}

	if len(c.Whitelist) > 0 {
		newKeys := make([]string, 0, len(keys))
		for _, k := range keys {
			if anyGlobMatch(k, c.Whitelist) {
				newKeys = append(newKeys, k)
			}
		}
		keys = newKeys
	}

	if len(c.Blacklist) > 0 {
		newKeys := make([]string, 0, len(keys))
		for _, k := range keys {
			if !anyGlobMatch(k, c.Blacklist) {
				newKeys = append(newKeys, k)
			}
		}
		keys = newKeys
	}

	finalEnv := make([]string, 0, len(keys)+len(c.Custom))
	for _, k := range keys {
		finalEnv = append(finalEnv, fmt.Sprintf("%s=%s", k, env[k]))
	}
	finalEnv = append(finalEnv, c.Custom...)

	return finalEnv
}
