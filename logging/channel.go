package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/logutils"
)

// Channel names one of the daemon's compile-time logging channels (§10.2).
// A statement's own log lines (the "process <pname>: statement <i>: "
// prefix) are attributed to ChannelEngine.
type Channel string

const (
	ChannelEngine  Channel = "engine"
	ChannelConfig  Channel = "config"
	ChannelDaemon  Channel = "daemon"
	ChannelModule  Channel = "module"
	ChannelReactor Channel = "reactor"
)

// Channels lists every known channel name, in a stable order, for
// validating --channel-loglevel and for help text.
var Channels = []Channel{ChannelEngine, ChannelConfig, ChannelDaemon, ChannelModule, ChannelReactor}

// levelNone suppresses a channel entirely; it sorts above every level in
// Levels, which logutils.LevelFilter itself has no notion of.
const levelNone = logutils.LogLevel("NONE")

// levelRank orders Levels plus the NONE sentinel from least to most severe.
var levelRank = func() map[logutils.LogLevel]int {
	m := make(map[logutils.LogLevel]int, len(Levels)+1)
	for i, l := range Levels {
		m[l] = i
	}
	m[levelNone] = len(Levels)
	return m
}()

// ParseLevel validates s (case-insensitively) against Levels plus "NONE".
func ParseLevel(s string) (logutils.LogLevel, error) {
	l := logutils.LogLevel(strings.ToUpper(s))
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// cliLevelNames maps the CLI's syslog-flavored --loglevel vocabulary (§6)
// onto the internal Levels scheme, in numeric 0..5 order from most to least
// severe. "notice" has no exact internal counterpart; it is rounded up to
// WARN so that --loglevel notice still suppresses routine INFO/DEBUG noise.
var cliLevelNames = []string{"none", "error", "warning", "notice", "info", "debug"}

var cliLevelTargets = map[string]logutils.LogLevel{
	"none":    levelNone,
	"error":   "ERR",
	"warning": "WARN",
	"notice":  "WARN",
	"info":    "INFO",
	"debug":   "DEBUG",
}

// ParseCLILevel accepts either a numeric level (0..5, most to least severe)
// or one of the named levels in cliLevelNames, and returns the equivalent
// internal level usable with ChannelFilter.
func ParseCLILevel(s string) (logutils.LogLevel, error) {
	lower := strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(lower); err == nil {
		if n < 0 || n >= len(cliLevelNames) {
			return "", fmt.Errorf("invalid log level %q", s)
		}
		return cliLevelTargets[cliLevelNames[n]], nil
	}

	if l, ok := cliLevelTargets[lower]; ok {
		return l, nil
	}
	return "", fmt.Errorf("invalid log level %q", s)
}

// ChannelFilter sits in front of the teacher's logutils.LevelFilter: it
// holds one minimum level per channel, falling back to a default when a
// channel has no override, then writes anything that passes through to the
// shared sink (itself still filtered by the base LevelFilter/syslog
// priority mapping).
type ChannelFilter struct {
	mu           sync.RWMutex
	levels       map[Channel]logutils.LogLevel
	defaultLevel logutils.LogLevel
	sink         io.Writer
}

// NewChannelFilter builds a ChannelFilter writing anything that passes to
// sink, using defaultLevel for any channel without its own override.
func NewChannelFilter(defaultLevel logutils.LogLevel, sink io.Writer) *ChannelFilter {
	return &ChannelFilter{
		levels:       make(map[Channel]logutils.LogLevel),
		defaultLevel: defaultLevel,
		sink:         sink,
	}
}

// SetLevel overrides ch's minimum level.
func (f *ChannelFilter) SetLevel(ch Channel, level logutils.LogLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[ch] = level
}

// SetDefaultLevel changes the fallback level used by channels with no
// override.
func (f *ChannelFilter) SetDefaultLevel(level logutils.LogLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultLevel = level
}

func (f *ChannelFilter) minLevel(ch Channel) logutils.LogLevel {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if l, ok := f.levels[ch]; ok {
		return l
	}
	return f.defaultLevel
}

// check reports whether line (expected to start with "[LEVEL] ...", per the
// teacher's convention) clears ch's configured minimum.
func (f *ChannelFilter) check(ch Channel, line []byte) bool {
	min := f.minLevel(ch)
	if min == levelNone {
		return false
	}

	level := levelOf(line)
	if level == "" {
		return true
	}

	rank, ok := levelRank[level]
	if !ok {
		return true
	}
	return rank >= levelRank[min]
}

// levelOf extracts the "[LEVEL]" prefix from a log line, mirroring
// SyslogWrapper.Write's own bracket scan.
func levelOf(p []byte) logutils.LogLevel {
	x := bytes.IndexByte(p, '[')
	if x < 0 {
		return ""
	}
	y := bytes.IndexByte(p[x:], ']')
	if y < 0 {
		return ""
	}
	return logutils.LogLevel(p[x+1 : x+y])
}

// channelWriter is the io.Writer behind each channel's *log.Logger.
type channelWriter struct {
	filter  *ChannelFilter
	channel Channel
}

func (w *channelWriter) Write(p []byte) (int, error) {
	if !w.filter.check(w.channel, p) {
		return len(p), nil
	}
	return w.filter.sink.Write(p)
}

// Logger returns a *log.Logger whose output is gated by ch's configured
// level before reaching the shared sink. Callers still write their own
// "[LEVEL] ..." prefix into the message itself, matching the rest of the
// codebase's log.Printf convention — Logger carries no string prefix of its
// own, since one would land ahead of the "[LEVEL]" tag in the output and
// defeat the bracket scan in check. Every call returns a distinct
// *log.Logger sharing the same underlying filter state, so SetLevel takes
// effect on already-vended loggers too.
func (f *ChannelFilter) Logger(ch Channel) *log.Logger {
	return log.New(&channelWriter{filter: f, channel: ch}, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC)
}
