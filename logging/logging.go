package logging

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"strings"

	"github.com/hashicorp/go-syslog"
	"github.com/hashicorp/logutils"
)

var Levels = []logutils.LogLevel{"TRACE", "DEBUG", "INFO", "WARN", "ERR"}

// Global is the channel-aware filter layered in front of the base sink by
// the most recent call to Setup. Until Setup has run (e.g. in tests) it is
// a WARN filter that discards its output, so components may call
// Logger(ch) unconditionally.
var Global = NewChannelFilter("WARN", ioutil.Discard)

type Config struct {
	Name string `json:"name"`

	Level string `json:"level"`

	// ChannelLevels holds a per-channel minimum level override (§10.2),
	// keyed by Channel name. A channel absent from this map uses Level.
	ChannelLevels map[Channel]string `json:"channel_levels"`

	Syslog         bool   `json:"syslog"`
	SyslogFacility string `json:"syslog_facility"`
	SyslogIdent    string `json:"syslog_ident"`

	Writer io.Writer `json:"-"`
}

func Setup(config *Config) error {
	var logOutput io.Writer

	// NONE is a ChannelFilter-only concept (total suppression); the
	// teacher's base LevelFilter has no notion of it, so the base filter
	// stays at the most permissive level and ChannelFilter below does the
	// actual suppressing.
	baseLevel := strings.ToUpper(config.Level)
	if baseLevel == string(levelNone) {
		baseLevel = string(Levels[0])
	}

	logFilter := NewLogFilter()
	logFilter.MinLevel = logutils.LogLevel(baseLevel)
	logFilter.Writer = config.Writer
	if !ValidateLevelFilter(logFilter.MinLevel, logFilter) {
		levels := make([]string, 0, len(logFilter.Levels))
		for _, level := range logFilter.Levels {
			levels = append(levels, string(level))
		}
		return fmt.Errorf("invalid log level %q, valid log levels are %s",
			config.Level, strings.Join(levels, ", "))
	}

	ident := config.SyslogIdent
	if ident == "" {
		ident = config.Name
	}

	if config.Syslog {
		log.Printf("[DEBUG] (logging) enabling syslog on %s", config.SyslogFacility)

		l, err := gsyslog.NewLogger(gsyslog.LOG_NOTICE, config.SyslogFacility, ident)
		if err != nil {
			return fmt.Errorf("error setting up syslog logger: %s", err)
		}
		syslog := &SyslogWrapper{l, logFilter}
		logOutput = io.MultiWriter(logFilter, syslog)
	} else {
		logOutput = io.MultiWriter(logFilter)
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
	log.SetOutput(logOutput)

	filter := NewChannelFilter(logutils.LogLevel(strings.ToUpper(config.Level)), logOutput)
	for ch, level := range config.ChannelLevels {
		parsed, err := ParseLevel(level)
		if err != nil {
			return fmt.Errorf("channel %q: %s", ch, err)
		}
		filter.SetLevel(ch, parsed)
	}
	Global = filter

	return nil
}

// Logger returns a *log.Logger for ch, gated by Global's configured level
// for that channel.
func Logger(ch Channel) *log.Logger {
	return Global.Logger(ch)
}

func NewLogFilter() *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: "WARN",
		Writer:   ioutil.Discard,
	}
}

func ValidateLevelFilter(min logutils.LogLevel, filter *logutils.LevelFilter) bool {
	for _, level := range filter.Levels {
		if level == min {
			return true
		}
	}
	return false
}
