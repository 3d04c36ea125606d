package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"sync"

	"github.com/Assada/ncd/config"
	"github.com/Assada/ncd/daemon"
	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/modules/builtin"
	"github.com/Assada/ncd/reactor"
	"github.com/Assada/ncd/signals"
	"github.com/Assada/ncd/version"
)

const (
	ExitCodeOK int = 0

	// Every failure exits with status 1, including a run that ends after a
	// termination signal (§6); the names only record where the exit came from.
	ExitCodeError           = 1
	ExitCodeInterrupt       = ExitCodeError
	ExitCodeParseFlagsError = ExitCodeError
	ExitCodeDaemonError     = ExitCodeError
	ExitCodeConfigError     = ExitCodeError
)

type Cli struct {
	sync.Mutex

	outStream, errStream io.Writer

	signalCh chan os.Signal

	stopCh chan struct{}

	stopped bool
}

func NewCli(out, err io.Writer) *Cli {
	return &Cli{
		outStream: out,
		errStream: err,
		signalCh:  make(chan os.Signal, 1),
		stopCh:    make(chan struct{}),
	}
}

// flagsResult is everything ParseFlags extracts from argv before the
// daemon can be built.
type flagsResult struct {
	conf          *config.Config
	configPath    string
	useSyslog     bool
	logLevel      string
	channelLevels map[string]string
	isVersion     bool
	isHelp        bool
}

func (cli *Cli) setup(r *flagsResult) error {
	channelLevels := make(map[logging.Channel]string, len(r.channelLevels))
	for ch, level := range r.channelLevels {
		parsed, err := logging.ParseCLILevel(level)
		if err != nil {
			return err
		}
		channelLevels[logging.Channel(ch)] = string(parsed)
	}

	return logging.Setup(&logging.Config{
		Name:           version.Name,
		Level:          r.logLevel,
		ChannelLevels:  channelLevels,
		Syslog:         r.useSyslog,
		SyslogFacility: config.StringVal(r.conf.Syslog.Facility),
		SyslogIdent:    config.StringVal(r.conf.Syslog.Ident),
		Writer:         cli.errStream,
	})
}

// Run accepts a slice of arguments and returns an int representing the exit
// status from the command.
func (cli *Cli) Run(args []string) int {
	parsed, err := cli.ParseFlags(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			fmt.Fprintf(cli.errStream, usage, version.Name)
			return ExitCodeOK
		}
		fmt.Fprintln(cli.errStream, err.Error())
		return ExitCodeParseFlagsError
	}

	if parsed.isHelp {
		fmt.Fprintf(cli.errStream, usage, version.Name)
		return ExitCodeOK
	}

	if parsed.isVersion {
		fmt.Fprintf(cli.errStream, "%s\n", version.HumanVersion)
		return ExitCodeOK
	}

	conf, err := config.FromPath(parsed.configPath)
	if err != nil {
		return logError(err, ExitCodeConfigError)
	}
	conf = config.DefaultConfig().Merge(conf).Merge(parsed.conf)
	conf.Finalize()
	parsed.conf = conf

	if err := cli.setup(parsed); err != nil {
		return logError(err, ExitCodeConfigError)
	}

	log.Printf("[INFO] %s", version.HumanVersion)

	registry := module.NewRegistry()
	if err := builtin.Register(registry, conf); err != nil {
		return logError(err, ExitCodeDaemonError)
	}
	if err := registry.GlobalInit(); err != nil {
		return logError(err, ExitCodeDaemonError)
	}

	r := reactor.New()
	d := daemon.New(r)
	if err := d.Load(conf, registry); err != nil {
		return logError(err, ExitCodeDaemonError)
	}

	go r.Run()
	r.Post(d.Start)

	signal.Notify(cli.signalCh)

	for {
		select {
		case <-d.Done():
			// Done only ever closes as a consequence of Shutdown, which is
			// only ever requested by a termination signal below; normal
			// completion after a signal is still not a clean exit (§6).
			r.Stop()
			return ExitCodeInterrupt
		case s := <-cli.signalCh:
			log.Printf("[DEBUG] (cli) receiving signal %q", s)

			switch s {
			case config.SignalVal(conf.KillSignal):
				fmt.Fprintf(cli.errStream, "Cleaning up...\n")
				d.Shutdown()
			case signals.SignalLookup["SIGCHLD"]:
				// The SIGCHLD signal is sent to the parent of a child process when it
				// exits, is interrupted, or resumes after being interrupted. We ignore
				// this signal because process.exec reaps its own children via Wait.
			default:
				// No other signal carries daemon-level meaning; a reload
				// would require re-running Load against a freshly-parsed
				// config, which is out of scope for this daemon (§9).
			}
		case <-cli.stopCh:
			r.Stop()
			return ExitCodeOK
		}
	}
}

// stop is used internally to shutdown a running CLI.
func (cli *Cli) stop() {
	cli.Lock()
	defer cli.Unlock()

	if cli.stopped {
		return
	}

	close(cli.stopCh)
	cli.stopped = true
}

// ParseFlags is a helper function for parsing command line flags using Go's
// Flag library. This is extracted into a helper to keep the main function
// small, but it also makes writing tests for parsing command line arguments
// much easier and cleaner.
func (cli *Cli) ParseFlags(args []string) (*flagsResult, error) {
	// --channel-loglevel takes two tokens (channel, level), which flag.Var
	// cannot express as a single switch. Pre-scan and strip every
	// occurrence before handing the rest to flags.Parse, the same
	// "pre-process args" shape the teacher uses for its own -config flag.
	channelLevels := make(map[string]string)
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "-channel-loglevel" || args[i] == "--channel-loglevel" {
			if i+2 >= len(args) {
				return nil, fmt.Errorf("cli: -channel-loglevel requires a channel and a level")
			}
			channelLevels[args[i+1]] = args[i+2]
			i += 2
			continue
		}
		rest = append(rest, args[i])
	}

	var isVersion, isHelp, useSyslog bool
	var configPath, loggerKind, syslogFacility, syslogIdent, logLevel string

	flags := flag.NewFlagSet(version.Name, flag.ContinueOnError)
	flags.SetOutput(ioutil.Discard)
	flags.Usage = func() {}

	flags.Var((funcVar)(func(s string) error {
		configPath = s
		return nil
	}), "config-file", "")

	flags.Var((funcVar)(func(s string) error {
		loggerKind = s
		return nil
	}), "logger", "")

	flags.Var((funcVar)(func(s string) error {
		syslogFacility = s
		return nil
	}), "syslog-facility", "")

	flags.Var((funcVar)(func(s string) error {
		syslogIdent = s
		return nil
	}), "syslog-ident", "")

	flags.Var((funcVar)(func(s string) error {
		logLevel = s
		return nil
	}), "loglevel", "")

	flags.BoolVar(&isVersion, "version", false, "")
	flags.BoolVar(&isHelp, "help", false, "")

	if err := flags.Parse(rest); err != nil {
		return nil, err
	}

	if extra := flags.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("cli: extra args: %q", extra)
	}

	if isHelp || isVersion {
		return &flagsResult{isHelp: isHelp, isVersion: isVersion}, nil
	}

	if configPath == "" {
		return nil, fmt.Errorf("cli: -config-file is required")
	}

	if loggerKind == "" {
		loggerKind = "stdout"
	}
	switch loggerKind {
	case "stdout":
		useSyslog = false
	case "syslog":
		useSyslog = true
	default:
		return nil, fmt.Errorf("cli: invalid -logger %q (want \"stdout\" or \"syslog\")", loggerKind)
	}

	if logLevel == "" {
		logLevel = config.DefaultLogLevel
	} else {
		parsed, err := logging.ParseCLILevel(logLevel)
		if err != nil {
			return nil, fmt.Errorf("cli: -loglevel: %s", err)
		}
		logLevel = string(parsed)
	}

	for ch, level := range channelLevels {
		found := false
		for _, known := range logging.Channels {
			if string(known) == ch {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("cli: -channel-loglevel: unknown channel %q", ch)
		}
		if _, err := logging.ParseCLILevel(level); err != nil {
			return nil, fmt.Errorf("cli: -channel-loglevel %s: %s", ch, err)
		}
	}

	c := config.DefaultConfig()
	if useSyslog {
		c.Syslog.Enabled = config.Bool(true)
	}
	if syslogFacility != "" {
		c.Syslog.Facility = config.String(syslogFacility)
	}
	if syslogIdent != "" {
		c.Syslog.Ident = config.String(syslogIdent)
	}

	return &flagsResult{
		conf:          c,
		configPath:    configPath,
		useSyslog:     useSyslog,
		logLevel:      logLevel,
		channelLevels: channelLevels,
	}, nil
}

// logError logs an error message and then returns the given status.
func logError(err error, status int) int {
	log.Printf("[ERR] (cli) %s", err)
	return status
}

const usage = `Usage: %s [options]

  Runs the configured processes until a termination signal is received.

Options:

  -config-file=<path>
      Sets the path to a configuration file or folder on disk. Required
      unless -help or -version is given.

  -logger=<stdout|syslog>
      Sets the log destination. Defaults to stdout.

  -syslog-facility=<facility>
      Set the facility where syslog should log - only used with -logger=syslog.

  -syslog-ident=<string>
      Set the syslog identity tag - only used with -logger=syslog.

  -loglevel=<level>
      Set the default logging level. Accepts 0..5 or one of
      none, error, warning, notice, info, debug.

  -channel-loglevel <channel> <level>
      Override the logging level for a single channel (engine, config,
      daemon, module, reactor). May be given multiple times.

  -help
      Print this usage information.

  -version
      Print the version of this daemon.
`
