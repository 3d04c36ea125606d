// Package exec implements the process.exec built-in module: a statement
// that runs a command line as a child process and tracks its lifetime
// (§11).
package exec

import (
	"bytes"
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"

	osexec "os/exec"

	"github.com/Assada/ncd/logging"
	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/value"
)

// Type is the module type name used in statement blocks.
const Type = "process.exec"

// Module runs shell-quoted command lines as child processes.
type Module struct {
	env *EnvConfig
}

// New builds a process.exec module. env controls which environment
// variables child processes inherit; a nil env means "inherit everything".
func New(env *EnvConfig) *Module {
	if env == nil {
		env = DefaultEnvConfig()
	}
	return &Module{env: env}
}

func (m *Module) Type() string      { return Type }
func (m *Module) GlobalInit() error { return nil }

// NewInstance joins its arguments into a single command line, shell-splits
// it, and starts the child process. UP is reported synchronously once the
// process has started; DIED follows the child's own exit (no DYING event is
// reported).
func (m *Module) NewInstance(in module.InitInput) (module.Instance, error) {
	if len(in.Args) == 0 {
		return nil, errors.New("process.exec: requires at least one argument (the command line)")
	}

	parts := make([]string, len(in.Args))
	for i, a := range in.Args {
		if !a.IsString() {
			return nil, errors.Errorf("process.exec: argument %d is not a string", i)
		}
		parts[i] = a.Str()
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = true
	parser.ParseBacktick = true
	argv, err := parser.Parse(strings.Join(parts, " "))
	if err != nil {
		return nil, errors.Wrap(err, "process.exec: parsing command line")
	}
	if len(argv) == 0 {
		return nil, errors.New("process.exec: empty command line")
	}

	moduleLog := logging.Logger(logging.ChannelModule)

	cmd := osexec.Command(argv[0], argv[1:]...)
	cmd.Env = m.env.Env()
	cmd.Stdout = &logWriter{log: moduleLog, prefix: in.LogPrefix + "stdout: "}
	cmd.Stderr = &logWriter{log: moduleLog, prefix: in.LogPrefix + "stderr: "}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "process.exec: start %q", argv[0])
	}

	inst := &instance{cb: in.Callbacks, cmd: cmd, log: moduleLog, logPrefix: in.LogPrefix}
	go inst.wait()

	in.Callbacks.Event(module.Up)
	return inst, nil
}

type instance struct {
	cb        module.Callbacks
	cmd       *osexec.Cmd
	log       *log.Logger
	logPrefix string

	mu       sync.Mutex
	exitCode int
	killed   bool
}

func (i *instance) wait() {
	err := i.cmd.Wait()

	i.mu.Lock()
	if i.cmd.ProcessState != nil {
		i.exitCode = i.cmd.ProcessState.ExitCode()
	}
	killed := i.killed
	i.mu.Unlock()

	// A process we deliberately killed during teardown is not an error.
	i.cb.Died(err != nil && !killed)
}

// Die asks the child to terminate. The actual DIED callback fires from
// wait once the process has actually exited.
func (i *instance) Die(ctx context.Context) {
	i.mu.Lock()
	i.killed = true
	proc := i.cmd.Process
	i.mu.Unlock()

	if proc != nil {
		if err := proc.Kill(); err != nil {
			i.log.Printf("[WARN] %skill pid %d: %s", i.logPrefix, proc.Pid, err)
		}
	}
}

func (i *instance) Free() {}

func (i *instance) GetVar(path string) (value.Value, error) {
	switch path {
	case "pid":
		if i.cmd.Process == nil {
			return value.Value{}, errors.New("process.exec: no pid: process not started")
		}
		return value.StringFrom(strconv.Itoa(i.cmd.Process.Pid)), nil
	case "exit_code":
		i.mu.Lock()
		defer i.mu.Unlock()
		return value.StringFrom(strconv.Itoa(i.exitCode)), nil
	default:
		return value.Value{}, errors.Errorf("process.exec: no such variable %q", path)
	}
}

// logWriter relays a child process's output into the standard logger a
// line at a time, tagged with the module's log prefix.
type logWriter struct {
	log    *log.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.log.Printf("[INFO] %s%s", w.prefix, string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}
