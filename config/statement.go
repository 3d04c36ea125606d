package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/Assada/ncd/process"
	"github.com/Assada/ncd/value"
)

// varRefPattern matches the "$name[.path]" sigil that marks a statement
// argument as a variable reference rather than a literal (§4.3, §10.1).
var varRefPattern = regexp.MustCompile(`^\$[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_.]*)?$`)

// StatementConfig is the parsed, unresolved form of one statement block
// inside a process stanza.
type StatementConfig struct {
	Name   *string  `mapstructure:"name"`
	Module *string  `mapstructure:"module"`
	Args   []string `mapstructure:"args"`
}

func DefaultStatementConfig() *StatementConfig {
	return &StatementConfig{}
}

func (c *StatementConfig) Copy() *StatementConfig {
	if c == nil {
		return nil
	}

	var o StatementConfig
	o.Name = c.Name
	o.Module = c.Module

	if c.Args != nil {
		o.Args = append([]string{}, c.Args...)
	}

	return &o
}

func (c *StatementConfig) Merge(o *StatementConfig) *StatementConfig {
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

	if o.Name != nil {
		r.Name = o.Name
	}

	if o.Module != nil {
		r.Module = o.Module
	}

	if o.Args != nil {
		r.Args = append([]string{}, o.Args...)
	}

	return r
}

func (c *StatementConfig) Finalize() {
	if c.Name == nil {
		c.Name = String("")
	}

	if c.Module == nil {
		c.Module = String("")
	}

	if c.Args == nil {
		c.Args = []string{}
	}
}

func (c *StatementConfig) GoString() string {
	if c == nil {
		return "(*StatementConfig)(nil)"
	}

	return fmt.Sprintf("&StatementConfig{"+
		"Name:%s, "+
		"Module:%s, "+
		"Args:%v"+
		"}",
		StringGoString(c.Name),
		StringGoString(c.Module),
		c.Args,
	)
}

// ToNode parses the raw argument tokens into a process.StatementNode,
// classifying each one as a variable reference or a string literal by the
// "$name[.path]" sigil (§4.3).
func (c *StatementConfig) ToNode() (process.StatementNode, error) {
	args := make([]process.ArgNode, len(c.Args))
	for i, raw := range c.Args {
		arg, err := parseArgToken(raw)
		if err != nil {
			return process.StatementNode{}, errors.Wrapf(err, "statement %q: argument %d", StringVal(c.Name), i)
		}
		args[i] = arg
	}

	return process.StatementNode{
		Name:       StringVal(c.Name),
		ModuleType: StringVal(c.Module),
		Args:       args,
	}, nil
}

// parseArgToken classifies one raw argument token against varRefPattern.
func parseArgToken(raw string) (process.ArgNode, error) {
	if m := varRefPattern.FindStringSubmatch(raw); m != nil {
		body := raw[1:]
		target := body
		path := ""
		if i := strings.IndexByte(body, '.'); i >= 0 {
			target = body[:i]
			path = body[i+1:]
		}
		return process.ArgNode{IsVarRef: true, Target: target, Path: path}, nil
	}

	if len(raw) > 0 && raw[0] == '$' {
		return process.ArgNode{}, errors.Errorf("malformed variable reference %q", raw)
	}

	return process.ArgNode{IsVarRef: false, Literal: value.StringFrom(raw)}, nil
}

// ProcessConfig is the parsed, unresolved form of one process stanza: a name
// and its ordered statement blocks (§4.2).
type ProcessConfig struct {
	Name       *string            `mapstructure:"name"`
	Statements []*StatementConfig `mapstructure:"statement"`
}

func DefaultProcessConfig() *ProcessConfig {
	return &ProcessConfig{}
}

func (c *ProcessConfig) Copy() *ProcessConfig {
	if c == nil {
		return nil
	}

	var o ProcessConfig
	o.Name = c.Name

	if c.Statements != nil {
		o.Statements = make([]*StatementConfig, len(c.Statements))
		for i, s := range c.Statements {
			o.Statements[i] = s.Copy()
		}
	}

	return &o
}

func (c *ProcessConfig) Merge(o *ProcessConfig) *ProcessConfig {
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

	if o.Name != nil {
		r.Name = o.Name
	}

	if o.Statements != nil {
		r.Statements = append([]*StatementConfig{}, o.Statements...)
	}

	return r
}

func (c *ProcessConfig) Finalize() {
	if c.Name == nil {
		c.Name = String("")
	}

	if c.Statements == nil {
		c.Statements = []*StatementConfig{}
	}

	for _, s := range c.Statements {
		s.Finalize()
	}
}

func (c *ProcessConfig) GoString() string {
	if c == nil {
		return "(*ProcessConfig)(nil)"
	}

	return fmt.Sprintf("&ProcessConfig{Name:%s, Statements:%#v}",
		StringGoString(c.Name), c.Statements)
}

// ToNode converts the process stanza into its process.ProcessNode form,
// ready to be loaded against a module registry (§4.2).
func (c *ProcessConfig) ToNode() (process.ProcessNode, error) {
	stmts := make([]process.StatementNode, len(c.Statements))
	for i, s := range c.Statements {
		node, err := s.ToNode()
		if err != nil {
			return process.ProcessNode{}, errors.Wrapf(err, "process %q: statement %d", StringVal(c.Name), i)
		}
		stmts[i] = node
	}

	return process.ProcessNode{
		Name:       StringVal(c.Name),
		Statements: stmts,
	}, nil
}
