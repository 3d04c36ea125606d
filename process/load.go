package process

import (
	"fmt"

	"github.com/Assada/ncd/module"
	"github.com/Assada/ncd/value"
)

// ArgNode is the parsed-but-not-yet-loaded form of one statement argument,
// as produced by the configuration loader (§4.2). Exactly one of Literal
// (when IsVarRef is false) or Target/Path (when IsVarRef is true) is
// meaningful.
type ArgNode struct {
	IsVarRef bool
	Literal  value.Value
	Target   string
	Path     string
}

// StatementNode is the parsed-but-not-yet-loaded form of one statement:
// an optional local name, a dotted module-type name, and its argument
// nodes, exactly as the configuration loader hands them to
// LoadProcessTemplates (§4.2's "one parsed statement node").
type StatementNode struct {
	Name       string // empty means unreferenceable
	ModuleType string
	Args       []ArgNode
}

// ProcessNode is the parsed-but-not-yet-loaded form of one process: a name
// and its ordered statement nodes.
type ProcessNode struct {
	Name       string
	Statements []StatementNode
}

// StatementTemplate is the immutable, load-time description of one
// statement (§3).
type StatementTemplate struct {
	Name   string // "" means unreferenceable
	Module module.Module
	Args   []Argument
}

// LoadStatementTemplate resolves a StatementNode's module type against the
// registry and copies its arguments. Per §4.2, an unknown module type fails
// the whole load.
func LoadStatementTemplate(registry *module.Registry, node StatementNode) (*StatementTemplate, error) {
	m, ok := registry.Lookup(node.ModuleType)
	if !ok {
		return nil, fmt.Errorf("unknown module type %q", node.ModuleType)
	}

	args := make([]Argument, len(node.Args))
	for i, a := range node.Args {
		if a.IsVarRef {
			args[i] = VarRefArg(a.Target, a.Path)
		} else {
			args[i] = LiteralArg(a.Literal)
		}
	}

	return &StatementTemplate{
		Name:   node.Name,
		Module: m,
		Args:   args,
	}, nil
}

// LoadProcessTemplates resolves every statement in a process node,
// atomically: if any statement fails to load, nothing is returned for the
// process (§4.2, "Processes load atomically per process").
func LoadProcessTemplates(registry *module.Registry, node ProcessNode) ([]*StatementTemplate, error) {
	out := make([]*StatementTemplate, len(node.Statements))
	for i, s := range node.Statements {
		tmpl, err := LoadStatementTemplate(registry, s)
		if err != nil {
			return nil, fmt.Errorf("process %q: statement %d: %w", node.Name, i, err)
		}
		out[i] = tmpl
	}
	return out, nil
}
