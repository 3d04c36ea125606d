package process

import "github.com/Assada/ncd/value"

// Argument is either a literal value, fixed at template-load time, or a
// variable reference that must be resolved against an earlier, currently
// live statement at each advance (§3, §4.1).
type Argument struct {
	literal value.Value
	isVar   bool
	target  string
	path    string
}

// LiteralArg builds a literal argument, copying v so later mutation of the
// caller's Value cannot affect the stored template.
func LiteralArg(v value.Value) Argument {
	return Argument{literal: v.Copy()}
}

// VarRefArg builds a variable-reference argument. path may be empty,
// meaning "the whole value" (§4.3).
func VarRefArg(target, path string) Argument {
	return Argument{isVar: true, target: target, path: path}
}

// IsVarRef reports whether this argument is a variable reference.
func (a Argument) IsVarRef() bool { return a.isVar }

// Target returns the referenced statement's local name. Only meaningful
// when IsVarRef is true.
func (a Argument) Target() string { return a.target }

// Path returns the referenced variable path. Only meaningful when IsVarRef
// is true.
func (a Argument) Path() string { return a.path }

// Literal returns the argument's literal value. Only meaningful when
// IsVarRef is false.
func (a Argument) Literal() value.Value { return a.literal }
