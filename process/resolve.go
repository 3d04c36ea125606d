package process

import (
	"fmt"

	"github.com/Assada/ncd/value"
)

// resolveVar implements §4.3: scan backward from the statement before ps
// for the first statement named target, require it to be ADULT, and ask
// its instance to resolve path.
func (p *Process) resolveVar(ps *Statement, target, path string) (value.Value, error) {
	for i := ps.i - 1; i >= 0; i-- {
		other := p.stmts[i]
		if other.Name() != target {
			continue
		}
		if other.state != Adult {
			return value.Value{}, fmt.Errorf("variable %q: statement %q is not ADULT", target, target)
		}
		v, err := other.instance.GetVar(path)
		if err != nil {
			return value.Value{}, fmt.Errorf("variable %q.%s: %w", target, path, err)
		}
		return v, nil
	}
	return value.Value{}, fmt.Errorf("variable %q: no such statement", target)
}
