package process

// State is one of the four states a ProcessStatement may be in (§3).
type State int

const (
	// Forgotten: no live module instance. Initial and terminal-per-cycle.
	Forgotten State = iota
	// Child: instance created, not yet reported up.
	Child
	// Adult: instance has reported up and has not gone down.
	Adult
	// Dying: instance has been asked to terminate; awaits its died callback.
	Dying
)

func (s State) String() string {
	switch s {
	case Forgotten:
		return "FORGOTTEN"
	case Child:
		return "CHILD"
	case Adult:
		return "ADULT"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}
