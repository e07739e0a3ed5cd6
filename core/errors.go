package core

// These errors are user errors, not internal errors.

// UnknownAction occurs when a Manager is asked to dispatch an action
// it doesn't have.
type UnknownAction struct {
	Manager string
	Action  string
}

func (e *UnknownAction) Error() string {
	return `action "` + e.Action + `" not found in manager "` + e.Manager + `"`
}

// ReentrantDispatch occurs when a Manager is asked to dispatch or
// hydrate while it's already in the middle of a transition.  The
// usual culprit is a side effect that calls an action on its own
// Manager.
type ReentrantDispatch struct {
	Manager string

	// Op is the action name or "hydrate".
	Op string
}

func (e *ReentrantDispatch) Error() string {
	return `reentrant "` + e.Op + `" in manager "` + e.Manager + `"`
}

// BadDefinition occurs when a Definition can't be compiled.
type BadDefinition struct {
	Name   string
	Reason string
}

func (e *BadDefinition) Error() string {
	return `definition "` + e.Name + `": ` + e.Reason
}

// NilAction occurs when a Config maps an action name to nil.
type NilAction struct {
	Action string
}

func (e *NilAction) Error() string {
	return `action "` + e.Action + `" is nil`
}
