package core

import (
	"context"
	"errors"
	"sort"
)

var (
	// InterpreterNotFound occurs when you try to Compile an
	// ActionSource or a MiddlewareSource, and the required
	// interpreter isn't in the given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used in ActionSource.Compile and
	// MiddlewareSource.Compile if given nil interpreters.
	DefaultInterpreters = NewInterpretersMap()
)

// Env is what an Interpreter gets to see when executing code.
type Env struct {
	// State is the current state for an action or the proposed
	// next state for middleware.
	State State

	// Prev is the previously committed state.  Only middleware
	// sees a Prev.
	Prev State

	// Args are the arguments given to the action.  Middleware
	// never sees arguments.
	Args []interface{}
}

// Interpreter can optionally compile and execute code for actions and
// middleware.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code.  The result of previous Compile()
	// might be provided.
	//
	// For an action, the returned State is a patch.  For
	// middleware, the returned State is the complete next state.
	Exec(ctx context.Context, env *Env, code interface{}, compiled interface{}) (State, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap, 4)
}

// Action computes a patch from the current state and some arguments.
//
// An Action should be total and pure: the same state and arguments
// must always give the same patch.
type Action interface {
	Exec(ctx context.Context, st State, args []interface{}) (State, error)
}

// Reducer computes a patch from the current state.
type Reducer func(State) State

// FuncAction is the curried form of an action: the arguments say what
// happened, and the returned Reducer says how the state responds.
type FuncAction func(args ...interface{}) Reducer

// Exec implements Action.
func (f FuncAction) Exec(ctx context.Context, st State, args []interface{}) (State, error) {
	return f(args...)(st), nil
}

// ActionFunc is an Action that can fail.
type ActionFunc func(ctx context.Context, st State, args []interface{}) (State, error)

// Exec implements Action.
func (f ActionFunc) Exec(ctx context.Context, st State, args []interface{}) (State, error) {
	return f(ctx, st, args)
}

// Set makes an Action that always returns (a copy of) the given patch.
//
//	core.Set(core.State{"open": true})
func Set(patch State) FuncAction {
	return func(args ...interface{}) Reducer {
		return func(State) State {
			return patch.Copy()
		}
	}
}

// Actions maps action names to Actions.
type Actions map[string]Action

// MergeActions combines the given layers.  When a name appears in
// more than one layer, the later layer wins.  Nil Actions are
// skipped.
func MergeActions(layers ...Actions) Actions {
	acc := make(Actions, 8)
	for _, layer := range layers {
		for name, a := range layer {
			if a == nil {
				continue
			}
			acc[name] = a
		}
	}
	return acc
}

// Names returns the sorted action names.
func (as Actions) Names() []string {
	acc := make([]string, 0, len(as))
	for name := range as {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// ActionSource can be compiled to an Action.
type ActionSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
	Doc         string      `json:"doc,omitempty" yaml:",omitempty"`
}

// Copy makes a shallow copy.
func (a *ActionSource) Copy() *ActionSource {
	if a == nil {
		return nil
	}
	return &ActionSource{
		Interpreter: a.Interpreter,
		Source:      a.Source,
		Doc:         a.Doc,
	}
}

// Compile attempts to compile the ActionSource into an Action using
// the given interpreters, which defaults to DefaultInterpreters.
func (a *ActionSource) Compile(ctx context.Context, interpreters InterpretersMap) (Action, error) {
	interpreter, compiled, err := compileSource(ctx, interpreters, a.Interpreter, a.Source)
	if err != nil {
		return nil, err
	}

	return ActionFunc(func(ctx context.Context, st State, args []interface{}) (State, error) {
		return interpreter.Exec(ctx, &Env{
			State: st,
			Args:  args,
		}, a.Source, compiled)
	}), nil
}

func compileSource(ctx context.Context, interpreters InterpretersMap, name string, src interface{}) (Interpreter, interface{}, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[name]
	if !have {
		return nil, nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, src)
	if err != nil {
		return nil, nil, err
	}

	return interpreter, x, nil
}
