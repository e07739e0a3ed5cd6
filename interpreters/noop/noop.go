// Package noop provides an Interpreter that does nothing.
package noop

import (
	"context"
	"log/slog"

	"github.com/Comcast/autostate/core"
)

// Interpreter is a core.Interpreter that ignores its code.  An action
// gets an empty patch, and middleware passes the proposed state
// through.
type Interpreter struct {
	// Silent, if false, logs a warning for each use.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		slog.WarnContext(ctx, "using noop interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, env *core.Env, code interface{}, compiled interface{}) (core.State, error) {
	if !i.Silent {
		slog.WarnContext(ctx, "using noop interpreter for execution")
	}
	if env != nil && env.Prev != nil {
		return env.State.Copy(), nil
	}
	return core.NewState(), nil
}
