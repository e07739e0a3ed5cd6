package core

import (
	"context"
)

// Middleware adjusts a proposed next state before it's committed.
//
// Middleware sees the previously committed state and the output of
// the preceding stage.  It may override, inject, or discard fields.
// It never sees action arguments.
type Middleware interface {
	Apply(ctx context.Context, prev, next State) (State, error)
}

// MiddlewareFunc is Middleware that can't fail.
type MiddlewareFunc func(prev, next State) State

// Apply implements Middleware.
func (f MiddlewareFunc) Apply(ctx context.Context, prev, next State) (State, error) {
	return f(prev, next), nil
}

// Chain runs the given middleware left to right.  Each stage
// receives the preceding stage's output.  The first error aborts the
// chain.
func Chain(ctx context.Context, mws []Middleware, prev, raw State) (State, error) {
	next := raw
	for _, mw := range mws {
		var err error
		if next, err = mw.Apply(ctx, prev, next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Override makes Middleware that lays the given values over every
// proposed next state.
//
// The values are copied when Override is called.
func Override(values State) Middleware {
	values = values.Copy()
	return MiddlewareFunc(func(prev, next State) State {
		return next.Merge(values)
	})
}

// PermanentFields makes Middleware that keeps the previously
// committed value of each of the given fields.  An action can't
// change or remove a permanent field.  Hydrate can.
func PermanentFields(fields ...string) Middleware {
	return MiddlewareFunc(func(prev, next State) State {
		acc := next.Copy()
		for _, p := range fields {
			if v, have := prev[p]; have {
				acc[p] = v
			} else {
				delete(acc, p)
			}
		}
		return acc
	})
}

// MiddlewareSource can be compiled to Middleware.
type MiddlewareSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
	Doc         string      `json:"doc,omitempty" yaml:",omitempty"`
}

// Compile attempts to compile the MiddlewareSource using the given
// interpreters, which defaults to DefaultInterpreters.
func (m *MiddlewareSource) Compile(ctx context.Context, interpreters InterpretersMap) (Middleware, error) {
	interpreter, compiled, err := compileSource(ctx, interpreters, m.Interpreter, m.Source)
	if err != nil {
		return nil, err
	}

	return middlewareFunc(func(ctx context.Context, prev, next State) (State, error) {
		return interpreter.Exec(ctx, &Env{
			State: next,
			Prev:  prev,
		}, m.Source, compiled)
	}), nil
}

type middlewareFunc func(ctx context.Context, prev, next State) (State, error)

func (f middlewareFunc) Apply(ctx context.Context, prev, next State) (State, error) {
	return f(ctx, prev, next)
}
