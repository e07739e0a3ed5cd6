/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"context"
	"log/slog"
)

// SideEffect is invoked with a copy of each committed state.
//
// A SideEffect must not dispatch or hydrate on the same Manager.  If
// it tries, it gets a ReentrantDispatch error.
type SideEffect func(ctx context.Context, committed State)

// Config is consumed once by NewManager.
type Config struct {
	// Name is used in errors and logging.
	Name string

	// InitialState becomes the first committed state without any
	// middleware or side effects.
	InitialState State

	Actions Actions

	// Middleware is applied in order after an action's patch is
	// merged.
	Middleware []Middleware

	// SideEffects are invoked in order after each commit.
	SideEffects []SideEffect

	// Debug turns on logging of each transition.
	Debug bool

	// Logger is used when Debug is true.  Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Manager holds the current state of something along with the actions
// that can change that state.
//
// A Manager is not safe for concurrent use.  Each Manager belongs to a
// single owner, and a transition runs to completion before Dispatch
// or Hydrate returns.
type Manager struct {
	name        string
	state       State
	actions     Actions
	middleware  []Middleware
	sideEffects []SideEffect
	debug       bool
	logger      *slog.Logger

	// busy is true during a transition (including its side
	// effects).
	busy bool
}

// NewManager makes a Manager from the given Config.
//
// The Config's slices and maps are copied.
func NewManager(cfg Config) (*Manager, error) {
	for name, a := range cfg.Actions {
		if a == nil {
			return nil, &NilAction{Action: name}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		name:        cfg.Name,
		state:       cfg.InitialState.Copy(),
		actions:     MergeActions(cfg.Actions),
		middleware:  append([]Middleware(nil), cfg.Middleware...),
		sideEffects: append([]SideEffect(nil), cfg.SideEffects...),
		debug:       cfg.Debug,
		logger:      logger,
	}

	return m, nil
}

// Name returns the name given in the Config.
func (m *Manager) Name() string {
	return m.name
}

// State returns a copy of the current committed state.
func (m *Manager) State() State {
	return m.state.Copy()
}

// ActionNames returns the sorted names of this Manager's actions.
func (m *Manager) ActionNames() []string {
	return m.actions.Names()
}

// Dispatch runs the named action and commits the result.
//
// The action's patch is merged over the current state, and the
// result goes through the middleware in order.  Then that state is
// committed, and the side effects are invoked in order.  Dispatch
// returns the committed state.
//
// If the action or any middleware returns an error, nothing is
// committed, no side effect runs, and the error is returned.
func (m *Manager) Dispatch(ctx context.Context, name string, args ...interface{}) (State, error) {
	a, have := m.actions[name]
	if !have {
		return nil, &UnknownAction{
			Manager: m.name,
			Action:  name,
		}
	}

	if m.busy {
		return nil, &ReentrantDispatch{
			Manager: m.name,
			Op:      name,
		}
	}
	m.busy = true
	defer func() {
		m.busy = false
	}()

	prev := m.state

	patch, err := a.Exec(ctx, prev.Copy(), args)
	if err != nil {
		return nil, err
	}

	next, err := Chain(ctx, m.middleware, prev.Copy(), prev.Merge(patch))
	if err != nil {
		return nil, err
	}

	return m.commit(ctx, name, prev, next), nil
}

// Hydrate merges the given partial state directly over the current
// state and commits the result.  No action or middleware runs, but
// side effects do.
//
// The patch isn't validated.  Unknown fields are accepted.
func (m *Manager) Hydrate(ctx context.Context, patch State) (State, error) {
	if m.busy {
		return nil, &ReentrantDispatch{
			Manager: m.name,
			Op:      "hydrate",
		}
	}
	m.busy = true
	defer func() {
		m.busy = false
	}()

	prev := m.state
	return m.commit(ctx, "hydrate", prev, prev.Merge(patch)), nil
}

func (m *Manager) commit(ctx context.Context, op string, prev, next State) State {
	if next == nil {
		next = NewState()
	}
	m.state = next

	if m.debug {
		m.logger.InfoContext(ctx, "transition",
			slog.String("manager", m.name),
			slog.String("op", op),
			slog.String("before", prev.String()),
			slog.String("after", next.String()))
	}

	// Each side effect and the caller get their own copy.
	for _, fx := range m.sideEffects {
		fx(ctx, next.Copy())
	}

	return next.Copy()
}

// Bound is an action bound to its Manager.
type Bound func(ctx context.Context, args ...interface{}) (State, error)

// Actions returns this Manager's actions bound to this Manager, so
// callers can write
//
//	m.Actions()["close"](ctx)
func (m *Manager) Actions() map[string]Bound {
	acc := make(map[string]Bound, len(m.actions))
	for name := range m.actions {
		name := name
		acc[name] = func(ctx context.Context, args ...interface{}) (State, error) {
			return m.Dispatch(ctx, name, args...)
		}
	}
	return acc
}
