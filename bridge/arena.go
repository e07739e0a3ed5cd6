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

// Package bridge keeps one Manager per owning UI instance and keeps
// each Manager in sync with the props its owner is given.
//
// An owner is identified by a uuid.UUID that lives as long as the
// owner does.  The host calls UseManagedState (or UseHydratedState)
// each time the owner gets a new set of props, and calls Release when
// the owner goes away.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/diag"
	"github.com/Comcast/autostate/managers"

	"github.com/google/uuid"
)

// MixedForms occurs when one owner is used with both UseManagedState
// and UseHydratedState.
var MixedForms = errors.New("owner used with both managed and hydrated state")

// NewOwner makes a new owner identity.
func NewOwner() uuid.UUID {
	return uuid.New()
}

// slot is the single place an owner's Manager lives.
type slot struct {
	manager *core.Manager

	// values are the auto-controlled field values that the
	// manager was made with.  Managed form only.
	values []interface{}

	// controlled are the currently defined controlled values.
	controlled core.State

	hydrated bool

	sync.Mutex
	refresher Refresher
}

func (s *slot) setRefresher(r Refresher) {
	s.Lock()
	s.refresher = r
	s.Unlock()
}

// refresh is the one side effect the bridge installs.  The state
// isn't passed along.  The renderer re-reads the Manager.
func (s *slot) refresh(ctx context.Context, committed core.State) {
	s.Lock()
	r := s.refresher
	s.Unlock()
	if r != nil {
		r.Refresh()
	}
}

// Arena holds the slots for a set of owners.
//
// An Arena is safe for concurrent use, but its Managers aren't.  Save
// reads every Manager's state, so it must not run while any of those
// Managers is dispatching or hydrating.  Side effects never run while
// the Arena is locked, so a side effect may call the Arena.
type Arena struct {
	sync.RWMutex

	// Reporter receives reconciliation diagnostics.  Defaults to
	// a diag.SlogReporter using Logger.
	Reporter diag.Reporter

	// Logger is given to each Manager.  Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Debug turns on each Manager's transition logging.
	Debug bool

	slots map[uuid.UUID]*slot

	// seeds are loaded states for owners that don't have a slot
	// yet.
	seeds map[uuid.UUID]core.State
}

func NewArena() *Arena {
	return &Arena{
		slots: make(map[uuid.UUID]*slot, 32),
		seeds: make(map[uuid.UUID]core.State, 8),
	}
}

func (a *Arena) reporter() diag.Reporter {
	if a.Reporter != nil {
		return a.Reporter
	}
	return diag.NewSlogReporter(a.logger())
}

func (a *Arena) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Result is what UseManagedState gives the owner.
type Result struct {
	State   core.State
	Actions map[string]core.Bound
	Manager *core.Manager
}

func resultOf(m *core.Manager) *Result {
	return &Result{
		State:   m.State(),
		Actions: m.Actions(),
		Manager: m,
	}
}

// UseManagedState returns the owner's Manager state and actions,
// making or remaking the Manager as needed.
//
// The Manager is reused as long as the values of the given fields in
// props are the same (by reflect.DeepEqual) as last time.  Otherwise
// a new Manager is made.  A new Manager starts with the previous
// Manager's state with the defined controlled values laid over it,
// so fields that only the Manager knows about survive.  The first
// Manager for an owner starts with autocontrol.ComputeInitialState.
//
// Each Manager gets middleware that keeps controlled fields at their
// controlled values, and a side effect that calls r.Refresh().
func (a *Arena) UseManagedState(ctx context.Context, owner uuid.UUID, comp *autocontrol.Component, factory managers.Factory, fields []string, props core.State, r Refresher) (*Result, error) {
	var (
		values  = autocontrol.ControlledValues(fields, props)
		defined = autocontrol.DefinedControlled(fields, props)
	)

	a.Lock()
	defer a.Unlock()

	prev, have := a.slots[owner]
	if have && prev.hydrated {
		return nil, MixedForms
	}

	if have && reflect.DeepEqual(prev.values, values) {
		prev.setRefresher(r)
		return resultOf(prev.manager), nil
	}

	var initial core.State
	if have {
		initial = prev.manager.State().Merge(defined)
	} else {
		initial = autocontrol.ComputeInitialState(ctx, a.reporter(), comp, fields, props)
		if seed, have := a.seeds[owner]; have {
			initial = initial.Merge(seed).Merge(defined)
			delete(a.seeds, owner)
		}
	}

	s := &slot{
		values:     values,
		controlled: defined,
		refresher:  r,
	}

	var name string
	if comp != nil {
		name = comp.Name
	}

	m, err := factory(core.Config{
		Name:         name,
		InitialState: initial,
		Middleware: []core.Middleware{
			autocontrol.ControlledOverride(fields, props),
		},
		SideEffects: []core.SideEffect{
			s.refresh,
		},
		Debug:  a.Debug,
		Logger: a.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.manager = m
	a.slots[owner] = s

	if a.Debug {
		a.logger().DebugContext(ctx, "bridge manager",
			slog.String("owner", owner.String()),
			slog.Bool("recreated", have),
			slog.String("state", initial.String()))
	}

	return resultOf(m), nil
}

// UseHydratedState is the minimal form: the owner's Manager is made
// once, and the defined controlled values are hydrated into it
// whenever they differ from its state.  No diagnostics are reported
// and no middleware is installed.
func (a *Arena) UseHydratedState(ctx context.Context, owner uuid.UUID, factory managers.Factory, controlled core.State, r Refresher) (*core.Manager, error) {
	defined := make(core.State, len(controlled))
	for p, v := range controlled {
		if v != nil {
			defined[p] = v
		}
	}

	m, err := a.hydratedSlot(owner, factory, defined, r)
	if err != nil {
		return nil, err
	}

	// The arena isn't locked here, so side effects may use it.
	if current := m.State(); !current.Pick(defined.Fields()...).Equal(defined) {
		if _, err := m.Hydrate(ctx, defined); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// hydratedSlot finds or makes the owner's minimal-form slot.
func (a *Arena) hydratedSlot(owner uuid.UUID, factory managers.Factory, defined core.State, r Refresher) (*core.Manager, error) {
	a.Lock()
	defer a.Unlock()

	s, have := a.slots[owner]
	if have && !s.hydrated {
		return nil, MixedForms
	}

	if !have {
		s = &slot{
			hydrated:  true,
			refresher: r,
		}
		seed := a.seeds[owner]
		delete(a.seeds, owner)
		m, err := factory(core.Config{
			InitialState: seed,
			SideEffects: []core.SideEffect{
				s.refresh,
			},
			Debug:  a.Debug,
			Logger: a.Logger,
		})
		if err != nil {
			return nil, err
		}
		s.manager = m
		a.slots[owner] = s
	} else {
		s.setRefresher(r)
	}

	s.controlled = defined

	return s.manager, nil
}

// Manager returns the owner's current Manager, if any.
func (a *Arena) Manager(owner uuid.UUID) (*core.Manager, bool) {
	a.RLock()
	defer a.RUnlock()
	s, have := a.slots[owner]
	if !have {
		return nil, false
	}
	return s.manager, true
}

// Release forgets the owner's Manager.  No error if there isn't one.
func (a *Arena) Release(owner uuid.UUID) {
	a.Lock()
	delete(a.slots, owner)
	delete(a.seeds, owner)
	a.Unlock()
}

// Owners returns the owners that currently have Managers.
func (a *Arena) Owners() []uuid.UUID {
	a.RLock()
	defer a.RUnlock()
	acc := make([]uuid.UUID, 0, len(a.slots))
	for owner := range a.slots {
		acc = append(acc, owner)
	}
	return acc
}

// Len returns the number of owners that have Managers.
func (a *Arena) Len() int {
	a.RLock()
	defer a.RUnlock()
	return len(a.slots)
}
