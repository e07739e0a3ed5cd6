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

package sio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/bridge"
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/managers"

	"github.com/google/uuid"
)

// Op is one line of Stdio input.  Exactly one of Props, Action,
// Hydrate, and Release should be given.
//
//	{"props":{"open":true}}
//	{"action":"close","args":["escape"]}
//	{"hydrate":{"title":"Hello"}}
//	{"release":true}
//
// Owner optionally names the owner (a UUID).  Otherwise the Stdio's
// default owner is used.  Hydrate skips fields that the owner's
// current props control.
type Op struct {
	Owner   string        `json:"owner,omitempty"`
	Props   core.State    `json:"props,omitempty"`
	Action  string        `json:"action,omitempty"`
	Args    []interface{} `json:"args,omitempty"`
	Hydrate core.State    `json:"hydrate,omitempty"`
	Release bool          `json:"release,omitempty"`
}

// Stdio reads Ops as JSON lines and runs them against an Arena as a
// renderer would: props are given to UseManagedState, actions are
// dispatched, and owners whose Managers requested a refresh are
// rendered again.
//
// Each rendering writes a "state" line.  Lines starting with '#' and
// blank lines are ignored.  "quit" stops.
type Stdio struct {
	In  io.Reader
	Out io.Writer

	Arena     *bridge.Arena
	Component *autocontrol.Component
	Factory   managers.Factory

	// Fields are the auto-controlled fields.
	Fields []string

	// SideEffects, if not nil, provides additional side effects
	// for the given owner's Manager.
	SideEffects func(owner uuid.UUID) []core.SideEffect

	// Owner is the default owner.
	Owner uuid.UUID

	// EchoInput writes input lines (tagged "input") to Out.
	EchoInput bool

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// ShellExpand enables input to include inline shell commands
	// delimited by '<<' and '>>'.
	ShellExpand bool

	props map[uuid.UUID]core.State
	flags map[uuid.UUID]*bridge.Flag
}

// NewStdio makes a Stdio for stdin and stdout.
func NewStdio(arena *bridge.Arena, comp *autocontrol.Component, factory managers.Factory, fields []string) *Stdio {
	return &Stdio{
		In:        os.Stdin,
		Out:       os.Stdout,
		Arena:     arena,
		Component: comp,
		Factory:   factory,
		Fields:    fields,
		Owner:     bridge.NewOwner(),
	}
}

func (s *Stdio) printf(tag, format string, args ...interface{}) {
	format = fmt.Sprintf("%-8s", tag) + format
	if s.Timestamps {
		format = fmt.Sprintf("%-31s", core.Timestamp()) + " " + format
	}
	fmt.Fprintf(s.Out, format, args...)
}

// Run processes input until EOF, "quit", or ctx is done.
func (s *Stdio) Run(ctx context.Context) error {
	if s.props == nil {
		s.props = make(map[uuid.UUID]core.State)
		s.flags = make(map[uuid.UUID]*bridge.Flag)
	}

	in := bufio.NewReader(s.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "quit" {
			return nil
		}
		if s.EchoInput {
			s.printf("input", "%s\n", trimmed)
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if s.ShellExpand {
			if trimmed, err = ShellExpand(trimmed); err != nil {
				s.printf("error", "%s\n", err)
				continue
			}
		}

		var op Op
		if err := json.Unmarshal([]byte(trimmed), &op); err != nil {
			s.printf("error", "bad input: %s\n", err)
			continue
		}
		if err := s.Do(ctx, &op); err != nil {
			s.printf("error", "%s\n", err)
		}
	}
}

// Do runs a single Op.
func (s *Stdio) Do(ctx context.Context, op *Op) error {
	owner := s.Owner
	if op.Owner != "" {
		var err error
		if owner, err = uuid.Parse(op.Owner); err != nil {
			return err
		}
	}

	switch {
	case op.Release:
		s.Arena.Release(owner)
		delete(s.props, owner)
		delete(s.flags, owner)
		s.printf("release", "%s\n", owner)
		return nil

	case op.Props != nil:
		s.props[owner] = op.Props
		return s.render(ctx, owner)

	case op.Action != "":
		if _, have := s.Arena.Manager(owner); !have {
			if err := s.render(ctx, owner); err != nil {
				return err
			}
		}
		m, _ := s.Arena.Manager(owner)
		if _, err := m.Dispatch(ctx, op.Action, op.Args...); err != nil {
			return err
		}
		return s.refresh(ctx, owner)

	case op.Hydrate != nil:
		m, have := s.Arena.Manager(owner)
		if !have {
			return fmt.Errorf("no manager for %s", owner)
		}
		patch := op.Hydrate.Remove(autocontrol.DefinedControlled(s.Fields, s.props[owner]).Fields()...)
		if _, err := m.Hydrate(ctx, patch); err != nil {
			return err
		}
		return s.refresh(ctx, owner)
	}

	return errors.New("empty op")
}

func (s *Stdio) factory(owner uuid.UUID) managers.Factory {
	if s.SideEffects == nil {
		return s.Factory
	}
	return managers.WithSideEffects(s.Factory, s.SideEffects(owner)...)
}

func (s *Stdio) flag(owner uuid.UUID) *bridge.Flag {
	f, have := s.flags[owner]
	if !have {
		f = &bridge.Flag{}
		s.flags[owner] = f
	}
	return f
}

func (s *Stdio) render(ctx context.Context, owner uuid.UUID) error {
	r, err := s.Arena.UseManagedState(ctx, owner, s.Component, s.factory(owner), s.Fields, s.props[owner], s.flag(owner))
	if err != nil {
		return err
	}
	s.printf("state", "%s %s\n", owner, r.State)
	return nil
}

// refresh renders the owner again if its Manager asked for it.
func (s *Stdio) refresh(ctx context.Context, owner uuid.UUID) error {
	if !s.flag(owner).Take() {
		return nil
	}
	return s.render(ctx, owner)
}
