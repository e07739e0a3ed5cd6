/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package tools has utilities for working with Definitions.
package tools

import (
	"context"
	"sort"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/diag"
)

// Analysis summarizes a Definition.
type Analysis struct {
	Actions      []string
	Middleware   int
	Interpreters []string

	// Uninitialized are auto-controlled fields without an initial
	// value.  They start undefined unless a prop or default prop
	// gives them a value.
	Uninitialized []string

	// Diagnostics are what reconciliation would report.
	Diagnostics []diag.Diagnostic

	// Errors are problems that would prevent compilation.
	Errors []string
}

// Analyze examines the Definition without compiling it.
func Analyze(ctx context.Context, d *core.Definition) *Analysis {
	var (
		a            = &Analysis{}
		interpreters = make(map[string]bool)
	)

	for name, src := range d.Actions {
		a.Actions = append(a.Actions, name)
		if src == nil {
			a.Errors = append(a.Errors, "action "+name+" has no source")
			continue
		}
		interpreters[src.Interpreter] = true
	}
	sort.Strings(a.Actions)

	for _, src := range d.Middleware {
		a.Middleware++
		if src == nil {
			a.Errors = append(a.Errors, "middleware without source")
			continue
		}
		interpreters[src.Interpreter] = true
	}

	for name := range interpreters {
		a.Interpreters = append(a.Interpreters, name)
	}
	sort.Strings(a.Interpreters)

	for _, p := range d.AutoControlled {
		if _, have := d.InitialState[p]; !have {
			a.Uninitialized = append(a.Uninitialized, p)
		}
	}

	var c diag.Collector
	autocontrol.Check(ctx, &c, autocontrol.ComponentOf(d), d.AutoControlled)
	a.Diagnostics = c.Diagnostics

	return a
}
