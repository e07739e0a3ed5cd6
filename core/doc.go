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

// Package core provides the state container that interactive
// components use to manage state that a caller can partly or fully
// take over.
//
// The primary type is Manager, and the primary method is Dispatch().
// A Manager holds a State (a map[string]interface{}), a set of named
// Actions, an ordered list of Middleware, and an ordered list of
// SideEffects.
//
// Dispatching an action computes a patch from the current State, merges
// that patch (shallowly) over the current State, runs the result
// through each Middleware, commits the result, and then calls each
// SideEffect with the committed State.  If the action or a Middleware
// fails, nothing is committed.
//
// Hydrate() is the escape hatch: it merges a partial State directly
// and commits it without running any action or Middleware.  Side
// effects still run.
//
// An Action can be written in Go (FuncAction, ActionFunc) or as source
// code (ActionSource) that an Interpreter compiles.  Middleware works
// the same way (MiddlewareFunc, MiddlewareSource).
//
// Ideally an Action does not block or perform any IO.  An Action
// returns a patch, and anything that needs to influence the world
// should be a SideEffect.
//
// To use this package, make a Config (or parse a Definition and
// Compile() it), call NewManager(), and then Dispatch().
package core
