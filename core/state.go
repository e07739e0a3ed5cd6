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
	"encoding/json"
	"reflect"
	"sort"
)

// State is a map from field names to values.
//
// A State held by a Manager is never modified in place.  Every
// transition produces a new map.  Values are opaque: a nested map is
// replaced wholesale by a patch, never merged.
type State map[string]interface{}

// NewState makes an empty State.
func NewState() State {
	return make(State, 8)
}

// Copy makes a shallow copy.
//
// A nil State gives an empty (non-nil) State.
func (s State) Copy() State {
	acc := make(State, len(s))
	for p, v := range s {
		acc[p] = v
	}
	return acc
}

// Merge returns a new State with the fields of the patch laid over
// the fields of the receiver.
//
// Neither the receiver nor the patch is modified.
func (s State) Merge(patch State) State {
	acc := make(State, len(s)+len(patch))
	for p, v := range s {
		acc[p] = v
	}
	for p, v := range patch {
		acc[p] = v
	}
	return acc
}

// Remove returns a copy without the given fields.
func (s State) Remove(fields ...string) State {
	acc := s.Copy()
	for _, p := range fields {
		delete(acc, p)
	}
	return acc
}

// Pick returns a new State with only the given fields that are
// present in the receiver.
func (s State) Pick(fields ...string) State {
	acc := make(State, len(fields))
	for _, p := range fields {
		if v, have := s[p]; have {
			acc[p] = v
		}
	}
	return acc
}

// Fields returns the sorted field names.
func (s State) Fields() []string {
	acc := make([]string, 0, len(s))
	for p := range s {
		acc = append(acc, p)
	}
	sort.Strings(acc)
	return acc
}

// Equal reports whether the two States have the same fields with
// deeply equal values.
//
// A nil State equals an empty one.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for p, v := range s {
		w, have := o[p]
		if !have || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	if s == nil {
		return "{}"
	}
	js, err := json.Marshal(map[string]interface{}(s))
	if err != nil {
		return "{*}"
	}
	return string(js)
}
