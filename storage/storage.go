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

// Package storage defines persistence for manager snapshots.
//
// Snapshots are grouped into scopes (for example, one scope per
// page or per session).  A stored snapshot is only ever used as a
// hydration source.
package storage

import (
	"context"

	"github.com/Comcast/autostate/core"
)

// Snapshot is a presentation of a manager's state as stored in a
// Storage system.
type Snapshot struct {
	// Owner is the id of the manager's owner.
	Owner string `json:"owner,omitempty"`

	// Manager is the manager's name.
	Manager string `json:"manager,omitempty"`

	State core.State `json:"state"`

	// Deleted indicates that this snapshot should be removed.
	Deleted bool `json:"-" yaml:"-"`
}

// Storage is a persistence interface for snapshots.
type Storage interface {
	MakeScope(ctx context.Context, scope string) error

	RemScope(ctx context.Context, scope string) error

	// GetScope returns all snapshots in the scope.  A scope that
	// doesn't exist has no snapshots.
	GetScope(ctx context.Context, scope string) ([]*Snapshot, error)

	WriteState(ctx context.Context, scope string, ss []*Snapshot) error
}

// AsMap indexes the given snapshots by owner.
func AsMap(ss []*Snapshot) map[string]*Snapshot {
	acc := make(map[string]*Snapshot, len(ss))
	for _, s := range ss {
		acc[s.Owner] = s
	}
	return acc
}
