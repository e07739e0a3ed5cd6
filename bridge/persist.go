package bridge

import (
	"context"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/storage"

	"github.com/google/uuid"
)

// Save writes every owner's state to the given scope.
//
// Save must not run while any of the Arena's Managers is dispatching
// or hydrating.
func (a *Arena) Save(ctx context.Context, st storage.Storage, scope string) error {
	a.RLock()
	ss := make([]*storage.Snapshot, 0, len(a.slots))
	for owner, s := range a.slots {
		ss = append(ss, &storage.Snapshot{
			Owner:   owner.String(),
			Manager: s.manager.Name(),
			State:   s.manager.State(),
		})
	}
	a.RUnlock()

	if err := st.MakeScope(ctx, scope); err != nil {
		return err
	}
	return st.WriteState(ctx, scope, ss)
}

// Load reads the scope's snapshots and uses them as hydration seeds.
//
// An owner that already has a Manager is hydrated right away, except
// for fields that are currently controlled.  Other owners get their
// seed when their Manager is made.  Snapshots with owners that aren't
// UUIDs are skipped.
func (a *Arena) Load(ctx context.Context, st storage.Storage, scope string) error {
	ss, err := st.GetScope(ctx, scope)
	if err != nil {
		return err
	}

	type pending struct {
		manager *core.Manager
		patch   core.State
	}
	var hydrations []pending

	a.Lock()
	for _, snap := range ss {
		owner, err := uuid.Parse(snap.Owner)
		if err != nil {
			a.logger().WarnContext(ctx, "bridge skipping snapshot", "owner", snap.Owner, "error", err)
			continue
		}
		s, have := a.slots[owner]
		if !have {
			a.seeds[owner] = snap.State.Copy()
			continue
		}
		hydrations = append(hydrations, pending{
			manager: s.manager,
			patch:   snap.State.Remove(s.controlled.Fields()...),
		})
	}
	a.Unlock()

	for _, h := range hydrations {
		if _, err := h.manager.Hydrate(ctx, h.patch); err != nil {
			return err
		}
	}

	return nil
}
