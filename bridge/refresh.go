package bridge

import "sync/atomic"

// Refresher is told when a Manager has committed a new state.  A
// Refresher should only schedule a refresh.  It should re-read the
// Manager's state when the refresh happens.
type Refresher interface {
	Refresh()
}

// RefreshFunc makes a function a Refresher.
type RefreshFunc func()

func (f RefreshFunc) Refresh() {
	f()
}

// Flag is a Refresher that just remembers that a refresh is needed.
//
// Refresh is idempotent: any number of calls before a Take look like
// one.
type Flag struct {
	dirty atomic.Bool
}

func (f *Flag) Refresh() {
	f.dirty.Store(true)
}

// Take reports whether a refresh was requested since the last Take
// and clears the request.
func (f *Flag) Take() bool {
	return f.dirty.Swap(false)
}

// Dirty reports whether a refresh is pending without clearing it.
func (f *Flag) Dirty() bool {
	return f.dirty.Load()
}
