package state

import (
	"github.com/resq-ai/resq-core/domain/entities"
)

// Scope is store access bound to one thread. Once the store has been reset
// to another thread every Scope call fails with errors.ErrStaleThread, so a
// component mounted for an old thread, or an asynchronous result issued for
// one, can never read or write the new thread's state.
type Scope struct {
	store    *Store
	threadID string
}

// ThreadID returns the thread this scope is bound to.
func (sc *Scope) ThreadID() string {
	return sc.threadID
}

// Active reports whether the scope's thread is still the store's thread.
func (sc *Scope) Active() bool {
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return sc.store.checkLocked(&sc.threadID) == nil
}

// Snapshot returns the state of the scope's thread.
func (sc *Scope) Snapshot() (entities.Snapshot, error) {
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	if err := sc.store.checkLocked(&sc.threadID); err != nil {
		return entities.Snapshot{}, err
	}
	return sc.store.snapshotLocked(), nil
}

// Supplies returns a copy of the inventory of the scope's thread.
func (sc *Scope) Supplies() ([]entities.SupplyItem, error) {
	snap, err := sc.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Supplies, nil
}

// Markers returns a copy of the markers of the scope's thread.
func (sc *Scope) Markers() ([]entities.MapMarker, error) {
	snap, err := sc.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Markers, nil
}

// ReplaceSupplies is Store.ReplaceSupplies guarded by the scope's thread.
func (sc *Scope) ReplaceSupplies(items []entities.SupplyItem) error {
	return sc.store.replaceSupplies(&sc.threadID, items)
}

// AdjustSupplyCount is Store.AdjustSupplyCount guarded by the scope's thread.
func (sc *Scope) AdjustSupplyCount(id string, delta int) (bool, error) {
	return sc.store.adjustSupplyCount(&sc.threadID, id, delta)
}

// ReplaceMarkers is Store.ReplaceMarkers guarded by the scope's thread.
func (sc *Scope) ReplaceMarkers(markers []entities.MapMarker) (int, error) {
	return sc.store.replaceMarkers(&sc.threadID, markers)
}

// Subscribe registers fn for changes to the scope's thread only. Changes made
// after a reset to another thread are not delivered; the reset itself is, so
// the subscriber learns it went stale.
func (sc *Scope) Subscribe(fn Listener) (unsubscribe func()) {
	return sc.store.Subscribe(func(ch Change) {
		if ch.Snapshot.ThreadID == sc.threadID || ch.Kind == ChangeReset {
			fn(ch)
		}
	})
}
