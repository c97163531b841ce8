package catalog

import (
	"sync"

	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
)

// binding keeps a component's latest view of the shared state. It is embedded
// by every component in this package.
type binding struct {
	scope *state.Scope

	mu          sync.Mutex
	snapshot    entities.Snapshot
	renders     int
	loaded      bool
	stale       bool
	unsubscribe func()
}

// observe subscribes to changes and then takes the initial snapshot, so no
// mutation between the two is missed. Changes at or below the version already
// held are ignored.
func (b *binding) observe() error {
	b.mu.Lock()
	b.renders = 1
	b.mu.Unlock()

	unsubscribe := b.scope.Subscribe(b.onChange)
	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	snap, err := b.scope.Snapshot()
	if err != nil {
		b.Unmount()
		return err
	}

	b.mu.Lock()
	if !b.loaded || snap.Version > b.snapshot.Version {
		b.snapshot = snap
		b.loaded = true
	}
	b.mu.Unlock()
	return nil
}

func (b *binding) onChange(ch state.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.Snapshot.ThreadID != b.scope.ThreadID() {
		b.stale = true
		return
	}
	if b.loaded && ch.Snapshot.Version <= b.snapshot.Version {
		return
	}
	b.snapshot = ch.Snapshot
	b.loaded = true
	b.renders++
}

// current returns the last observed snapshot, or ErrStaleThread once the
// component's thread has been superseded.
func (b *binding) current() (entities.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stale {
		return entities.Snapshot{}, errors.ErrStaleThread
	}
	return b.snapshot, nil
}

// Renders reports how many times the component has (re)rendered.
func (b *binding) Renders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

// Unmount stops observing the store.
func (b *binding) Unmount() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
