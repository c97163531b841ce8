// Package state provides the conversation-scoped shared state store that
// mounted components read and mutate.
//
// A Store holds the supply inventory and map markers of exactly one thread.
// It is explicitly constructed and injected; there is no process-wide
// instance. Every mutation is atomic and pushes a Change to subscribers in
// mutation order.
package state

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/resq-ai/resq-core/application/validation"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/resq-ai/resq-core/domain/ports"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeSupplies ChangeKind = "supplies"
	ChangeMarkers  ChangeKind = "markers"
	ChangeReset    ChangeKind = "reset"
)

// Change is pushed to subscribers after every mutation. Snapshot is the
// state exactly as the mutation left it.
type Change struct {
	Kind     ChangeKind
	Snapshot entities.Snapshot
}

// Listener receives changes. Listeners run synchronously on the goroutine
// that drains the notification queue and may call back into the store.
type Listener func(Change)

// storeConfig holds configuration for the Store.
type storeConfig struct {
	logger *slog.Logger
	seed   entities.Seed
	now    func() time.Time
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		logger: slog.Default(),
		now:    time.Now,
	}
}

// StoreOption configures a Store instance.
type StoreOption func(*storeConfig)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSeed sets the contents the store holds before any thread is established.
func WithSeed(seed entities.Seed) StoreOption {
	return func(c *storeConfig) {
		c.seed = seed
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		c.now = now
	}
}

type subscription struct {
	fn Listener
	id uint64
}

// Store is the single source of truth for supplies and markers of the active thread.
type Store struct {
	config storeConfig

	mu       sync.Mutex
	threadID string
	supplies []entities.SupplyItem
	markers  []entities.MapMarker
	version  uint64
	disposed bool

	// subMu guards subscribers and the notification queue. Lock order: mu, then subMu.
	subMu    sync.Mutex
	subs     []subscription
	nextID   uint64
	pending  []Change
	draining bool
}

var _ ports.ThreadResetter = (*Store)(nil)

// NewStore creates a store holding the seed data (if any) and no thread.
func NewStore(opts ...StoreOption) *Store {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		config:   cfg,
		supplies: entities.CloneSupplies(cfg.seed.Supplies),
		markers:  entities.FilterFiniteMarkers(cfg.seed.Markers),
	}
}

// ThreadID returns the thread the store currently belongs to.
func (s *Store) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Supplies returns a copy of the supply inventory.
func (s *Store) Supplies() []entities.SupplyItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entities.CloneSupplies(s.supplies)
}

// Markers returns a copy of the map markers.
func (s *Store) Markers() []entities.MapMarker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entities.CloneMarkers(s.markers)
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() entities.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ReplaceSupplies replaces the whole inventory. Items must be individually
// valid and have unique ids; an invalid batch is rejected as a whole.
func (s *Store) ReplaceSupplies(items []entities.SupplyItem) error {
	return s.replaceSupplies(nil, items)
}

// AdjustSupplyCount applies delta to the item's count, clamped at zero.
// An unknown id is a silent no-op: it reports false and notifies nobody.
func (s *Store) AdjustSupplyCount(id string, delta int) (bool, error) {
	return s.adjustSupplyCount(nil, id, delta)
}

// ReplaceMarkers replaces the marker set. Markers with non-finite coordinates
// are dropped, not rejected; the number retained is returned.
func (s *Store) ReplaceMarkers(markers []entities.MapMarker) (int, error) {
	return s.replaceMarkers(nil, markers)
}

// Reset empties both collections and binds the store to threadID in one
// atomic step, so no reader can observe the previous thread's data under the
// new thread id.
func (s *Store) Reset(threadID string) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return errors.ErrStoreDisposed
	}
	previous := s.threadID
	s.threadID = threadID
	s.supplies = []entities.SupplyItem{}
	s.markers = []entities.MapMarker{}
	s.enqueueLocked(ChangeReset)
	s.mu.Unlock()

	s.config.logger.Debug("state reset", "from_thread", previous, "to_thread", threadID)
	s.drain()
	return nil
}

// Dispose releases the store. All later mutations fail with ErrStoreDisposed
// and subscribers are dropped. Dispose is idempotent.
func (s *Store) Dispose() {
	s.mu.Lock()
	s.disposed = true
	s.supplies = nil
	s.markers = nil
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = nil
	s.pending = nil
	s.subMu.Unlock()
}

// Subscribe registers fn for every subsequent change and returns a function
// that unregisters it. Unsubscribing twice is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Scope returns thread-bound access to the store. See Scope.
func (s *Store) Scope(threadID string) *Scope {
	return &Scope{store: s, threadID: threadID}
}

// checkLocked verifies the store is usable and, when thread is non-nil,
// still bound to *thread.
func (s *Store) checkLocked(thread *string) error {
	if s.disposed {
		return errors.ErrStoreDisposed
	}
	if thread != nil && *thread != s.threadID {
		return fmt.Errorf("scope %q, active %q: %w", *thread, s.threadID, errors.ErrStaleThread)
	}
	return nil
}

func (s *Store) replaceSupplies(thread *string, items []entities.SupplyItem) error {
	if err := validation.Slice("supplies", items); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ID]; dup {
			return &errors.SchemaValidationError{
				Field:    fmt.Sprintf("supplies[%d].id", i),
				Expected: "unique id",
				Actual:   fmt.Sprintf("duplicate %q", item.ID),
			}
		}
		seen[item.ID] = struct{}{}
	}

	s.mu.Lock()
	if err := s.checkLocked(thread); err != nil {
		s.mu.Unlock()
		return err
	}
	s.supplies = entities.CloneSupplies(items)
	s.enqueueLocked(ChangeSupplies)
	s.mu.Unlock()

	s.drain()
	return nil
}

func (s *Store) adjustSupplyCount(thread *string, id string, delta int) (bool, error) {
	s.mu.Lock()
	if err := s.checkLocked(thread); err != nil {
		s.mu.Unlock()
		return false, err
	}

	idx := -1
	for i := range s.supplies {
		if s.supplies[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.config.logger.Debug("adjust ignored: unknown supply id", "id", id, "delta", delta)
		return false, nil
	}

	// Copy-on-write so snapshots handed out earlier never change underneath readers.
	next := entities.CloneSupplies(s.supplies)
	next[idx] = next[idx].WithDelta(delta)
	s.supplies = next
	s.enqueueLocked(ChangeSupplies)
	s.mu.Unlock()

	s.drain()
	return true, nil
}

func (s *Store) replaceMarkers(thread *string, markers []entities.MapMarker) (int, error) {
	kept := entities.FilterFiniteMarkers(markers)
	if dropped := len(markers) - len(kept); dropped > 0 {
		s.config.logger.Warn("dropped markers with non-finite coordinates", "dropped", dropped, "kept", len(kept))
	}

	s.mu.Lock()
	if err := s.checkLocked(thread); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.markers = kept
	s.enqueueLocked(ChangeMarkers)
	s.mu.Unlock()

	s.drain()
	return len(kept), nil
}

func (s *Store) snapshotLocked() entities.Snapshot {
	return entities.Snapshot{
		ThreadID: s.threadID,
		Version:  s.version,
		Supplies: entities.CloneSupplies(s.supplies),
		Markers:  entities.CloneMarkers(s.markers),
		TakenAt:  s.config.now(),
	}
}

// enqueueLocked bumps the version and queues a change; s.mu must be held so
// queue order matches mutation order.
func (s *Store) enqueueLocked(kind ChangeKind) {
	s.version++
	ch := Change{Kind: kind, Snapshot: s.snapshotLocked()}

	s.subMu.Lock()
	if !s.disposed {
		s.pending = append(s.pending, ch)
	}
	s.subMu.Unlock()
}

// drain delivers queued changes. Only one goroutine drains at a time; a
// mutation made from inside a listener is queued and delivered by the
// outer drain loop after the current change reaches every listener.
func (s *Store) drain() {
	s.subMu.Lock()
	if s.draining {
		s.subMu.Unlock()
		return
	}
	s.draining = true

	for len(s.pending) > 0 {
		ch := s.pending[0]
		s.pending = s.pending[1:]
		subs := make([]subscription, len(s.subs))
		copy(subs, s.subs)
		s.subMu.Unlock()

		for _, sub := range subs {
			s.notify(sub, ch)
		}

		s.subMu.Lock()
	}

	s.draining = false
	s.subMu.Unlock()
}

// notify isolates listener panics so one faulty component cannot wedge the
// notification queue for every other subscriber.
func (s *Store) notify(sub subscription, ch Change) {
	defer func() {
		if r := recover(); r != nil {
			s.config.logger.Error("state listener panicked", "subscription", sub.id, "change", ch.Kind, "panic", r)
		}
	}()
	sub.fn(ch)
}
