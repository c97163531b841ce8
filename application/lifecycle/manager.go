// Package lifecycle tracks the active conversation thread and resets shared
// state whenever it changes.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/resq-ai/resq-core/domain/ports"
	rlog "github.com/resq-ai/resq-core/log"
)

// Phase is the manager's state.
type Phase int

const (
	// PhaseUninitialized means no thread has been established yet.
	PhaseUninitialized Phase = iota
	// PhaseActive means a thread is active and its state has been reset.
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// Transition describes a completed thread change.
type Transition struct {
	From string
	To   string
}

// TransitionHook observes completed transitions. Hooks run after the store
// has been reset, while the manager still holds its lock, and must not call
// back into the Manager.
type TransitionHook func(ctx context.Context, t Transition)

type managerConfig struct {
	logger *slog.Logger
	hooks  []TransitionHook
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger: slog.Default(),
	}
}

// Option configures a Manager.
type Option func(*managerConfig)

// WithLogger sets the logger for transition diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransitionHook registers a hook called after every successful transition.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *managerConfig) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// Manager owns the active thread id. It is the only component that resets
// shared state, and it serializes resets with reads of the active thread:
// Active blocks while a reset is in flight.
type Manager struct {
	resetter ports.ThreadResetter
	config   managerConfig

	mu       sync.RWMutex
	phase    Phase
	active   string
	resetErr error
}

var _ ports.ThreadSource = (*Manager)(nil)

// NewManager creates a manager in PhaseUninitialized.
func NewManager(resetter ports.ThreadResetter, opts ...Option) *Manager {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{resetter: resetter, config: cfg}
}

// OnThreadChanged moves the manager to threadID.
//
// An empty id (no thread yet) and the currently active id are no-ops. Any
// other id resets the shared state before the call returns and before
// Active reports the new id. When the reset fails the manager drops back to
// PhaseUninitialized and returns a *errors.ThreadResetError; Active reports
// the same error until a later transition succeeds.
func (m *Manager) OnThreadChanged(ctx context.Context, threadID string) error {
	if threadID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseActive && m.active == threadID {
		return nil
	}

	from := m.active
	logger := m.config.logger.With(rlog.ThreadKey, threadID)

	if err := m.resetter.Reset(threadID); err != nil {
		resetErr := &errors.ThreadResetError{ThreadID: threadID, Err: err}
		m.phase = PhaseUninitialized
		m.active = ""
		m.resetErr = resetErr
		logger.ErrorContext(ctx, "thread reset failed", "from_thread", from, "error", err)
		return resetErr
	}

	m.phase = PhaseActive
	m.active = threadID
	m.resetErr = nil
	logger.InfoContext(ctx, "thread activated", "from_thread", from)

	t := Transition{From: from, To: threadID}
	for _, hook := range m.config.hooks {
		hook(ctx, t)
	}
	return nil
}

// Active returns the active thread id, or "" before any thread has been
// established. It returns the last ThreadResetError if the most recent
// transition failed.
func (m *Manager) Active() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.resetErr != nil {
		return "", m.resetErr
	}
	return m.active, nil
}

// Phase returns the current phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}
