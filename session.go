// Package resq wires the capability catalog, shared state store, thread
// lifecycle manager and dispatcher into a Session driven through JSON
// handlers.
//
// A chat transport owns one Session per conversation surface:
//
//	s, err := resq.NewSession(resq.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	resp, err := s.Handle(ctx, hostfuncs.HandlerThreadChanged, []byte(`{"thread_id":"t-1"}`))
package resq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/resq-ai/resq-core/application/catalog"
	"github.com/resq-ai/resq-core/application/config"
	"github.com/resq-ai/resq-core/application/lifecycle"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/ports"
	"github.com/resq-ai/resq-core/host"
	"github.com/resq-ai/resq-core/hostfuncs"
	"github.com/resq-ai/resq-core/infrastructure/parser"
	"github.com/resq-ai/resq-core/infrastructure/snapshotstore"
	rlog "github.com/resq-ai/resq-core/log"
)

// sessionConfig holds configuration for a Session.
type sessionConfig struct {
	logger     *slog.Logger
	seedParser ports.SeedParser
	snapshots  ports.SnapshotStore
	now        func() time.Time
	middleware []hostfuncs.Middleware
	cfg        config.Config
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		cfg:        config.Default(),
		seedParser: parser.NewYamlSeedParser(),
		now:        time.Now,
	}
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithConfig sets the runtime configuration.
func WithConfig(cfg config.Config) Option {
	return func(c *sessionConfig) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger. By default a text logger on stderr at the
// configured level is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithSnapshotStore overrides the snapshot store built from Config.SnapshotDir.
func WithSnapshotStore(s ports.SnapshotStore) Option {
	return func(c *sessionConfig) {
		c.snapshots = s
	}
}

// WithSeedParser overrides the parser used for Config.SeedFile.
func WithSeedParser(p ports.SeedParser) Option {
	return func(c *sessionConfig) {
		if p != nil {
			c.seedParser = p
		}
	}
}

// WithClock overrides the time source of snapshots, reports and handles.
func WithClock(now func() time.Time) Option {
	return func(c *sessionConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMiddleware appends handler middleware after panic recovery and logging.
func WithMiddleware(mw ...hostfuncs.Middleware) Option {
	return func(c *sessionConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// Session is one fully wired capability layer.
type Session struct {
	store       *state.Store
	threads     *lifecycle.Manager
	dispatcher  *host.Dispatcher
	handlers    *hostfuncs.HandlerRegistry
	snapshots   ports.SnapshotStore
	logger      *slog.Logger
	unsubscribe func()
}

// NewSession validates the configuration, loads the seed and builds the session.
func NewSession(opts ...Option) (*Session, error) {
	sc := defaultSessionConfig()
	for _, opt := range opts {
		opt(&sc)
	}
	if err := sc.cfg.Validate(); err != nil {
		return nil, err
	}

	logger := sc.logger
	if logger == nil {
		logger = rlog.New(os.Stderr, rlog.WithLevel(sc.cfg.SlogLevel()))
	}

	seed, err := loadSeed(sc.cfg.SeedFile, sc.seedParser)
	if err != nil {
		return nil, err
	}

	snapshots := sc.snapshots
	if snapshots == nil && sc.cfg.SnapshotDir != "" {
		snapshots = snapshotstore.NewFileStore(snapshotstore.WithDir(sc.cfg.SnapshotDir))
	}

	store := state.NewStore(
		state.WithLogger(logger),
		state.WithSeed(seed),
		state.WithClock(sc.now),
	)

	catalogOpts := []catalog.Option{
		catalog.WithStore(store),
		catalog.WithClock(sc.now),
		catalog.WithDefaultCenter(sc.cfg.DefaultCenter),
	}
	if snapshots != nil {
		catalogOpts = append(catalogOpts, catalog.WithSnapshotStore(snapshots))
	}
	reg, err := catalog.NewRegistry(catalogOpts...)
	if err != nil {
		store.Dispose()
		return nil, fmt.Errorf("failed to build capability registry: %w", err)
	}

	threads := lifecycle.NewManager(store, lifecycle.WithLogger(logger))
	dispatcher := host.NewDispatcher(reg, store, threads,
		host.WithLogger(logger),
		host.WithClock(sc.now),
	)

	middleware := append([]hostfuncs.Middleware{
		hostfuncs.PanicRecoveryMiddleware(),
		hostfuncs.LoggingMiddleware(logger),
	}, sc.middleware...)
	handlers, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(middleware...),
		hostfuncs.WithBundle(hostfuncs.SessionBundle(dispatcher, threads, store)),
	)
	if err != nil {
		dispatcher.Close()
		store.Dispose()
		return nil, fmt.Errorf("failed to build handler registry: %w", err)
	}

	s := &Session{
		store:       store,
		threads:     threads,
		dispatcher:  dispatcher,
		handlers:    handlers,
		snapshots:   snapshots,
		logger:      logger,
		unsubscribe: func() {},
	}
	if snapshots != nil {
		s.unsubscribe = store.Subscribe(s.persist)
	}
	return s, nil
}

func loadSeed(path string, p ports.SeedParser) (entities.Seed, error) {
	if path == "" {
		return entities.Seed{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	seed, err := p.Parse(data)
	if err != nil {
		return entities.Seed{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return *seed, nil
}

// persist saves the state of the thread that produced the change. Resets are
// skipped so re-entering a thread keeps its last saved snapshot.
func (s *Session) persist(ch state.Change) {
	if ch.Kind == state.ChangeReset || ch.Snapshot.ThreadID == "" {
		return
	}
	if err := s.snapshots.Save(ch.Snapshot); err != nil {
		s.logger.Warn("failed to persist snapshot",
			rlog.ThreadKey, ch.Snapshot.ThreadID,
			"version", ch.Snapshot.Version,
			"location", s.snapshots.Location(),
			"error", err)
	}
}

// Handle runs the named JSON handler. Errors from the capability layer come
// back as ErrorResponse JSON; the returned error is reserved for transport
// failures.
func (s *Session) Handle(ctx context.Context, name string, payload []byte) ([]byte, error) {
	return s.handlers.Invoke(ctx, name, payload)
}

// HandlerNames lists the handlers Handle accepts.
func (s *Session) HandlerNames() []string {
	return s.handlers.Names()
}

// Dispatcher exposes the dispatcher for in-process callers.
func (s *Session) Dispatcher() *host.Dispatcher {
	return s.dispatcher
}

// Threads exposes the lifecycle manager.
func (s *Session) Threads() *lifecycle.Manager {
	return s.threads
}

// Store exposes the shared state store.
func (s *Session) Store() *state.Store {
	return s.store
}

// Close unmounts every component, stops persistence and disposes the store.
func (s *Session) Close() {
	s.dispatcher.Close()
	s.unsubscribe()
	s.store.Dispose()
}
