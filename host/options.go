package host

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// dispatcherConfig holds configuration for the Dispatcher.
type dispatcherConfig struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func defaultDispatcherConfig() dispatcherConfig {
	return dispatcherConfig{
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Option configures a Dispatcher.
type Option func(*dispatcherConfig)

// WithLogger sets the logger used for invocation logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dispatcherConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for durations and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *dispatcherConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHandleIDs overrides render handle id generation. Defaults to random UUIDs.
func WithHandleIDs(newID func() string) Option {
	return func(c *dispatcherConfig) {
		if newID != nil {
			c.newID = newID
		}
	}
}
