package hostfuncs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// HostContext wraps a standard context.Context with per-request handler
// details. Middleware uses it to read the handler name and request id and to
// share request-scoped values without nesting context.WithValue calls.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the handler being invoked.
	FunctionName() string

	// RequestID returns the id assigned to this invocation.
	RequestID() string

	// SetValue stores a request-scoped value.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostContext struct {
	context.Context
	values    map[any]any
	funcName  string
	requestID string
	mu        sync.Mutex
}

// NewHostContext creates a HostContext with a fresh request id.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:   ctx,
		funcName:  funcName,
		requestID: uuid.NewString(),
		values:    make(map[any]any),
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) RequestID() string {
	return c.requestID
}

func (c *hostContext) SetValue(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom returns ctx itself when it already is a HostContext, and a
// new HostContext for funcName otherwise.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	return NewHostContext(ctx, funcName)
}
