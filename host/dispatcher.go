package host

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/resq-ai/resq-core/application/schema"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/resq-ai/resq-core/domain/ports"
	"github.com/resq-ai/resq-core/host/registry"
	rlog "github.com/resq-ai/resq-core/log"
)

// Outcome is the successful result of one invocation. Tools fill Output;
// components fill Handle.
type Outcome struct {
	Output     any
	Handle     *RenderHandle
	Capability string
	Kind       entities.CapabilityKind
	ThreadID   string
}

// Result converts the outcome into its transport envelope.
func (o *Outcome) Result() entities.InvocationResult {
	r := entities.InvocationResult{
		Timestamp:  time.Now().UTC(),
		Status:     entities.ResultStatusSuccess,
		Capability: o.Capability,
		Kind:       o.Kind,
		ThreadID:   o.ThreadID,
		Output:     o.Output,
	}
	if o.Handle != nil {
		r.HandleID = o.Handle.ID
	}
	return r
}

// ErrorResult converts an invocation error into its transport envelope.
func ErrorResult(capability string, err error) entities.InvocationResult {
	return entities.ResultError(capability, errors.ToErrorDetail(err))
}

// AsyncResult is delivered once by InvokeAsync.
type AsyncResult struct {
	Outcome *Outcome
	Err     error
}

// Dispatcher routes invocations to registered capabilities. It is safe for
// concurrent use.
type Dispatcher struct {
	registry *registry.Registry
	store    *state.Store
	threads  ports.ThreadSource
	config   dispatcherConfig

	wg sync.WaitGroup

	mu       sync.Mutex
	handles  map[string]*RenderHandle
	mountSeq uint64
}

// NewDispatcher creates a dispatcher over reg. Components are bound to store
// for the thread reported by threads at invocation time.
func NewDispatcher(reg *registry.Registry, store *state.Store, threads ports.ThreadSource, opts ...Option) *Dispatcher {
	cfg := defaultDispatcherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		registry: reg,
		store:    store,
		threads:  threads,
		config:   cfg,
		handles:  make(map[string]*RenderHandle),
	}
}

// Registry returns the registry the dispatcher resolves names against.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Invoke resolves name, validates rawArgs and runs the capability for the
// active thread.
//
// Errors:
//   - *errors.NotFoundError when name is not registered
//   - *errors.SchemaValidationError when rawArgs violate the input schema
//   - *errors.OutputSchemaError when a tool returns a value violating its output schema
//   - *errors.InvocationError when the tool or component itself fails
//   - *errors.PanicError when the tool or component panics
//   - errors.ErrStaleResult when the thread changed while a tool was running
//   - *errors.ThreadResetError when the active thread's state could not be reset
func (d *Dispatcher) Invoke(ctx context.Context, name string, rawArgs any) (*Outcome, error) {
	threadID, err := d.threads.Active()
	if err != nil {
		return nil, err
	}
	return d.invoke(ctx, name, rawArgs, threadID)
}

// InvokeAsync runs Invoke on its own goroutine. The active thread is captured
// when InvokeAsync is called; if it has changed by the time the capability
// finishes, the outcome is discarded and errors.ErrStaleResult is delivered
// instead. The returned channel receives exactly one value and is then closed.
func (d *Dispatcher) InvokeAsync(ctx context.Context, name string, rawArgs any) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)

	threadID, err := d.threads.Active()
	if err != nil {
		ch <- AsyncResult{Err: err}
		close(ch)
		return ch
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		out, err := d.invoke(ctx, name, rawArgs, threadID)
		ch <- AsyncResult{Outcome: out, Err: err}
	}()
	return ch
}

// Wait blocks until every asynchronous invocation has delivered its result.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) invoke(ctx context.Context, name string, rawArgs any, threadID string) (*Outcome, error) {
	ctx = rlog.WithThread(rlog.WithCapability(ctx, name), threadID)
	logger := d.config.logger
	start := d.config.now()

	desc, err := d.registry.Lookup(name)
	if err != nil {
		logger.WarnContext(ctx, "unknown capability requested")
		return nil, err
	}

	res := schema.Validate(desc.InputSchema, rawArgs)
	if !res.OK() {
		logger.WarnContext(ctx, "invalid capability arguments",
			"field", res.Err.Field, "expected", res.Err.Expected, "actual", res.Err.Actual)
		return nil, res.Err
	}
	args := res.Object()

	var out *Outcome
	switch desc.Kind {
	case entities.KindTool:
		out, err = d.runTool(ctx, desc, args, threadID)
	case entities.KindComponent:
		out, err = d.mount(ctx, desc, args, threadID)
	default:
		err = fmt.Errorf("capability %q has unknown kind %q", name, desc.Kind)
	}

	elapsed := d.config.now().Sub(start)
	if err != nil {
		var ose *errors.OutputSchemaError
		if stdErrors.As(err, &ose) {
			logger.ErrorContext(ctx, "tool violated its output schema", "error", err, "duration", elapsed)
		} else {
			logger.WarnContext(ctx, "capability invocation failed", "error", err, "duration", elapsed)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "capability invoked", "kind", desc.Kind.String(), "duration", elapsed)
	return out, nil
}

func (d *Dispatcher) runTool(ctx context.Context, desc registry.Descriptor, args map[string]any, threadID string) (*Outcome, error) {
	value, err := callTool(ctx, desc, args)
	if err != nil {
		return nil, err
	}

	if err := checkOutput(desc, value); err != nil {
		return nil, err
	}

	if current, err := d.threads.Active(); err != nil || current != threadID {
		return nil, fmt.Errorf("%s issued for thread %q: %w", desc.Name, threadID, errors.ErrStaleResult)
	}

	return &Outcome{
		Capability: desc.Name,
		Kind:       entities.KindTool,
		ThreadID:   threadID,
		Output:     value,
	}, nil
}

func callTool(ctx context.Context, desc registry.Descriptor, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{Capability: desc.Name, Value: r}
		}
	}()

	value, err = desc.Tool(ctx, args)
	if err != nil {
		return nil, &errors.InvocationError{Capability: desc.Name, Err: err}
	}
	return value, nil
}

// checkOutput normalizes value to its JSON form and validates it against the
// tool's output schema. The value itself is never coerced.
func checkOutput(desc registry.Descriptor, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &errors.OutputSchemaError{Tool: desc.Name, Err: fmt.Errorf("output is not serializable: %w", err)}
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return &errors.OutputSchemaError{Tool: desc.Name, Err: err}
	}
	if res := schema.Validate(desc.OutputSchema, normalized); !res.OK() {
		return &errors.OutputSchemaError{Tool: desc.Name, Err: res.Err}
	}
	return nil
}

func (d *Dispatcher) mount(ctx context.Context, desc registry.Descriptor, args map[string]any, threadID string) (*Outcome, error) {
	scope := d.store.Scope(threadID)

	comp, err := buildComponent(ctx, desc, args, scope)
	if err != nil {
		return nil, err
	}

	h := &RenderHandle{
		ID:         d.config.newID(),
		Capability: desc.Name,
		ThreadID:   threadID,
		Component:  comp,
		MountedAt:  d.config.now(),
		onClose:    d.forget,
	}
	d.mu.Lock()
	d.mountSeq++
	h.seq = d.mountSeq
	d.handles[h.ID] = h
	d.mu.Unlock()

	return &Outcome{
		Capability: desc.Name,
		Kind:       entities.KindComponent,
		ThreadID:   threadID,
		Handle:     h,
	}, nil
}

func buildComponent(ctx context.Context, desc registry.Descriptor, args map[string]any, scope *state.Scope) (comp registry.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			if comp != nil {
				safeUnmount(comp)
			}
			comp = nil
			err = &errors.PanicError{Capability: desc.Name, Value: r}
		}
	}()

	comp, err = desc.Component(args, scope)
	if err != nil {
		return nil, &errors.InvocationError{Capability: desc.Name, Err: err}
	}
	if err = comp.Mount(ctx); err != nil {
		comp.Unmount()
		return nil, &errors.InvocationError{Capability: desc.Name, Err: err}
	}
	return comp, nil
}

func safeUnmount(comp registry.Component) {
	defer func() { _ = recover() }()
	comp.Unmount()
}

// Handle returns the mounted component with the given handle id.
func (d *Dispatcher) Handle(id string) (*RenderHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.handles[id]
	return h, ok
}

// Handles returns every mounted handle in mount order, oldest first.
func (d *Dispatcher) Handles() []*RenderHandle {
	d.mu.Lock()
	out := make([]*RenderHandle, 0, len(d.handles))
	for _, h := range d.handles {
		out = append(out, h)
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// CloseStale unmounts every component mounted for a thread other than
// activeThread and returns how many were closed.
func (d *Dispatcher) CloseStale(activeThread string) int {
	var stale []*RenderHandle
	d.mu.Lock()
	for _, h := range d.handles {
		if h.ThreadID != activeThread {
			stale = append(stale, h)
		}
	}
	d.mu.Unlock()

	for _, h := range stale {
		h.Close()
	}
	return len(stale)
}

// Close unmounts every component and waits for asynchronous invocations.
func (d *Dispatcher) Close() {
	for _, h := range d.Handles() {
		h.Close()
	}
	d.wg.Wait()
}

func (d *Dispatcher) forget(h *RenderHandle) {
	d.mu.Lock()
	delete(d.handles, h.ID)
	d.mu.Unlock()
}
