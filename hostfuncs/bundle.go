package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/resq-ai/resq-core/application/lifecycle"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/resq-ai/resq-core/host"
)

// Handler names of the session bundle.
const (
	HandlerInvoke        = "invoke"
	HandlerThreadChanged = "thread_changed"
	HandlerCatalog       = "catalog"
	HandlerSnapshot      = "snapshot"
	HandlerView          = "view"
	HandlerAdjustSupply  = "adjust_supply"
)

// HostFuncBundle is a pre-configured set of related handlers.
type HostFuncBundle interface {
	// Options returns the registry options that register the bundle's handlers.
	Options() []RegistryOption
}

type staticBundle struct {
	options []RegistryOption
}

func (b *staticBundle) Options() []RegistryOption {
	return b.options
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, opt := range bundle.Options() {
			opt(b)
		}
	}
}

// InvokeRequest asks the dispatcher to run a capability.
type InvokeRequest struct {
	// Args is the raw argument object chosen by the agent.
	Args json.RawMessage `json:"args,omitempty"`

	// Capability is the registered capability name.
	Capability string `json:"capability"`
}

// InvokeResponse carries the invocation envelope and, for components, the
// initial view model.
type InvokeResponse struct {
	View   any                       `json:"view,omitempty"`
	Result entities.InvocationResult `json:"result"`
}

// ThreadChangedRequest reports the transport's active thread. A null or
// missing thread_id means no thread has been established yet.
type ThreadChangedRequest struct {
	ThreadID *string `json:"thread_id"`
}

// ThreadChangedResponse reports the thread now active.
type ThreadChangedResponse struct {
	ThreadID      string `json:"thread_id"`
	ClosedHandles int    `json:"closed_handles"`
}

// CatalogRequest takes no parameters.
type CatalogRequest struct{}

// CatalogResponse lists every capability with its JSON Schemas.
type CatalogResponse struct {
	Capabilities []entities.CapabilityInfo `json:"capabilities"`
}

// SnapshotRequest takes no parameters.
type SnapshotRequest struct{}

// ViewRequest asks for the current view model of a mounted component.
type ViewRequest struct {
	HandleID string `json:"handle_id"`
}

// ViewResponse is the current view model of a mounted component.
type ViewResponse struct {
	View       any    `json:"view"`
	HandleID   string `json:"handle_id"`
	Capability string `json:"capability"`
	ThreadID   string `json:"thread_id"`
}

// AdjustSupplyRequest applies a count delta to one supply item of the active thread.
type AdjustSupplyRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// AdjustSupplyResponse reports whether the item existed and the resulting inventory.
type AdjustSupplyResponse struct {
	Supplies []entities.SupplyItem `json:"supplies"`
	Applied  bool                  `json:"applied"`
}

// SessionBundle returns the handlers a chat transport needs to drive one session:
// invoke, thread_changed, catalog, snapshot, view and adjust_supply.
func SessionBundle(d *host.Dispatcher, threads *lifecycle.Manager, store *state.Store) HostFuncBundle {
	s := &sessionHandlers{dispatcher: d, threads: threads, store: store}
	return &staticBundle{
		options: []RegistryOption{
			WithHandler(HandlerInvoke, s.invoke),
			WithHandler(HandlerThreadChanged, s.threadChanged),
			WithHandler(HandlerCatalog, s.catalog),
			WithHandler(HandlerSnapshot, s.snapshot),
			WithHandler(HandlerView, s.view),
			WithHandler(HandlerAdjustSupply, s.adjustSupply),
		},
	}
}

type sessionHandlers struct {
	dispatcher *host.Dispatcher
	threads    *lifecycle.Manager
	store      *state.Store
}

func (s *sessionHandlers) invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
	var args any = map[string]any{}
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return InvokeResponse{}, &errors.SchemaValidationError{Expected: "object", Actual: "malformed JSON"}
		}
	}

	out, err := s.dispatcher.Invoke(ctx, req.Capability, args)
	if err != nil {
		return InvokeResponse{}, err
	}

	resp := InvokeResponse{Result: out.Result()}
	if out.Handle != nil {
		view, err := out.Handle.View()
		if err != nil {
			return InvokeResponse{}, err
		}
		resp.View = view
	}
	return resp, nil
}

func (s *sessionHandlers) threadChanged(ctx context.Context, req ThreadChangedRequest) (ThreadChangedResponse, error) {
	threadID := ""
	if req.ThreadID != nil {
		threadID = *req.ThreadID
	}
	if err := s.threads.OnThreadChanged(ctx, threadID); err != nil {
		return ThreadChangedResponse{}, err
	}

	active, err := s.threads.Active()
	if err != nil {
		return ThreadChangedResponse{}, err
	}
	closed := s.dispatcher.CloseStale(active)
	return ThreadChangedResponse{ThreadID: active, ClosedHandles: closed}, nil
}

func (s *sessionHandlers) catalog(_ context.Context, _ CatalogRequest) (CatalogResponse, error) {
	infos, err := s.dispatcher.Registry().Catalog()
	if err != nil {
		return CatalogResponse{}, err
	}
	return CatalogResponse{Capabilities: infos}, nil
}

func (s *sessionHandlers) snapshot(_ context.Context, _ SnapshotRequest) (entities.Snapshot, error) {
	active, err := s.threads.Active()
	if err != nil {
		return entities.Snapshot{}, err
	}
	return s.store.Scope(active).Snapshot()
}

func (s *sessionHandlers) view(_ context.Context, req ViewRequest) (ViewResponse, error) {
	h, ok := s.dispatcher.Handle(req.HandleID)
	if !ok {
		return ViewResponse{}, fmt.Errorf("%q: %w", req.HandleID, errors.ErrHandleNotFound)
	}
	view, err := h.View()
	if err != nil {
		return ViewResponse{}, err
	}
	return ViewResponse{HandleID: h.ID, Capability: h.Capability, ThreadID: h.ThreadID, View: view}, nil
}

func (s *sessionHandlers) adjustSupply(_ context.Context, req AdjustSupplyRequest) (AdjustSupplyResponse, error) {
	active, err := s.threads.Active()
	if err != nil {
		return AdjustSupplyResponse{}, err
	}
	scope := s.store.Scope(active)
	applied, err := scope.AdjustSupplyCount(req.ID, req.Delta)
	if err != nil {
		return AdjustSupplyResponse{}, err
	}
	supplies, err := scope.Supplies()
	if err != nil {
		return AdjustSupplyResponse{}, err
	}
	return AdjustSupplyResponse{Applied: applied, Supplies: supplies}, nil
}
