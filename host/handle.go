package host

import (
	"sync"
	"time"

	"github.com/resq-ai/resq-core/host/registry"
)

// RenderHandle identifies a mounted component. The component stays
// subscribed to the shared state store until Close is called.
type RenderHandle struct {
	MountedAt  time.Time
	Component  registry.Component
	ID         string
	Capability string
	ThreadID   string

	// seq orders handles by registration; MountedAt comes from an injectable
	// clock and may repeat.
	seq     uint64
	once    sync.Once
	onClose func(*RenderHandle)
}

// View returns the component's current view model, or nil when the component
// does not implement registry.Viewer.
func (h *RenderHandle) View() (any, error) {
	v, ok := h.Component.(registry.Viewer)
	if !ok {
		return nil, nil
	}
	return v.View()
}

// Close unmounts the component. It is idempotent.
func (h *RenderHandle) Close() {
	h.once.Do(func() {
		h.Component.Unmount()
		if h.onClose != nil {
			h.onClose(h)
		}
	})
}
