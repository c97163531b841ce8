// Package registry holds the immutable catalog of capabilities an agent may
// invoke.
package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/resq-ai/resq-core/application/schema"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
)

// ToolFunc computes a tool's output from validated arguments.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Component is a mounted UI artifact. It reads and writes shared state only
// through the Scope it was constructed with.
type Component interface {
	// Mount applies the component's initial effects (for example seeding the
	// inventory) and starts observing the store.
	Mount(ctx context.Context) error

	// Unmount stops observing the store. It must be safe to call more than once.
	Unmount()
}

// Viewer is implemented by components that can describe what they would
// render. The returned value is JSON-serializable.
type Viewer interface {
	View() (any, error)
}

// ComponentFactory builds a component from validated arguments.
type ComponentFactory func(args map[string]any, scope *state.Scope) (Component, error)

// Descriptor describes one capability. Exactly one of Tool and Component is
// set, matching Kind.
type Descriptor struct {
	InputSchema  schema.Node
	OutputSchema schema.Node // tools only
	Tool         ToolFunc
	Component    ComponentFactory
	Name         string
	Description  string
	Kind         entities.CapabilityKind
}

// NewTool describes a tool capability.
func NewTool(name, description string, input, output schema.Node, fn ToolFunc) Descriptor {
	return Descriptor{
		Name:         name,
		Kind:         entities.KindTool,
		Description:  description,
		InputSchema:  input,
		OutputSchema: output,
		Tool:         fn,
	}
}

// NewComponent describes a component capability.
func NewComponent(name, description string, input schema.Node, factory ComponentFactory) Descriptor {
	return Descriptor{
		Name:        name,
		Kind:        entities.KindComponent,
		Description: description,
		InputSchema: input,
		Component:   factory,
	}
}

func (d Descriptor) check() error {
	if d.Name == "" {
		return &errors.ConfigError{Field: "name", Err: fmt.Errorf("capability name is empty")}
	}
	if d.InputSchema == nil {
		return &errors.ConfigError{Field: d.Name + ".inputSchema", Err: fmt.Errorf("input schema is required")}
	}
	if d.InputSchema.Kind() != schema.KindObject {
		return &errors.ConfigError{Field: d.Name + ".inputSchema", Err: fmt.Errorf("input schema must be an object, got %s", d.InputSchema.Kind())}
	}
	switch d.Kind {
	case entities.KindTool:
		if d.Tool == nil {
			return &errors.ConfigError{Field: d.Name + ".tool", Err: fmt.Errorf("tool function is required")}
		}
		if d.OutputSchema == nil {
			return &errors.ConfigError{Field: d.Name + ".outputSchema", Err: fmt.Errorf("output schema is required")}
		}
	case entities.KindComponent:
		if d.Component == nil {
			return &errors.ConfigError{Field: d.Name + ".component", Err: fmt.Errorf("component factory is required")}
		}
	default:
		return &errors.ConfigError{Field: d.Name + ".kind", Err: fmt.Errorf("unknown capability kind %q", d.Kind)}
	}
	return nil
}

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	descriptors []Descriptor
}

// Option configures a Registry instance.
type Option func(*registryConfig)

// WithDescriptor appends one descriptor to the registration list.
func WithDescriptor(d Descriptor) Option {
	return func(c *registryConfig) {
		c.descriptors = append(c.descriptors, d)
	}
}

// WithDescriptors appends descriptors to the registration list, in order.
func WithDescriptors(ds ...Descriptor) Option {
	return func(c *registryConfig) {
		c.descriptors = append(c.descriptors, ds...)
	}
}

// Registry maps capability names to descriptors. It is populated once by New
// and never mutated afterwards, so concurrent reads need no locking.
type Registry struct {
	byName map[string]Descriptor
	order  []string
}

// New registers the configured descriptors in list order and returns the
// first registration failure: a *errors.DuplicateNameError for a name
// collision or a *errors.ConfigError for an incomplete descriptor.
func New(opts ...Option) (*Registry, error) {
	var cfg registryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{byName: make(map[string]Descriptor, len(cfg.descriptors))}
	for _, d := range cfg.descriptors {
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(d Descriptor) error {
	if err := d.check(); err != nil {
		return err
	}
	if _, exists := r.byName[d.Name]; exists {
		return &errors.DuplicateNameError{Name: d.Name}
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, &errors.NotFoundError{Name: name}
	}
	return d, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.order)
}

// Info returns the serializable description of the named capability,
// including its input and output JSON Schemas.
func (r *Registry) Info(name string) (entities.CapabilityInfo, error) {
	d, err := r.Lookup(name)
	if err != nil {
		return entities.CapabilityInfo{}, err
	}
	return d.Info()
}

// Catalog returns the description of every capability in registration order.
func (r *Registry) Catalog() ([]entities.CapabilityInfo, error) {
	out := make([]entities.CapabilityInfo, 0, len(r.order))
	for _, name := range r.order {
		info, err := r.byName[name].Info()
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Info renders the descriptor's schemas as JSON Schema documents.
func (d Descriptor) Info() (entities.CapabilityInfo, error) {
	in, err := schema.MarshalJSONSchema(d.InputSchema)
	if err != nil {
		return entities.CapabilityInfo{}, fmt.Errorf("input schema of %s: %w", d.Name, err)
	}
	out, err := schema.MarshalJSONSchema(d.OutputSchema)
	if err != nil {
		return entities.CapabilityInfo{}, fmt.Errorf("output schema of %s: %w", d.Name, err)
	}
	return entities.CapabilityInfo{
		Name:         d.Name,
		Kind:         d.Kind,
		Description:  d.Description,
		InputSchema:  in,
		OutputSchema: out,
	}, nil
}
