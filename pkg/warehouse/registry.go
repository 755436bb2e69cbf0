package warehouse

import (
	"fmt"
	"slices"
	"sync"
)

// Descriptor declares what a collector wants to see.
type Descriptor struct {
	// Name identifies the collector in results. Must be unique per registry.
	Name string

	// Interests lists the kinds routed to the collector.
	Interests []Kind

	// IgnoreInside skips tokens while any of these containers is active.
	IgnoreInside ContainerMask

	// MaxItems caps the collector's output; 0 means unlimited. When the
	// finalized Output.Value is a slice longer than the cap, dispatch cuts it
	// to MaxItems and marks the result truncated.
	MaxItems int
}

// Collector receives routed tokens during a single dispatch.
type Collector interface {
	// OnToken is called for each routed token in document order.
	OnToken(ctx *Context, tok *Token) error

	// Finalize is called once after the traversal.
	Finalize(ctx *Context) (Output, error)
}

// Filter is an optional Collector extension consulted before OnToken.
type Filter interface {
	ShouldProcess(ctx *Context, tok *Token) bool
}

// Output is what a collector produces.
type Output struct {
	Value     any
	Truncated bool
	Warnings  []string
}

type entry struct {
	desc      Descriptor
	collector Collector
	filter    Filter
	failed    bool
	result    Result
}

// Registry holds the collectors for one dispatch.
type Registry struct {
	mu       sync.Mutex
	entries  []*entry
	byName   map[string]*entry
	consumed bool
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*entry),
	}
}

// Register adds a collector. Names must be unique and non-empty, and
// Interests must contain at least one valid kind.
func (r *Registry) Register(desc Descriptor, collector Collector) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if collector == nil {
		return fmt.Errorf("%w: %s: nil collector", ErrInvalidDescriptor, desc.Name)
	}
	if len(desc.Interests) == 0 {
		return fmt.Errorf("%w: %s: no interests", ErrInvalidDescriptor, desc.Name)
	}
	for _, k := range desc.Interests {
		if !k.Valid() {
			return fmt.Errorf("%w: %s: invalid kind %d", ErrInvalidDescriptor, desc.Name, k)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed {
		return ErrRegistryConsumed
	}
	if _, ok := r.byName[desc.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCollector, desc.Name)
	}

	desc.Interests = slices.Clone(desc.Interests)
	e := &entry{desc: desc, collector: collector}
	if f, ok := collector.(Filter); ok {
		e.filter = f
	}
	r.entries = append(r.entries, e)
	r.byName[desc.Name] = e
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(desc Descriptor, collector Collector) {
	if err := r.Register(desc, collector); err != nil {
		panic(err)
	}
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Names returns collector names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.desc.Name
	}
	return names
}

// Descriptor returns the descriptor registered under name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	desc := e.desc
	desc.Interests = slices.Clone(desc.Interests)
	return desc, true
}

// claim marks the registry consumed and returns its entries plus a routing
// table indexed by Kind. Each route lists entries in registration order.
func (r *Registry) claim() ([]*entry, [kindCount][]*entry, error) {
	var routes [kindCount][]*entry

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed {
		return nil, routes, ErrRegistryConsumed
	}
	r.consumed = true

	for _, e := range r.entries {
		for _, k := range e.desc.Interests {
			if n := len(routes[k]); n == 0 || routes[k][n-1] != e {
				routes[k] = append(routes[k], e)
			}
		}
	}
	return r.entries, routes, nil
}
