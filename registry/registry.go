package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Registry holds bindings and owns singleton instances. It is safe for concurrent use.
// The Registry itself resolves through a root scope, so Scoped bindings resolved
// directly from it live as long as the Registry.
type Registry struct {
	mu       sync.RWMutex
	bindings map[reflect.Type][]Binding
	nextID   uint64
	sealed   bool

	singletons map[uint64]*cell
	owned      []io.Closer

	root   *Scope
	logger *slog.Logger
}

// Option configures a Registry instance.
type Option func(*Registry)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New constructs an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		bindings:   make(map[reflect.Type][]Binding),
		singletons: make(map[uint64]*cell),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}

	r.root = newScope(r)

	return r
}

// Bind adds a binding. Multiple bindings for the same service are kept in insertion order.
func (r *Registry) Bind(b Binding) error {
	if b.Service == nil || b.Factory == nil || !b.Lifetime.Valid() {
		return fmt.Errorf("bind %s: %w", typeName(b.Service), berr.ErrInvalidBinding)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bindLocked(b)
}

func (r *Registry) bindLocked(b Binding) error {
	if r.sealed {
		return fmt.Errorf("bind %s: %w", typeName(b.Service), berr.ErrRegistrySealed)
	}

	if b.Implementation == nil {
		b.Implementation = b.Service
	}

	r.nextID++
	b.id = r.nextID
	r.bindings[b.Service] = append(r.bindings[b.Service], b)

	r.logger.Debug("registry bound",
		"service", typeName(b.Service),
		"implementation", typeName(b.Implementation),
		"lifetime", b.Lifetime.String(),
	)

	return nil
}

// Instance binds a pre-built value as a singleton. The registry never closes it.
func (r *Registry) Instance(service reflect.Type, v any) error {
	if service == nil || v == nil {
		return fmt.Errorf("bind instance %s: %w", typeName(service), berr.ErrInvalidBinding)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bindLocked(instanceBinding(service, v))
}

// Ensure returns the instance bound for service, binding the value from create first
// when service has no binding yet. It is atomic with respect to other Ensure calls.
func (r *Registry) Ensure(service reflect.Type, create func() any) (any, error) {
	r.mu.Lock()
	if len(r.bindings[service]) == 0 {
		v := create()
		if err := r.bindLocked(instanceBinding(service, v)); err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.mu.Unlock()

		return v, nil
	}
	r.mu.Unlock()

	return r.Resolve(service)
}

func instanceBinding(service reflect.Type, v any) Binding {
	return Binding{
		Service:        service,
		Implementation: reflect.TypeOf(v),
		Lifetime:       Singleton,
		Factory:        func(Resolver) (any, error) { return v, nil },
		external:       true,
	}
}

// Bindings returns a snapshot of the bindings for service in insertion order.
func (r *Registry) Bindings(service reflect.Type) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.bindings[service])
}

// Has reports whether service has at least one binding.
func (r *Registry) Has(service reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings[service]) > 0
}

// Seal freezes the registry; later Bind calls fail with ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sealed
}

// NewScope opens a scope for Scoped bindings. Close it when the unit of work ends.
func (r *Registry) NewScope() *Scope { return newScope(r) }

// Resolve resolves the most recently added binding for service from the root scope.
func (r *Registry) Resolve(service reflect.Type) (any, error) { return r.root.Resolve(service) }

// ResolveAll resolves every binding for service from the root scope, oldest first.
func (r *Registry) ResolveAll(service reflect.Type) ([]any, error) { return r.root.ResolveAll(service) }

// Close closes the root scope and then every singleton implementing io.Closer,
// newest first.
func (r *Registry) Close() error {
	err := r.root.Close()

	r.mu.Lock()
	owned := r.owned
	r.owned = nil
	r.mu.Unlock()

	return errors.Join(err, closeAll(owned))
}

func (r *Registry) last(service reflect.Type) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bs := r.bindings[service]
	if len(bs) == 0 {
		return Binding{}, false
	}

	return bs[len(bs)-1], true
}

func (r *Registry) singleton(id uint64) *cell {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.singletons[id]
	if !ok {
		c = &cell{}
		r.singletons[id] = c
	}

	return c
}

func (r *Registry) own(v any) {
	if c, ok := v.(io.Closer); ok {
		r.mu.Lock()
		r.owned = append(r.owned, c)
		r.mu.Unlock()
	}
}

func closeAll(cs []io.Closer) error {
	var errs []error

	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// cell holds a lazily built shared instance. A failed build is not cached.
type cell struct {
	mu   sync.Mutex
	done bool
	v    any
}

func (c *cell) get(build func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return c.v, nil
	}

	v, err := build()
	if err != nil {
		return nil, err
	}

	c.v, c.done = v, true

	return v, nil
}
