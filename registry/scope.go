package registry

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Scope is a logical unit of work. Scoped bindings resolve to one instance per Scope.
// Scoped and transient instances implementing io.Closer are closed with the Scope,
// except transients resolved from the registry root, which are left to the caller.
type Scope struct {
	id  uuid.UUID
	reg *Registry

	mu     sync.Mutex
	cells  map[uint64]*cell
	owned  []io.Closer
	closed bool
}

var _ Resolver = (*Scope)(nil)

func newScope(r *Registry) *Scope {
	return &Scope{
		id:    uuid.New(),
		reg:   r,
		cells: make(map[uint64]*cell),
	}
}

// ID identifies the scope in logs.
func (s *Scope) ID() uuid.UUID { return s.id }

// Resolve resolves the most recently added binding for service.
func (s *Scope) Resolve(service reflect.Type) (any, error) {
	return (&resolution{scope: s}).Resolve(service)
}

// ResolveAll resolves every binding for service in insertion order.
func (s *Scope) ResolveAll(service reflect.Type) ([]any, error) {
	return (&resolution{scope: s}).ResolveAll(service)
}

// Close closes owned instances newest first. Further resolution fails with ErrScopeClosed.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	owned := s.owned
	s.owned = nil
	s.cells = nil
	s.mu.Unlock()

	s.reg.logger.Debug("registry scope closed", "scope", s.id.String(), "owned", len(owned))

	return closeAll(owned)
}

func (s *Scope) cell(id uint64) (*cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, berr.ErrScopeClosed
	}

	c, ok := s.cells[id]
	if !ok {
		c = &cell{}
		s.cells[id] = c
	}

	return c, nil
}

// own tracks v for Close. An instance built while the scope was closing is closed at once.
func (s *Scope) own(v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}

	s.mu.Lock()
	if !s.closed {
		s.owned = append(s.owned, c)
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	if err := c.Close(); err != nil {
		s.reg.logger.Debug("registry late close failed", "scope", s.id.String(), "error", err)
	}
}

func (s *Scope) isRoot() bool { return s == s.reg.root }

func (s *Scope) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// resolution carries the chain of bindings being built so factory cycles are reported
// instead of recursing forever. Once its factory returns the resolution is done, and a
// factory result that kept it resolves from its scope with an empty path.
type resolution struct {
	scope *Scope
	path  []uint64
	done  atomic.Bool
}

func (r *resolution) Resolve(service reflect.Type) (any, error) {
	if r.done.Load() {
		return r.scope.Resolve(service)
	}

	b, ok := r.scope.reg.last(service)
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", typeName(service), berr.ErrServiceNotBound)
	}

	return r.instance(b)
}

func (r *resolution) ResolveAll(service reflect.Type) ([]any, error) {
	if r.done.Load() {
		return r.scope.ResolveAll(service)
	}

	bs := r.scope.reg.Bindings(service)
	out := make([]any, 0, len(bs))

	for _, b := range bs {
		v, err := r.instance(b)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (r *resolution) instance(b Binding) (any, error) {
	if r.scope.isClosed() {
		return nil, fmt.Errorf("resolve %s: %w", typeName(b.Service), berr.ErrScopeClosed)
	}

	if slices.Contains(r.path, b.id) {
		return nil, fmt.Errorf("resolve %s: %w", typeName(b.Service), berr.ErrCircularDependency)
	}

	path := append(slices.Clip(r.path), b.id)

	switch b.Lifetime {
	case Singleton:
		reg := r.scope.reg
		// singletons take their dependencies from the root scope
		next := &resolution{scope: reg.root, path: path}

		return reg.singleton(b.id).get(func() (any, error) {
			v, err := next.build(b.Factory)
			if err == nil && !b.external {
				reg.own(v)
			}

			return v, err
		})
	case Scoped:
		c, err := r.scope.cell(b.id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", typeName(b.Service), err)
		}

		next := &resolution{scope: r.scope, path: path}

		return c.get(func() (any, error) {
			v, err := next.build(b.Factory)
			if err == nil {
				r.scope.own(v)
			}

			return v, err
		})
	default:
		v, err := (&resolution{scope: r.scope, path: path}).build(b.Factory)
		if err != nil {
			return nil, err
		}

		if !r.scope.isRoot() {
			r.scope.own(v)
		}

		return v, nil
	}
}

func (r *resolution) build(f Factory) (any, error) {
	defer r.done.Store(true)

	return f(r)
}
