package registrar

import (
	"reflect"
	"slices"

	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

// Source is a named set of message contracts and handler components.
type Source struct {
	name       string
	messages   []mediator.Contract
	components []Candidate
}

// NewSource returns an empty source called name.
func NewSource(name string) *Source {
	return &Source{name: name}
}

// Name returns the source name used by ByPrefix selection.
func (s *Source) Name() string { return s.name }

// Messages declares message contracts. Every source of an inventory contributes its
// contracts to the set components are matched against.
func (s *Source) Messages(cs ...mediator.Contract) *Source {
	s.messages = append(s.messages, cs...)
	return s
}

// Add appends components in declaration order.
func (s *Source) Add(cs ...Candidate) *Source {
	s.components = append(s.components, cs...)
	return s
}

// Contracts returns the declared message contracts.
func (s *Source) Contracts() []mediator.Contract { return slices.Clone(s.messages) }

// Components returns the declared components.
func (s *Source) Components() []Candidate { return slices.Clone(s.components) }

// Candidate is a component type plus the factory that builds it.
type Candidate struct {
	typ     reflect.Type
	factory registry.Factory
}

// Type returns the component type.
func (c Candidate) Type() reflect.Type { return c.typ }

// Concrete reports whether the component can be bound; interface types cannot.
func (c Candidate) Concrete() bool {
	return c.typ != nil && c.factory != nil && c.typ.Kind() != reflect.Interface
}

// Component declares T as a handler component built from its zero value. For pointer
// types a fresh value of the element type is allocated per build.
func Component[T any]() Candidate {
	t := reflect.TypeFor[T]()

	return Candidate{
		typ: t,
		factory: func(registry.Resolver) (any, error) {
			if t.Kind() == reflect.Pointer {
				return reflect.New(t.Elem()).Interface(), nil
			}

			var zero T

			return zero, nil
		},
	}
}

// ComponentFunc declares T as a handler component built by fn.
func ComponentFunc[T any](fn func(registry.Resolver) (T, error)) Candidate {
	c := Candidate{typ: reflect.TypeFor[T]()}
	if fn != nil {
		c.factory = func(r registry.Resolver) (any, error) { return fn(r) }
	}

	return c
}
