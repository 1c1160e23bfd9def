package registry

import (
	"fmt"
	"reflect"
)

// Lifetime governs how long a resolved instance is reused.
type Lifetime int

const (
	// Transient builds a new instance on every resolution.
	Transient Lifetime = iota + 1
	// Scoped builds one instance per Scope.
	Scoped
	// Singleton builds one instance per Registry.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// ParseLifetime maps a lifetime name back to its value.
func ParseLifetime(s string) (Lifetime, error) {
	for _, l := range []Lifetime{Transient, Scoped, Singleton} {
		if l.String() == s {
			return l, nil
		}
	}

	return 0, fmt.Errorf("unknown lifetime %q", s)
}

// Valid reports whether l is one of the defined lifetimes.
func (l Lifetime) Valid() bool { return l >= Transient && l <= Singleton }

// Factory builds an instance. The resolver passed in resolves dependencies from the
// same scope that is resolving the instance.
type Factory func(r Resolver) (any, error)

// Binding associates a service type with an implementation and the factory producing it.
type Binding struct {
	Service        reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime
	Factory        Factory

	id       uint64
	external bool // pre-built instance; never closed by the registry
}

// Resolver looks up instances by service type.
type Resolver interface {
	Resolve(service reflect.Type) (any, error)
	ResolveAll(service reflect.Type) ([]any, error)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
