package registry

import (
	"fmt"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Add binds a constructor for service type S.
func Add[S any](r *Registry, lt Lifetime, fn func(Resolver) (S, error)) error {
	if fn == nil {
		return fmt.Errorf("bind %s: %w", reflect.TypeFor[S]().String(), berr.ErrInvalidBinding)
	}

	return r.Bind(Binding{
		Service:  reflect.TypeFor[S](),
		Lifetime: lt,
		Factory:  func(res Resolver) (any, error) { return fn(res) },
	})
}

// Get resolves service type T.
func Get[T any](r Resolver) (T, error) {
	var zero T

	v, err := r.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resolve %s: got %T: %w", reflect.TypeFor[T]().String(), v, berr.ErrInvalidBinding)
	}

	return t, nil
}

// GetAll resolves every binding of service type T in insertion order.
func GetAll[T any](r Resolver) ([]T, error) {
	vs, err := r.ResolveAll(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(vs))

	for _, v := range vs {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("resolve %s: got %T: %w", reflect.TypeFor[T]().String(), v, berr.ErrInvalidBinding)
		}

		out = append(out, t)
	}

	return out, nil
}
