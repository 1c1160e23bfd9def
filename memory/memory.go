// Package memory builds a ready-to-use in-process mediator in one call.
package memory

import (
	"errors"

	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/registrar"
	"github.com/next-trace/scg-mediator/registry"
)

// New registers the sources chosen by sel as scoped, seals the registry, opens a
// scope and returns the mediator resolved from it along with a cleanup function that
// closes the scope and the registry.
func New(sel registrar.Selector, opts ...registrar.Option) (cm.Mediator, func(), error) { //nolint:ireturn
	reg, err := registrar.RegisterScoped(registry.New(), sel, opts...)
	if err != nil {
		return nil, nil, err
	}

	reg.Seal()

	scope := reg.NewScope()

	m, err := registry.Get[cm.Mediator](scope)
	if err != nil {
		return nil, nil, errors.Join(err, scope.Close(), reg.Close())
	}

	cleanup := func() {
		_ = scope.Close()
		_ = reg.Close()
	}

	return m, cleanup, nil
}
