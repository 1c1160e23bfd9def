package registrar

import (
	"fmt"
	"log/slog"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

type options struct {
	inventory *Inventory
	logger    *slog.Logger
	mediator  []mediator.Option
}

// Option configures a registration.
type Option func(*options)

// WithInventory scans inv instead of the Default inventory.
func WithInventory(inv *Inventory) Option {
	return func(o *options) {
		if inv != nil {
			o.inventory = inv
		}
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMediatorOptions passes opts to every Mediator the registry builds.
func WithMediatorOptions(opts ...mediator.Option) Option {
	return func(o *options) { o.mediator = append(o.mediator, opts...) }
}

// RegisterTransient binds every handler found by sel, and the dispatcher, as transient.
func RegisterTransient(reg *registry.Registry, sel Selector, opts ...Option) (*registry.Registry, error) {
	return Register(reg, registry.Transient, sel, opts...)
}

// RegisterScoped binds every handler found by sel, and the dispatcher, as scoped.
func RegisterScoped(reg *registry.Registry, sel Selector, opts ...Option) (*registry.Registry, error) {
	return Register(reg, registry.Scoped, sel, opts...)
}

// Register scans the sources chosen by sel and binds each component under every
// known handler contract its type implements, then binds the dispatcher as the
// implementation of contract/mediator.Mediator. Known contracts are those declared
// by the inventory sources and the selected sources.
func Register(reg *registry.Registry, lt registry.Lifetime, sel Selector, opts ...Option) (*registry.Registry, error) {
	o := options{inventory: Default, logger: slog.New(slog.DiscardHandler)}
	for _, fn := range opts {
		fn(&o)
	}

	if reg == nil || !lt.Valid() {
		return reg, fmt.Errorf("register %s as %s: %w", sel, lt, berr.ErrInvalidBinding)
	}

	selected, err := sel.resolve(o.inventory)
	if err != nil {
		return reg, err
	}

	contracts := knownContracts(o.inventory.Sources(), selected)

	for _, src := range selected {
		for _, comp := range src.components {
			if !comp.Concrete() {
				o.logger.Debug("registrar skipped", "source", src.name, "component", fmt.Sprint(comp.typ))
				continue
			}

			for _, c := range contracts {
				if !comp.typ.Implements(c.HandlerType()) {
					continue
				}

				if err := c.Bind(reg, comp.typ, lt, comp.factory); err != nil {
					return reg, fmt.Errorf("register %s: %w", src.name, err)
				}

				o.logger.Debug("registrar bound",
					"contract", c.String(),
					"implementation", comp.typ.String(),
					"lifetime", lt.String(),
				)
			}
		}
	}

	if err := mediator.AddMediator(reg, lt, o.mediator...); err != nil {
		return reg, fmt.Errorf("register mediator: %w", err)
	}

	return reg, nil
}

// knownContracts is the first-declared, de-duplicated union of the contracts declared
// by inv and selected.
func knownContracts(inv, selected []*Source) []mediator.Contract {
	seen := make(map[reflect.Type]struct{})

	var out []mediator.Contract

	for _, group := range [][]*Source{inv, selected} {
		for _, src := range group {
			for _, c := range src.messages {
				if c.HandlerType() == nil {
					continue
				}

				if _, ok := seen[c.HandlerType()]; ok {
					continue
				}

				seen[c.HandlerType()] = struct{}{}
				out = append(out, c)
			}
		}
	}

	return out
}
