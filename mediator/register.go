package mediator

import (
	"reflect"

	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

// AddRequestHandler binds a handler constructor for requests of type Q answered with R.
func AddRequestHandler[Q cm.Request, R any](
	reg *registry.Registry,
	lt registry.Lifetime,
	fn func(registry.Resolver) (cm.RequestHandler[Q, R], error),
) error {
	c := RequestOf[Q, R]()

	return c.Bind(reg, c.handler, lt, factoryOf(fn))
}

// AddNotificationHandler binds a handler constructor for notifications of type N.
// Every call adds another handler; they run in the order they were added.
func AddNotificationHandler[N cm.Notification](
	reg *registry.Registry,
	lt registry.Lifetime,
	fn func(registry.Resolver) (cm.NotificationHandler[N], error),
) error {
	c := NotificationOf[N]()

	return c.Bind(reg, c.handler, lt, factoryOf(fn))
}

// AddMediator binds the dispatcher as the implementation of contract/mediator.Mediator.
// Each resolved Mediator resolves handlers from the scope that built it.
func AddMediator(reg *registry.Registry, lt registry.Lifetime, opts ...Option) error {
	return reg.Bind(registry.Binding{
		Service:        reflect.TypeFor[cm.Mediator](),
		Implementation: reflect.TypeFor[*Mediator](),
		Lifetime:       lt,
		Factory:        func(r registry.Resolver) (any, error) { return New(r, opts...), nil },
	})
}

func factoryOf[T any](fn func(registry.Resolver) (T, error)) registry.Factory {
	if fn == nil {
		return nil
	}

	return func(r registry.Resolver) (any, error) { return fn(r) }
}
