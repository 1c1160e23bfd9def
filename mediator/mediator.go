package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

// Mediator dispatches requests and notifications to handlers resolved from a registry.
//
// Mediator holds no mutable state and takes no locks; concurrent calls are independent.
// Thread-safety of resolution is the registry's concern.
type Mediator struct {
	resolver     registry.Resolver
	logger       *slog.Logger
	emptyPublish bool
}

var _ cm.Mediator = (*Mediator)(nil)

// Option configures a Mediator instance.
type Option func(*Mediator)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mediator) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEmptyPublish makes Publish succeed as a no-op when a notification has no handlers.
// By default that case fails with ErrHandlerNotFound.
func WithEmptyPublish() Option {
	return func(m *Mediator) { m.emptyPublish = true }
}

// New constructs a Mediator resolving handlers from r (a registry or one of its scopes).
func New(r registry.Resolver, opts ...Option) *Mediator {
	m := &Mediator{
		resolver: r,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(m)
	}

	return m
}

// Send invokes the single handler bound for the request's runtime type and returns its
// result and error unchanged.
func (m *Mediator) Send(ctx context.Context, request cm.Request) (any, error) {
	return m.send(ctx, request, nil)
}

func (m *Mediator) send(ctx context.Context, request cm.Request, want reflect.Type) (any, error) {
	if request == nil {
		return nil, fmt.Errorf("send: %w", berr.ErrNilMessage)
	}

	t := reflect.TypeOf(request)

	c, ok, err := m.route(t, true)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", t.String(), err)
	}

	if !ok || (want != nil && !c.response.AssignableTo(want)) {
		return nil, fmt.Errorf("send %s: %w", t.String(), berr.ErrHandlerNotFound)
	}

	h, err := m.resolver.Resolve(c.handler)
	if err != nil {
		if errors.Is(err, berr.ErrServiceNotBound) {
			return nil, fmt.Errorf("send %s: %w", t.String(), berr.ErrHandlerNotFound)
		}

		return nil, fmt.Errorf("send %s: resolve: %w", t.String(), err)
	}

	m.logger.DebugContext(ctx, "mediator send", "request", t.String(), "handler", fmt.Sprintf("%T", h))

	return c.send(ctx, h, request)
}

// Publish invokes every handler bound for the notification's runtime type, sequentially
// and in registry order. The first handler error is returned unchanged and the remaining
// handlers are skipped. ctx is passed through; Publish does not check it between handlers.
func (m *Mediator) Publish(ctx context.Context, notification cm.Notification) error {
	if notification == nil {
		return fmt.Errorf("publish: %w", berr.ErrNilMessage)
	}

	t := reflect.TypeOf(notification)

	c, ok, err := m.route(t, false)
	if err != nil {
		return fmt.Errorf("publish %s: %w", t.String(), err)
	}

	var handlers []any

	if ok {
		handlers, err = m.resolver.ResolveAll(c.handler)
		if err != nil {
			return fmt.Errorf("publish %s: resolve: %w", t.String(), err)
		}
	}

	if len(handlers) == 0 {
		if m.emptyPublish {
			return nil
		}

		return fmt.Errorf("publish %s: %w", t.String(), berr.ErrHandlerNotFound)
	}

	m.logger.DebugContext(ctx, "mediator publish", "notification", t.String(), "handlers", len(handlers))

	for _, h := range handlers {
		if err := c.notify(ctx, h, notification); err != nil {
			return err
		}
	}

	return nil
}

func (m *Mediator) route(t reflect.Type, request bool) (Contract, bool, error) {
	v, err := m.resolver.Resolve(routesType)
	if err != nil {
		if errors.Is(err, berr.ErrServiceNotBound) {
			return Contract{}, false, nil
		}

		return Contract{}, false, err
	}

	rt, ok := v.(*routes)
	if !ok {
		return Contract{}, false, nil
	}

	c, ok := rt.lookup(t, request)

	return c, ok, nil
}

// Send is a typed helper: it dispatches request and asserts the result to R.
// With a *Mediator the lookup itself is specialized to R, so a request whose declared
// response type is not assignable to R reports ErrHandlerNotFound.
func Send[R any](ctx context.Context, s cm.Sender, request cm.Request) (R, error) {
	var (
		zero R
		v    any
		err  error
	)

	if m, ok := s.(*Mediator); ok {
		v, err = m.send(ctx, request, reflect.TypeFor[R]())
	} else {
		v, err = s.Send(ctx, request)
	}

	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	r, ok := v.(R)
	if !ok {
		return zero, fmt.Errorf("send %T: result %T: %w", request, v, berr.ErrHandlerTypeMismatch)
	}

	return r, nil
}

// Publish is the typed counterpart of Publisher.Publish.
func Publish[N cm.Notification](ctx context.Context, p cm.Publisher, notification N) error {
	return p.Publish(ctx, notification)
}
