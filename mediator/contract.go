package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

// Contract pairs a message type with the handler interface it is bound under in the
// registry. The typed invoker is captured when the Contract is built, so dispatch never
// calls methods reflectively.
type Contract struct {
	message  reflect.Type
	response reflect.Type
	handler  reflect.Type

	send   func(ctx context.Context, h, req any) (any, error)
	notify func(ctx context.Context, h, n any) error
}

// RequestOf declares that requests of type Q are answered with R.
func RequestOf[Q cm.Request, R any]() Contract {
	return Contract{
		message:  reflect.TypeFor[Q](),
		response: reflect.TypeFor[R](),
		handler:  reflect.TypeFor[cm.RequestHandler[Q, R]](),
		send: func(ctx context.Context, h, req any) (any, error) {
			hh, ok := h.(cm.RequestHandler[Q, R])
			if !ok {
				return nil, fmt.Errorf("send %s: handler %T: %w", reflect.TypeFor[Q]().String(), h, berr.ErrHandlerTypeMismatch)
			}

			q, ok := req.(Q)
			if !ok {
				return nil, fmt.Errorf("send %T: %w", req, berr.ErrHandlerTypeMismatch)
			}

			return hh.Handle(ctx, q)
		},
	}
}

// NotificationOf declares notifications of type N.
func NotificationOf[N cm.Notification]() Contract {
	return Contract{
		message: reflect.TypeFor[N](),
		handler: reflect.TypeFor[cm.NotificationHandler[N]](),
		notify: func(ctx context.Context, h, n any) error {
			hh, ok := h.(cm.NotificationHandler[N])
			if !ok {
				return fmt.Errorf("publish %s: handler %T: %w", reflect.TypeFor[N]().String(), h, berr.ErrHandlerTypeMismatch)
			}

			e, ok := n.(N)
			if !ok {
				return fmt.Errorf("publish %T: %w", n, berr.ErrHandlerTypeMismatch)
			}

			return hh.Handle(ctx, e)
		},
	}
}

// MessageType is the request or notification type.
func (c Contract) MessageType() reflect.Type { return c.message }

// ResponseType is the declared response type; nil for notifications.
func (c Contract) ResponseType() reflect.Type { return c.response }

// HandlerType is the handler interface type the registry binds under.
func (c Contract) HandlerType() reflect.Type { return c.handler }

// IsRequest reports whether c describes a request contract.
func (c Contract) IsRequest() bool { return c.send != nil }

func (c Contract) String() string {
	if c.handler == nil {
		return "<invalid contract>"
	}

	return c.handler.String()
}

// Bind records the route for c and binds impl as a handler for it.
func (c Contract) Bind(reg *registry.Registry, impl reflect.Type, lt registry.Lifetime, f registry.Factory) error {
	if c.handler == nil || f == nil {
		return fmt.Errorf("bind %s: %w", c, berr.ErrInvalidBinding)
	}

	if c.message.Kind() == reflect.Interface {
		return fmt.Errorf("bind %s: message type must be concrete: %w", c, berr.ErrInvalidBinding)
	}

	rt, err := routesOf(reg)
	if err != nil {
		return fmt.Errorf("bind %s: %w", c, err)
	}

	added, err := rt.add(c)
	if err != nil {
		return err
	}

	err = reg.Bind(registry.Binding{
		Service:        c.handler,
		Implementation: impl,
		Lifetime:       lt,
		Factory:        f,
	})
	if err != nil && added {
		rt.remove(c)
	}

	return err
}

var routesType = reflect.TypeFor[*routes]()

// routes is the message-type keyed table shared by every Mediator over one registry.
type routes struct {
	mu            sync.RWMutex
	requests      map[reflect.Type]Contract
	notifications map[reflect.Type]Contract
}

func newRoutes() *routes {
	return &routes{
		requests:      make(map[reflect.Type]Contract),
		notifications: make(map[reflect.Type]Contract),
	}
}

func routesOf(reg *registry.Registry) (*routes, error) {
	v, err := reg.Ensure(routesType, func() any { return newRoutes() })
	if err != nil {
		return nil, err
	}

	rt, ok := v.(*routes)
	if !ok {
		return nil, fmt.Errorf("routes %T: %w", v, berr.ErrInvalidBinding)
	}

	return rt, nil
}

// add records c and reports whether its message type was new to the table.
func (t *routes) add(c Contract) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.table(c.IsRequest())
	if prev, ok := m[c.message]; ok {
		if prev.handler != c.handler {
			return false, fmt.Errorf("bind %s: already declared as %s: %w", c, prev, berr.ErrHandlerTypeMismatch)
		}

		return false, nil
	}

	m[c.message] = c

	return true, nil
}

func (t *routes) remove(c Contract) {
	t.mu.Lock()
	delete(t.table(c.IsRequest()), c.message)
	t.mu.Unlock()
}

func (t *routes) table(request bool) map[reflect.Type]Contract {
	if request {
		return t.requests
	}

	return t.notifications
}

func (t *routes) lookup(msg reflect.Type, request bool) (Contract, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.table(request)[msg]

	return c, ok
}
