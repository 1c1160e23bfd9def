package mediator

import "context"

// Context lets handler packages spell mediator.Context without importing context.
type Context = context.Context

// HeaderPropagator writes the trace state carried by ctx into outgoing forwarder headers.
// It is called concurrently by forwarders.
type HeaderPropagator interface {
	Inject(ctx context.Context, headers map[string]string)
}

// NopHeaderPropagator propagates nothing.
type NopHeaderPropagator struct{}

// Inject leaves headers untouched.
func (NopHeaderPropagator) Inject(context.Context, map[string]string) {}
