package mediator_test

import (
	"context"
	"sync"

	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/registry"
)

type echo struct{ Message string }

type echoHandler struct{ calls *int }

func (h echoHandler) Handle(ctx context.Context, q echo) (string, error) {
	if h.calls != nil {
		*h.calls++
	}

	return q.Message, nil
}

type unknown struct{}

type pinged struct{}

// journal is a shared, ordered log written by handlers.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]string(nil), j.entries...)
}

type appendHandler struct {
	name string
	log  *journal
	err  error
}

func (h appendHandler) Handle(ctx context.Context, n pinged) error {
	if h.err != nil {
		return h.err
	}

	h.log.add(h.name)

	return nil
}

func use[T any](v T) func(registry.Resolver) (T, error) {
	return func(registry.Resolver) (T, error) { return v, nil }
}

func pingedHandler(h cm.NotificationHandler[pinged]) func(registry.Resolver) (cm.NotificationHandler[pinged], error) {
	return use(h)
}

func echoRequestHandler(h cm.RequestHandler[echo, string]) func(registry.Resolver) (cm.RequestHandler[echo, string], error) {
	return use(h)
}
