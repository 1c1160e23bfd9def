package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/next-trace/scg-mediator/adapters/internal/envelope"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
)

// Forwarded is one recorded notification.
type Forwarded struct {
	Subject      string
	Notification cm.Notification
	Options      cm.ForwardOptions
}

// Forwarder is a thread-safe in-memory cm.Forwarder. It records forwarded
// notifications for testing and examples.
type Forwarder struct {
	mu      sync.Mutex
	records []Forwarded
}

var _ cm.Forwarder = (*Forwarder)(nil)

// New creates a new in-memory forwarder.
func New() *Forwarder { return &Forwarder{} }

func (f *Forwarder) Forward(ctx context.Context, n cm.Notification, opts cm.ForwardOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.records = append(f.records, Forwarded{
		Subject:      envelope.Subject(n, opts),
		Notification: n,
		Options:      opts,
	})
	f.mu.Unlock()

	return nil
}

// Records returns a snapshot in forwarding order.
func (f *Forwarder) Records() []Forwarded {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.records)
}
