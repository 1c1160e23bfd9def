package nats

import (
	"context"
	"fmt"

	"github.com/next-trace/scg-mediator/adapters/internal/envelope"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
)

// Client is a minimal NATS-like publisher interface decoupled from any concrete library.
// Users can provide a wrapper around their NATS connection to satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error
}

// Adapter forwards notifications to NATS subjects through an injected Client.
type Adapter struct {
	Client Client
}

var _ cm.Forwarder = (*Adapter)(nil)

// New creates a new NATS adapter instance with the provided client.
func New(c Client) *Adapter { return &Adapter{Client: c} }

// Forward publishes n as JSON. The subject is opts.TopicOverride, else n.Topic() for
// routable notifications, else "notifications.<Type>".
func (a *Adapter) Forward(ctx context.Context, n cm.Notification, opts cm.ForwardOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Client == nil {
		return fmt.Errorf("nats forward: no client: %w", berr.ErrForwardFailed)
	}

	env, err := envelope.New("nats forward", n, opts)
	if err != nil {
		return err
	}

	if err := a.Client.Publish(env.Subject, env.Body, env.Headers); err != nil {
		return envelope.Failed("nats forward publish "+env.Subject, err)
	}

	return nil
}
