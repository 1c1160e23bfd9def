package rabbitmq

import (
	"context"
	"fmt"
	"maps"

	"github.com/next-trace/scg-mediator/adapters/internal/envelope"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange notifications are published to.
const DefaultExchange = "notifications"

type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Adapter forwards notifications through a Publisher. The routing key is the
// notification subject.
type Adapter struct {
	Publisher  Publisher
	Propagator cm.HeaderPropagator // optional, for context propagation into headers
	Exchange   string
}

var _ cm.Forwarder = (*Adapter)(nil)

func New(p Publisher) *Adapter { return &Adapter{Publisher: p, Exchange: DefaultExchange} }

// NewWithPropagator allows configuring a HeaderPropagator for context propagation.
func NewWithPropagator(p Publisher, hp cm.HeaderPropagator) *Adapter {
	a := New(p)
	a.Propagator = hp

	return a
}

func (a *Adapter) Forward(ctx context.Context, n cm.Notification, opts cm.ForwardOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Publisher == nil {
		return fmt.Errorf("rabbitmq forward: no publisher: %w", berr.ErrForwardFailed)
	}

	env, err := envelope.New("rabbitmq forward", n, opts)
	if err != nil {
		return err
	}

	hdrs := maps.Clone(env.Headers)
	if a.Propagator != nil {
		a.Propagator.Inject(ctx, hdrs)
	}

	msg := PubMsg{
		Exchange:   a.Exchange,
		RoutingKey: env.Subject,
		Body:       env.Body,
		Headers:    hdrs,
	}

	if err := a.Publisher.Publish(ctx, msg); err != nil {
		return envelope.Failed("rabbitmq forward publish "+env.Subject, err)
	}

	return nil
}

func publishing(m PubMsg) amqp.Publishing {
	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Headers:      h,
		ContentType:  "application/json",
		Type:         m.Headers[envelope.HeaderMessageType],
		Body:         m.Body,
	}
}

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	return p.ch.PublishWithContext(ctx, m.Exchange, m.RoutingKey, false, false, publishing(m))
}

// NewWithAMQPChannel forwards on an existing channel. The caller declares the exchange.
func NewWithAMQPChannel(ch *amqp.Channel) *Adapter {
	return New(amqpChannelPublisher{ch: ch})
}
