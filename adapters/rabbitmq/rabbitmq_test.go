package rabbitmq_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/adapters/rabbitmq"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
)

type fakePublisher struct {
	msgs []rabbitmq.PubMsg
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, m rabbitmq.PubMsg) error {
	f.msgs = append(f.msgs, m)
	return f.err
}

type tracePropagator struct{}

func (tracePropagator) Inject(ctx context.Context, headers map[string]string) {
	headers["traceparent"] = "00-abc"
}

type invoicePaid struct{ ID string }

func TestRabbitMQ_Forward(t *testing.T) {
	fp := &fakePublisher{}
	ad := rabbitmq.NewWithPropagator(fp, tracePropagator{})

	caller := map[string]string{"h": "v"}
	require.NoError(t, ad.Forward(t.Context(), invoicePaid{ID: "1"}, cm.ForwardOptions{Key: "k", Headers: caller}))

	require.Len(t, fp.msgs, 1)
	m := fp.msgs[0]
	assert.Equal(t, rabbitmq.DefaultExchange, m.Exchange)
	assert.Equal(t, "notifications.invoicePaid", m.RoutingKey)
	assert.JSONEq(t, `{"ID":"1"}`, string(m.Body))
	assert.Equal(t, "00-abc", m.Headers["traceparent"])
	assert.Equal(t, "invoicePaid", m.Headers["x-message-type"])
	assert.Equal(t, "k", m.Headers["key"])
	assert.NotContains(t, caller, "traceparent")
}

func TestRabbitMQ_Forward_Errors(t *testing.T) {
	boom := errors.New("channel closed")
	err := rabbitmq.New(&fakePublisher{err: boom}).Forward(t.Context(), invoicePaid{}, cm.ForwardOptions{})
	require.ErrorIs(t, err, berr.ErrForwardFailed)
	require.ErrorIs(t, err, boom)

	err = rabbitmq.New(nil).Forward(t.Context(), invoicePaid{}, cm.ForwardOptions{})
	require.ErrorIs(t, err, berr.ErrForwardFailed)

	err = rabbitmq.New(&fakePublisher{err: context.DeadlineExceeded}).Forward(t.Context(), invoicePaid{}, cm.ForwardOptions{})
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestNewWithAMQPConn_EmptyURL(t *testing.T) {
	_, _, err := rabbitmq.NewWithAMQPConn(rabbitmq.Config{})
	require.ErrorIs(t, err, berr.ErrForwardFailed)
}

func TestRabbitMQ_NopPropagator(t *testing.T) {
	fp := &fakePublisher{}
	ad := rabbitmq.NewWithPropagator(fp, cm.NopHeaderPropagator{})
	ad.Exchange = "events"

	require.NoError(t, ad.Forward(t.Context(), invoicePaid{ID: "2"}, cm.ForwardOptions{TopicOverride: "billing.paid"}))

	require.Len(t, fp.msgs, 1)
	assert.Equal(t, "events", fp.msgs[0].Exchange)
	assert.Equal(t, "billing.paid", fp.msgs[0].RoutingKey)
	assert.Equal(t, map[string]string{"x-message-type": "invoicePaid"}, fp.msgs[0].Headers)
}
