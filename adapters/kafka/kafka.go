package kafka

import (
	"context"
	"fmt"

	"github.com/next-trace/scg-mediator/adapters/internal/envelope"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
)

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Adapter forwards notifications to Kafka topics through an injected Writer.
// ForwardOptions.Key becomes the record key, so notifications sharing a key keep
// their relative order within a partition.
type Adapter struct {
	Writer Writer
}

var _ cm.Forwarder = (*Adapter)(nil)

// New creates a new Kafka adapter instance with the provided writer.
func New(w Writer) *Adapter { return &Adapter{Writer: w} }

func (a *Adapter) Forward(ctx context.Context, n cm.Notification, opts cm.ForwardOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Writer == nil {
		return fmt.Errorf("kafka forward: no writer: %w", berr.ErrForwardFailed)
	}

	env, err := envelope.New("kafka forward", n, opts)
	if err != nil {
		return err
	}

	var key []byte
	if env.Key != "" {
		key = []byte(env.Key)
	}

	if err := a.Writer.Write(ctx, env.Subject, key, env.Body, env.Headers); err != nil {
		return envelope.Failed(fmt.Sprintf("kafka forward write %q", env.Subject), err)
	}

	return nil
}
