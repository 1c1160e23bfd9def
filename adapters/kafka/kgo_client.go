package kafka

import (
	"context"
	"crypto/tls"
	"fmt"

	berr "github.com/next-trace/scg-mediator/contract/errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Config describes the franz-go client used by NewWithKgo.
type Config struct {
	Brokers     []string
	TLS         *tls.Config
	Acks        kgo.Acks
	Idempotent  bool
	ClientID    string
	Compression kgo.CompressionCodec
}

func (c Config) options() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(c.Brokers...)}

	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}

	if c.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(c.TLS))
	}

	if c.Idempotent {
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	} else {
		opts = append(opts, kgo.DisableIdempotentWrite())
		if c.Acks != (kgo.Acks{}) {
			opts = append(opts, kgo.RequiredAcks(c.Acks))
		}
	}

	if c.Compression != (kgo.CompressionCodec{}) {
		opts = append(opts, kgo.ProducerBatchCompression(c.Compression))
	}

	return opts
}

type kgoWriter struct{ cl *kgo.Client }

func (w kgoWriter) Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if len(headers) > 0 {
		rec.Headers = make([]kgo.RecordHeader, 0, len(headers))
		for k, v := range headers {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
	}

	return w.cl.ProduceSync(ctx, rec).FirstErr()
}

// NewWithKgo builds a franz-go client based Adapter. The returned cleanup flushes and
// closes the client.
func NewWithKgo(cfg Config) (*Adapter, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("kafka client: brokers required: %w", berr.ErrForwardFailed)
	}

	cl, err := kgo.NewClient(cfg.options()...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka client init: %w: %w", berr.ErrForwardFailed, err)
	}

	cleanup := func() {
		_ = cl.Flush(context.Background()) //nolint:errcheck // best-effort shutdown
		cl.Close()
	}

	return New(kgoWriter{cl: cl}), cleanup, nil
}
