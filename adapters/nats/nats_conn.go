package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// DefaultName is the connection name reported to the server when Config.Name is empty.
const DefaultName = "scg-mediator"

// Config describes the NATS connection used by NewWithNATS.
type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	ReconnectWait time.Duration
	MaxReconnects int
}

func (c Config) options() []nats.Option {
	name := c.Name
	if name == "" {
		name = DefaultName
	}

	opts := []nats.Option{nats.Name(name)}

	if c.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(c.ConnTimeout))
	}

	if c.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(c.ReconnectWait))
	}

	if c.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(c.MaxReconnects))
	}

	return opts
}

// connClient publishes on a live connection and flushes so broker errors surface
// to the forwarding handler.
type connClient struct{ nc *nats.Conn }

func (c connClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data

	for k, v := range headers {
		msg.Header.Set(k, v)
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}

	return c.nc.Flush()
}

// NewWithNATS connects to cfg.URL and returns an Adapter and a cleanup that drains
// the connection.
func NewWithNATS(cfg Config) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("nats connect: url required: %w", berr.ErrForwardFailed)
	}

	nc, err := nats.Connect(cfg.URL, cfg.options()...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect %s: %w: %w", cfg.URL, berr.ErrForwardFailed, err)
	}

	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain() //nolint:errcheck // best-effort shutdown; cannot return error here
		}
	}

	return New(connClient{nc: nc}), cleanup, nil
}
