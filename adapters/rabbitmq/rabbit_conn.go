package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeKind = "topic"
	maxBackoff   = 30 * time.Second
)

// Config describes the connection used by NewWithAMQPConn.
type Config struct {
	URL         string
	Exchange    string // defaults to DefaultExchange
	ConnTimeout time.Duration
	Logger      *slog.Logger
}

// reconnectingPublisher keeps one channel open, redialing with jittered backoff when
// the connection drops. Publish waits for a channel or ctx.
type reconnectingPublisher struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	ready  chan struct{} // closed while a channel is available
	closed chan struct{}
	once   sync.Once
}

func newReconnectingPublisher(cfg Config) *reconnectingPublisher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rp := &reconnectingPublisher{
		cfg:    cfg,
		logger: logger,
		ready:  make(chan struct{}),
		closed: make(chan struct{}),
	}
	go rp.run()

	return rp
}

func (rp *reconnectingPublisher) Publish(ctx context.Context, m PubMsg) error {
	rp.mu.RLock()
	ch, ready := rp.ch, rp.ready
	rp.mu.RUnlock()

	if ch == nil {
		select {
		case <-ready:
		case <-rp.closed:
			return fmt.Errorf("rabbitmq publisher closed: %w", berr.ErrForwardFailed)
		case <-ctx.Done():
			return ctx.Err()
		}

		rp.mu.RLock()
		ch = rp.ch
		rp.mu.RUnlock()

		if ch == nil {
			return fmt.Errorf("rabbitmq not connected: %w", berr.ErrForwardFailed)
		}
	}

	return ch.PublishWithContext(ctx, m.Exchange, m.RoutingKey, false, false, publishing(m))
}

func (rp *reconnectingPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(rp.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "scg-mediator"},
		Dial:       amqp.DefaultDial(rp.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(rp.cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, err
	}

	return conn, ch, nil
}

func (rp *reconnectingPublisher) run() {
	backoff := time.Second
	// #nosec G404 -- non-crypto RNG is acceptable for backoff jitter
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // backoff jitter only

	for {
		select {
		case <-rp.closed:
			return
		default:
		}

		conn, ch, err := rp.dial()
		if err != nil {
			sleep := min(backoff+time.Duration(rng.Int63n(int64(backoff/2))), maxBackoff)
			rp.logger.Warn("rabbitmq dial failed", "err", err, "retry_in", sleep)

			t := time.NewTimer(sleep)
			select {
			case <-rp.closed:
				t.Stop()
				return
			case <-t.C:
			}

			backoff = min(backoff*2, maxBackoff)

			continue
		}

		backoff = time.Second

		rp.mu.Lock()
		rp.conn, rp.ch = conn, ch
		close(rp.ready)
		rp.mu.Unlock()

		rp.logger.Debug("rabbitmq connected", "exchange", rp.cfg.Exchange)

		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-rp.closed:
			return
		case err := <-notify:
			rp.logger.Warn("rabbitmq connection lost", "err", err)
		}

		rp.mu.Lock()
		rp.conn, rp.ch = nil, nil
		rp.ready = make(chan struct{})
		rp.mu.Unlock()

		_ = ch.Close()
		_ = conn.Close()
	}
}

func (rp *reconnectingPublisher) close() {
	rp.once.Do(func() {
		close(rp.closed)

		rp.mu.Lock()
		defer rp.mu.Unlock()

		if rp.ch != nil {
			_ = rp.ch.Close()
			rp.ch = nil
		}

		if rp.conn != nil {
			_ = rp.conn.Close()
			rp.conn = nil
		}
	})
}

// NewWithAMQPConn dials RabbitMQ in the background with auto-reconnect, declares the
// exchange on every connect, and returns an Adapter and a cleanup.
func NewWithAMQPConn(cfg Config) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("rabbitmq connect: url required: %w", berr.ErrForwardFailed)
	}

	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	pub := newReconnectingPublisher(cfg)

	ad := New(pub)
	ad.Exchange = cfg.Exchange

	return ad, pub.close, nil
}
