package cli

import (
	"errors"
	"io"
	"reflect"

	"github.com/next-trace/scg-mediator/adapters/kafka"
	"github.com/next-trace/scg-mediator/adapters/nats"
	"github.com/next-trace/scg-mediator/adapters/rabbitmq"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/internal/config"
	"github.com/next-trace/scg-mediator/internal/demo"
	"github.com/next-trace/scg-mediator/internal/logging"
	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registrar"
	"github.com/next-trace/scg-mediator/registry"
)

// app carries flag values and the loaded configuration between cobra hooks.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config

	// forwarder connects the configured broker; nil forwarder means forwarding is off.
	forwarder func(config.ForwardConfig) (cm.Forwarder, func(), error)
}

// session is one mediator resolved from a fresh scope.
type session struct {
	mediator cm.Mediator
	close    func()
}

// open builds the registry from configuration, seals it and resolves a mediator
// from a new scope. Handler output goes to out, logs to logOut.
func (a *app) open(out, logOut io.Writer) (*session, error) {
	cfg := a.cfg
	if cfg == nil {
		cfg = config.Default()
	}

	logger, err := logging.New(logOut, cfg.Logging)
	if err != nil {
		return nil, err
	}

	lt, err := registry.ParseLifetime(cfg.Lifetime)
	if err != nil {
		return nil, err
	}

	sel := registrar.AllLoaded()
	if len(cfg.Sources) > 0 {
		sel = registrar.ByPrefix(cfg.Sources...)
	}

	mopts := []mediator.Option{mediator.WithLogger(logger)}
	if cfg.Publish.AllowEmpty {
		mopts = append(mopts, mediator.WithEmptyPublish())
	}

	reg := registry.New(registry.WithLogger(logger))
	if err := reg.Instance(reflect.TypeFor[*demo.Output](), &demo.Output{W: out}); err != nil {
		return nil, err
	}

	if _, err := registrar.Register(reg, lt, sel,
		registrar.WithLogger(logger),
		registrar.WithMediatorOptions(mopts...),
	); err != nil {
		return nil, err
	}

	closers := []func(){func() { _ = reg.Close() }}

	if a.forwarder != nil && cfg.Forward.Broker() != "" {
		fw, cleanup, err := a.forwarder(cfg.Forward)
		if err != nil {
			return nil, errors.Join(err, reg.Close())
		}

		closers = append(closers, cleanup)

		if err := mediator.AddNotificationHandler(reg, registry.Singleton,
			func(registry.Resolver) (cm.NotificationHandler[demo.Pinged], error) {
				return mediator.ForwardTo[demo.Pinged](fw, cm.ForwardOptions{TopicOverride: cfg.Forward.Topic}), nil
			},
		); err != nil {
			closeAll(closers)
			return nil, err
		}

		logger.Info("forwarding notifications", "broker", cfg.Forward.Broker())
	}

	reg.Seal()

	scope := reg.NewScope()
	closers = append(closers, func() { _ = scope.Close() })

	m, err := registry.Get[cm.Mediator](scope)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	logger.Debug("mediator ready", "scope", scope.ID().String(), "lifetime", lt.String(), "selector", sel.String())

	return &session{mediator: m, close: func() { closeAll(closers) }}, nil
}

// closeAll runs closers newest first.
func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// dialForwarder connects to the single broker named by cfg.
func dialForwarder(cfg config.ForwardConfig) (cm.Forwarder, func(), error) {
	switch cfg.Broker() {
	case "nats":
		return nats.NewWithNATS(nats.Config{URL: cfg.NATS.URL})
	case "kafka":
		return kafka.NewWithKgo(kafka.Config{Brokers: cfg.Kafka.Brokers, ClientID: cfg.Kafka.ClientID})
	case "rabbitmq":
		return rabbitmq.NewWithAMQPConn(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
	default:
		return nil, nil, errors.New("no broker configured")
	}
}
