// Package demo holds the example messages and handlers served by the scg-mediator
// command. Importing it adds its sources to the default registrar inventory.
package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registrar"
	"github.com/next-trace/scg-mediator/registry"
)

// Echo asks for its message back.
type Echo struct {
	Message string `json:"message"`
}

// Pinged announces a ping.
type Pinged struct {
	From string    `json:"from"`
	At   time.Time `json:"at"`
}

// Topic routes forwarded pings.
func (Pinged) Topic() string { return "demo.pinged" }

// Output is where demo handlers print. Bind one with registry.Instance; without it
// handlers print nothing.
type Output struct{ W io.Writer }

func outputOf(r registry.Resolver) io.Writer {
	out, err := registry.Get[*Output](r)
	if err != nil || out.W == nil {
		return io.Discard
	}

	return out.W
}

type EchoHandler struct{}

func (EchoHandler) Handle(ctx context.Context, q Echo) (string, error) { return q.Message, nil }

// PrintPinged prints each ping.
type PrintPinged struct{ out io.Writer }

func (h *PrintPinged) Handle(ctx context.Context, n Pinged) error {
	_, err := fmt.Fprintf(h.out, "print: ping from %s\n", n.From)
	return err
}

// AuditPinged records each ping with its timestamp.
type AuditPinged struct{ out io.Writer }

func (h *AuditPinged) Handle(ctx context.Context, n Pinged) error {
	_, err := fmt.Fprintf(h.out, "audit: ping from %s at %s\n", n.From, n.At.Format(time.RFC3339))
	return err
}

// EchoSource serves Echo.
var EchoSource = registrar.NewSource("demo.echo").
	Messages(mediator.RequestOf[Echo, string]()).
	Add(registrar.Component[EchoHandler]())

// PingSource serves Pinged; PrintPinged runs before AuditPinged.
var PingSource = registrar.NewSource("demo.ping").
	Messages(mediator.NotificationOf[Pinged]()).
	Add(
		registrar.ComponentFunc(func(r registry.Resolver) (*PrintPinged, error) {
			return &PrintPinged{out: outputOf(r)}, nil
		}),
		registrar.ComponentFunc(func(r registry.Resolver) (*AuditPinged, error) {
			return &AuditPinged{out: outputOf(r)}, nil
		}),
	)

func init() {
	registrar.Provide(EchoSource)
	registrar.Provide(PingSource)
}
