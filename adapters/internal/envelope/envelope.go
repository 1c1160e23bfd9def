// Package envelope builds the subject, headers, and JSON body shared by the forwarding adapters.
package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
)

const (
	// SubjectPrefix precedes the type name when a notification has no topic of its own.
	SubjectPrefix = "notifications."

	// HeaderMessageType carries the notification type name.
	HeaderMessageType = "x-message-type"
	// HeaderKey carries ForwardOptions.Key.
	HeaderKey = "key"
)

// Envelope is one notification ready to hand to a broker client.
type Envelope struct {
	Subject string
	Key     string
	Body    []byte
	Headers map[string]string
}

// New encodes n. label prefixes error messages, e.g. "nats forward".
func New(label string, n cm.Notification, opts cm.ForwardOptions) (Envelope, error) {
	if n == nil {
		return Envelope{}, fmt.Errorf("%s: %w", label, berr.ErrNilMessage)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s serialize: %w", label, errors.Join(berr.ErrSerializationFailed, err))
	}

	return Envelope{
		Subject: Subject(n, opts),
		Key:     opts.Key,
		Body:    body,
		Headers: Headers(n, opts),
	}, nil
}

// Subject resolves the destination: the override, then Topic() for Routable
// notifications, then SubjectPrefix plus the type name.
func Subject(n cm.Notification, opts cm.ForwardOptions) string {
	if opts.TopicOverride != "" {
		return opts.TopicOverride
	}

	if r, ok := n.(cm.Routable); ok && r.Topic() != "" {
		return r.Topic()
	}

	return SubjectPrefix + TypeName(n)
}

// Headers copies opts.Headers and adds the message type and key headers.
func Headers(n cm.Notification, opts cm.ForwardOptions) map[string]string {
	h := make(map[string]string, len(opts.Headers)+2)
	maps.Copy(h, opts.Headers)

	h[HeaderMessageType] = TypeName(n)
	if opts.Key != "" {
		h[HeaderKey] = opts.Key
	}

	return h
}

// TypeName is the name of v's type with pointers removed.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" { // unnamed (e.g., map/struct literal)
		name = t.String()
	}

	return name
}

// Failed wraps a client error unless it is a context error, which is returned as is.
func Failed(label string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%s: %w", label, errors.Join(berr.ErrForwardFailed, err))
}
