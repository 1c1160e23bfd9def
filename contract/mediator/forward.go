package mediator

import "context"

// Forwarder hands a notification to an external broker. Forwarders are used by
// forwarding notification handlers; the mediator itself never leaves the process.
type Forwarder interface {
	Forward(ctx context.Context, n Notification, opts ForwardOptions) error
}

// ForwardOptions controls how a forwarded notification is addressed.
type ForwardOptions struct {
	TopicOverride string
	Key           string
	Headers       map[string]string
}

// Routable lets a notification choose its own broker topic/subject.
type Routable interface{ Topic() string }
