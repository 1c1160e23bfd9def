package mediator

import "context"

// Sender dispatches a request to the single handler bound for its type.
type Sender interface {
	Send(ctx context.Context, request Request) (any, error)
}

// Publisher delivers a notification to every handler bound for its type, one at a time.
type Publisher interface {
	Publish(ctx context.Context, notification Notification) error
}

// Mediator is the dispatcher contract resolved from a registry.
//
// Typed helpers remain available via generic functions in the mediator package.
// This interface is intended for consumers that want to depend only on contracts.
type Mediator interface {
	Sender
	Publisher
}
