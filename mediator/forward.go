package mediator

import cm "github.com/next-trace/scg-mediator/contract/mediator"

// ForwardTo returns a notification handler that hands every N to f with opts.
// Bind it like any other handler; it runs in its turn within Publish.
func ForwardTo[N cm.Notification](f cm.Forwarder, opts cm.ForwardOptions) cm.NotificationHandler[N] {
	return cm.NotificationHandlerFunc[N](func(ctx cm.Context, n N) error {
		return f.Forward(ctx, n, opts)
	})
}
