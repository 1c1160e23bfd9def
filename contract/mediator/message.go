package mediator

// Request is a marker interface for requests (a message expecting exactly one typed response).
// The response type is declared once per request type when its contract is bound.
type Request interface{}

// Notification is a marker interface for notifications. Notifications carry no response
// and are delivered to zero or more handlers.
type Notification interface{}
