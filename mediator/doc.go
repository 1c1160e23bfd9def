/*
Package mediator provides a thin in-process dispatcher for requests and notifications.
It resolves handlers from a registry at call time and never holds handler instances itself.

A request goes to the single handler bound for its type. A notification goes to every
handler bound for its type, one after another in registry order; the first failure stops
delivery and is returned as is.
*/
package mediator
