/*
Package registry is a small dependency-injection container: it maps service types to
bindings, builds instances through factories and owns their lifetimes.

Bindings for a service are enumerated in insertion order. The order is stable and is part
of the package contract: Resolve returns the most recently added binding, ResolveAll
returns every binding oldest first.
*/
package registry
