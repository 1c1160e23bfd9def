// Package registrar scans registration sources for handler implementations and binds
// them, together with the dispatcher, into a registry.
//
// A Source is a named set of message contracts and components. Sources become visible
// to AllLoaded and ByPrefix selection by being added to an Inventory, typically the
// process default through Provide from an init function:
//
//	func init() {
//		registrar.Provide(registrar.NewSource("billing").
//			Messages(mediator.RequestOf[Charge, Receipt](), mediator.NotificationOf[Charged]()).
//			Add(registrar.Component[*ChargeHandler](), registrar.Component[*AuditHandler]()))
//	}
//
// Registration is not idempotent: registering a source twice binds its handlers twice.
package registrar
