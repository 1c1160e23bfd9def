/*
Package rabbitmq forwards notifications to a RabbitMQ topic exchange.
It includes an auto-reconnect publisher and supports optional header propagation
via a mediator.HeaderPropagator.
*/
package rabbitmq
