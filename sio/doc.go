// Package sio couples managers to the outside world.
//
// A Firehose pushes change notices to websocket clients, and an
// MQTTPublisher publishes them to an MQTT broker.  Both provide side
// effects for a Manager.  Stdio drives an Arena with JSON lines.
package sio
