// Package transport defines the datagram endpoints used by the relay and
// provides two implementations:
//
// - udp: real sockets; one bound for receiving, one unbound for sending
// - mem: an in-process datagram exchange keyed by address, used by tests
//
// The relay never frames payloads: one message is one datagram.
package transport
