// Package relay implements a duplex point-to-point text relay.
//
// A Session owns two FIFO queues and a one-shot Shutdown flag shared by four
// goroutines:
//
//	console -> Input -> outbound queue -> Sender  -> datagram -> peer
//	peer    -> datagram -> Receiver -> inbound queue -> Display -> console
//
// Input is the only worker that requests shutdown. Sender and Display keep
// draining their queue after the request and stop once it is empty. Receiver
// stops when the supervisor closes the receive endpoint, which is the only way
// to release a goroutine parked in a blocking read.
package relay
