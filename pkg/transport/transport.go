package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Kind identifies the datagram transport backing a relay session.
type Kind int

const (
	KindUnknown Kind = iota
	KindUDP
	KindMem
)

func (k Kind) String() string {
	switch k {
	case KindUDP:
		return "udp"
	case KindMem:
		return "mem"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "udp":
		return KindUDP, nil
	case "mem":
		return KindMem, nil
	default:
		return KindUnknown, fmt.Errorf("unknown transport kind %q", s)
	}
}

// ErrClosed is returned by Inbound.Recv and Outbound.Send after Close.
// It is net.ErrClosed so callers can match socket and in-process closure alike.
var ErrClosed = net.ErrClosed

// Inbound is a bound receive endpoint. Recv blocks until one datagram is
// available and copies at most len(buf) bytes of it into buf; the rest of an
// oversized datagram is discarded. Exactly one reader goroutine is expected.
type Inbound interface {
	Recv(buf []byte) (int, error)
	LocalAddr() net.Addr
	// Close unblocks a pending Recv, which then returns ErrClosed.
	Close() error
}

// Outbound sends datagrams to one fixed peer address resolved at open time.
type Outbound interface {
	// Send transmits b as exactly one datagram. Delivery is best-effort.
	Send(b []byte) error
	RemoteAddr() net.Addr
	Close() error
}

// Transport opens datagram endpoints of one Kind.
type Transport interface {
	Kind() Kind
	// Listen binds a receive endpoint on address (host:port).
	Listen(ctx context.Context, address string) (Inbound, error)
	// Dial opens a send endpoint targeting address (host:port).
	Dial(ctx context.Context, address string) (Outbound, error)
}
