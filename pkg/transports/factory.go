// Package transports builds concrete datagram transports by kind.
package transports

import (
	"fmt"

	"github.com/gabrielkryss/s-talk/pkg/transport"
	"github.com/gabrielkryss/s-talk/pkg/transport/mem"
	"github.com/gabrielkryss/s-talk/pkg/transport/udp"
)

// NewByKind returns the transport named by kind ("udp" or "mem").
func NewByKind(kind string) (transport.Transport, error) {
	k, err := transport.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case transport.KindUDP:
		return udp.New(), nil
	case transport.KindMem:
		return mem.Default(), nil
	default:
		return nil, fmt.Errorf("transport %s not available", k)
	}
}
