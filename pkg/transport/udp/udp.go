package udp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/gabrielkryss/s-talk/pkg/transport"
)

// UDPTransport carries each payload as one raw datagram. Listen and Dial use
// separate sockets: the receive socket is bound to the requested address, the
// send socket is bound to an ephemeral port and never connected.
type UDPTransport struct{}

func New() *UDPTransport { return &UDPTransport{} }

func (t *UDPTransport) Kind() transport.Kind { return transport.KindUDP }

func (t *UDPTransport) Listen(ctx context.Context, address string) (transport.Inbound, error) {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("udp bind %s: %w", address, err)
	}
	return &inbound{conn: pc.(*net.UDPConn)}, nil
}

func (t *UDPTransport) Dial(ctx context.Context, address string) (transport.Outbound, error) {
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("udp resolve %s: %w", address, err)
	}
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("udp send socket: %w", err)
	}
	return &outbound{conn: pc.(*net.UDPConn), raddr: raddr}, nil
}

// ---- receive side ----

type inbound struct {
	conn      *net.UDPConn
	closeOnce sync.Once
	closeErr  error
}

func (in *inbound) LocalAddr() net.Addr { return in.conn.LocalAddr() }

// Recv reads one datagram. Bytes beyond len(buf) are discarded by the kernel.
func (in *inbound) Recv(buf []byte) (int, error) {
	n, _, err := in.conn.ReadFromUDP(buf)
	return n, err
}

func (in *inbound) Close() error {
	in.closeOnce.Do(func() { in.closeErr = in.conn.Close() })
	return in.closeErr
}

// ---- send side ----

type outbound struct {
	conn      *net.UDPConn
	raddr     *net.UDPAddr
	closeOnce sync.Once
	closeErr  error
}

func (out *outbound) RemoteAddr() net.Addr { return out.raddr }

func (out *outbound) Send(b []byte) error {
	_, err := out.conn.WriteToUDP(b, out.raddr)
	return err
}

func (out *outbound) Close() error {
	out.closeOnce.Do(func() { out.closeErr = out.conn.Close() })
	return out.closeErr
}
