package mem

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/gabrielkryss/s-talk/pkg/transport"
)

// backlog is the number of undelivered datagrams an endpoint holds before
// further sends to it are dropped, the way a full socket buffer drops them.
const backlog = 256

// Transport is an in-process datagram exchange keyed by address string.
// Sends to an address nobody listens on are silently discarded.
type Transport struct {
	mu        sync.Mutex
	listeners map[string]*inbound
}

func New() *Transport { return &Transport{listeners: make(map[string]*inbound)} }

var (
	defaultOnce sync.Once
	defaultT    *Transport
)

// Default returns the process-wide exchange, so that two relays opened in the
// same process with kind "mem" can reach each other.
func Default() *Transport {
	defaultOnce.Do(func() { defaultT = New() })
	return defaultT
}

func (t *Transport) Kind() transport.Kind { return transport.KindMem }

func (t *Transport) Listen(_ context.Context, address string) (transport.Inbound, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[address]; ok {
		return nil, errors.New("mem: address already in use: " + address)
	}
	in := &inbound{t: t, addr: memAddr(address), rx: make(chan []byte, backlog), closeCh: make(chan struct{})}
	t.listeners[address] = in
	return in, nil
}

func (t *Transport) Dial(_ context.Context, address string) (transport.Outbound, error) {
	if address == "" {
		return nil, errors.New("mem: empty address")
	}
	return &outbound{t: t, raddr: memAddr(address), closeCh: make(chan struct{})}, nil
}

// Bound reports whether an endpoint is listening on address.
func (t *Transport) Bound(address string) bool { return t.lookup(address) != nil }

func (t *Transport) lookup(address string) *inbound {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listeners[address]
}

func (t *Transport) remove(in *inbound) {
	t.mu.Lock()
	if t.listeners[string(in.addr)] == in {
		delete(t.listeners, string(in.addr))
	}
	t.mu.Unlock()
}

type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }

type inbound struct {
	t         *Transport
	addr      memAddr
	rx        chan []byte
	closeOnce sync.Once
	closeCh   chan struct{}
}

func (in *inbound) LocalAddr() net.Addr { return in.addr }

func (in *inbound) Recv(buf []byte) (int, error) {
	select {
	case <-in.closeCh:
		return 0, transport.ErrClosed
	case pkt := <-in.rx:
		return copy(buf, pkt), nil
	}
}

func (in *inbound) Close() error {
	in.closeOnce.Do(func() {
		close(in.closeCh)
		in.t.remove(in)
	})
	return nil
}

// deliver queues a private copy of b; it reports false when the datagram was dropped.
func (in *inbound) deliver(b []byte) bool {
	pkt := append([]byte(nil), b...)
	select {
	case <-in.closeCh:
		return false
	default:
	}
	select {
	case in.rx <- pkt:
		return true
	default:
		return false
	}
}

type outbound struct {
	t         *Transport
	raddr     memAddr
	closeOnce sync.Once
	closeCh   chan struct{}
}

func (out *outbound) RemoteAddr() net.Addr { return out.raddr }

func (out *outbound) Send(b []byte) error {
	select {
	case <-out.closeCh:
		return transport.ErrClosed
	default:
	}
	if in := out.t.lookup(string(out.raddr)); in != nil {
		in.deliver(b)
	}
	return nil
}

func (out *outbound) Close() error {
	out.closeOnce.Do(func() { close(out.closeCh) })
	return nil
}
