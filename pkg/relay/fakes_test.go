package relay

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gabrielkryss/s-talk/pkg/transport"
)

type recordingOutbound struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (o *recordingOutbound) Send(b []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("network unreachable")
	}
	o.sent = append(o.sent, string(b))
	return nil
}
func (o *recordingOutbound) RemoteAddr() net.Addr { return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9001} }
func (o *recordingOutbound) Close() error         { return nil }

func (o *recordingOutbound) Sent() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.sent...)
}

// chanInbound hands out queued datagrams and returns ErrClosed once closed.
type chanInbound struct {
	rx        chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newChanInbound() *chanInbound {
	return &chanInbound{rx: make(chan []byte, 64), closed: make(chan struct{})}
}

func (in *chanInbound) Recv(buf []byte) (int, error) {
	select {
	case <-in.closed:
		return 0, transport.ErrClosed
	case pkt := <-in.rx:
		return copy(buf, pkt), nil
	}
}
func (in *chanInbound) LocalAddr() net.Addr { return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000} }
func (in *chanInbound) Close() error {
	in.closeOnce.Do(func() { close(in.closed) })
	return nil
}

type recordingConsole struct {
	mu       sync.Mutex
	echoed   []string
	received []string
}

func (c *recordingConsole) Echo(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.echoed = append(c.echoed, text)
	return nil
}

func (c *recordingConsole) Received(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, text)
	return nil
}

func (c *recordingConsole) Lines() (echoed, received []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.echoed...), append([]string(nil), c.received...)
}

// syncBuffer is a bytes.Buffer safe for one writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitDone(t *testing.T, what string, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
