package relay

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gabrielkryss/s-talk/pkg/config"
	"github.com/gabrielkryss/s-talk/pkg/transport"
	"github.com/gabrielkryss/s-talk/pkg/transport/mem"
)

func TestParseAddressing(t *testing.T) {
	a, err := ParseAddressing("127.0.0.1", "9000", "9001")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.LocalAddr() != "127.0.0.1:9000" || a.PeerAddr() != "127.0.0.1:9001" {
		t.Fatalf("addresses: %s %s", a.LocalAddr(), a.PeerAddr())
	}
	if v6, _ := ParseAddressing("::1", "1", "2"); v6.PeerAddr() != "[::1]:2" {
		t.Fatalf("ipv6 peer address: %s", v6.PeerAddr())
	}
	if _, err := ParseAddressing("localhost", "1", "2"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	for _, bad := range [][2]string{{"0", "2"}, {"1", "65536"}, {"x", "2"}, {"1", "-3"}} {
		if _, err := ParseAddressing("127.0.0.1", bad[0], bad[1]); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("ports %v: expected ErrInvalidPort, got %v", bad, err)
		}
	}
}

type peer struct {
	stdin  *io.PipeWriter
	stdout *syncBuffer
	done   chan struct{}
	sum    Summary
	err    error
}

func startPeer(ctx context.Context, tr transport.Transport, local, remote uint16) *peer {
	r, w := io.Pipe()
	p := &peer{stdin: w, stdout: &syncBuffer{}, done: make(chan struct{})}
	opts := Options{
		Addressing: Addressing{LocalIP: "127.0.0.1", LocalPort: local, PeerPort: remote},
		Transport:  tr,
		Stdin:      r,
		Stdout:     p.stdout,
		Console:    config.ConsoleConfig{},
	}
	go func() {
		defer close(p.done)
		p.sum, p.err = Run(ctx, opts)
	}()
	return p
}

func (p *peer) say(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
}

func TestRunDuplexOverMem(t *testing.T) {
	tr := mem.New()
	ctx := context.Background()
	a := startPeer(ctx, tr, 9000, 9001)
	b := startPeer(ctx, tr, 9001, 9000)
	// both receive endpoints must exist before the first datagram
	waitFor(t, "listeners", func() bool {
		return tr.Bound("127.0.0.1:9000") && tr.Bound("127.0.0.1:9001")
	})

	a.say(t, "hello")
	waitFor(t, "b receives", func() bool {
		return strings.Contains(b.stdout.String(), "[user-127.0.0.1-9000] Received: hello\n")
	})
	b.say(t, "hi back")
	waitFor(t, "a receives", func() bool {
		return strings.Contains(a.stdout.String(), "[user-127.0.0.1-9001] Received: hi back\n")
	})

	a.say(t, "!")
	waitDone(t, "a shutdown", a.done)
	b.say(t, "!")
	waitDone(t, "b shutdown", b.done)

	if a.err != nil || b.err != nil {
		t.Fatalf("run errors: %v %v", a.err, b.err)
	}
	outA := a.stdout.String()
	if !strings.Contains(outA, "[user-127.0.0.1-9000] Me: hello\n") {
		t.Fatalf("missing echo: %q", outA)
	}
	if !strings.HasSuffix(outA, "Terminated gracefully. Bye!\n") {
		t.Fatalf("missing termination line: %q", outA)
	}
	if a.sum.Stats.Sent != 1 || a.sum.Stats.Received != 1 || a.sum.Stats.Displayed != 1 {
		t.Fatalf("unexpected stats: %+v", a.sum.Stats)
	}
	if a.sum.Local != "127.0.0.1:9000" || a.sum.Peer != "127.0.0.1:9001" || a.sum.Transport != "mem" {
		t.Fatalf("unexpected summary: %+v", a.sum)
	}
}

func TestRunSendsEverythingQueuedBeforeSentinel(t *testing.T) {
	tr := mem.New()
	ctx := context.Background()
	sink, err := tr.Listen(ctx, "127.0.0.1:7001")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer sink.Close()

	o := Options{
		Addressing: Addressing{LocalIP: "127.0.0.1", LocalPort: 7000, PeerPort: 7001},
		Transport:  tr,
		Stdin:      strings.NewReader("1\n2\n3\n!\n"),
		Stdout:     &syncBuffer{},
	}
	sum, err := Run(ctx, o)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Stats.Sent != 3 {
		t.Fatalf("sent=%d", sum.Stats.Sent)
	}
	buf := make([]byte, 16)
	for _, want := range []string{"1", "2", "3"} {
		n, err := sink.Recv(buf)
		if err != nil || string(buf[:n]) != want {
			t.Fatalf("datagram order: got %q err=%v want %q", buf[:n], err, want)
		}
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	defer w.Close()
	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, Options{
			Addressing: Addressing{LocalIP: "127.0.0.1", LocalPort: 7100, PeerPort: 7101},
			Transport:  mem.New(),
			Stdin:      r,
			Stdout:     io.Discard,
		})
		done <- err
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
}

func TestRunBindFailure(t *testing.T) {
	tr := mem.New()
	busy, _ := tr.Listen(context.Background(), "127.0.0.1:7200")
	defer busy.Close()
	_, err := Run(context.Background(), Options{
		Addressing: Addressing{LocalIP: "127.0.0.1", LocalPort: 7200, PeerPort: 7201},
		Transport:  tr,
		Stdin:      strings.NewReader(""),
		Stdout:     io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), "bind failed") {
		t.Fatalf("expected bind failure, got %v", err)
	}
}

type failingDialTransport struct {
	*mem.Transport
}

func (f *failingDialTransport) Dial(context.Context, string) (transport.Outbound, error) {
	return nil, errors.New("no sockets left")
}

func TestRunDialFailureReleasesReceiveEndpoint(t *testing.T) {
	tr := &failingDialTransport{Transport: mem.New()}
	_, err := Run(context.Background(), Options{
		Addressing: Addressing{LocalIP: "127.0.0.1", LocalPort: 7300, PeerPort: 7301},
		Transport:  tr,
		Stdin:      strings.NewReader(""),
		Stdout:     io.Discard,
	})
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if tr.Bound("127.0.0.1:7300") {
		t.Fatalf("receive endpoint leaked after dial failure")
	}
}

func TestRunRequiresTransport(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without transport")
	}
}
