package udp

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestLoopbackDatagram(t *testing.T) {
	ctx := context.Background()
	tr := New()
	in, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer in.Close()
	out, err := tr.Dial(ctx, in.LocalAddr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer out.Close()

	if err := out.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	buf := make([]byte, 2048)
	n, err := in.Recv(buf)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if got := string(buf[:n]); got != "hello" {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestOversizedDatagramTruncated(t *testing.T) {
	ctx := context.Background()
	tr := New()
	in, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer in.Close()
	out, err := tr.Dial(ctx, in.LocalAddr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer out.Close()

	payload := make([]byte, 4000)
	for i := range payload {
		payload[i] = 'x'
	}
	if err := out.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	buf := make([]byte, 2048)
	n, err := in.Recv(buf)
	if err != nil && n == 0 {
		t.Fatalf("recv: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected truncated read of %d bytes, got %d", len(buf), n)
	}
}

func TestCloseUnblocksRecv(t *testing.T) {
	in, err := New().Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	errCh := make(chan error, 1)
	go func() {
		_, err := in.Recv(make([]byte, 16))
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	if err := in.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, net.ErrClosed) {
			t.Fatalf("expected net.ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("recv not unblocked by close")
	}
	// second close is harmless
	if err := in.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestBindConflict(t *testing.T) {
	ctx := context.Background()
	tr := New()
	in, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer in.Close()
	if _, err := tr.Listen(ctx, in.LocalAddr().String()); err == nil {
		t.Fatalf("expected bind failure on busy port")
	}
}

func TestDialBadAddress(t *testing.T) {
	if _, err := New().Dial(context.Background(), "not-an-address"); err == nil {
		t.Fatalf("expected resolve error")
	}
}
