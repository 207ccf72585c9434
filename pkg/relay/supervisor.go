package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gabrielkryss/s-talk/pkg/config"
	"github.com/gabrielkryss/s-talk/pkg/console"
	"github.com/gabrielkryss/s-talk/pkg/core/shaper"
	"github.com/gabrielkryss/s-talk/pkg/transport"
)

var (
	// ErrInvalidAddress reports an IP argument that does not parse.
	ErrInvalidAddress = errors.New("invalid IP address format")
	// ErrInvalidPort reports a port argument outside 1..65535.
	ErrInvalidPort = errors.New("invalid port")
)

// Addressing is the validated form of the three positional arguments.
// Both endpoints share LocalIP: the peer is expected on the same host.
type Addressing struct {
	LocalIP   string
	LocalPort uint16
	PeerPort  uint16
}

// ParseAddressing validates localIP, instancePort and otherInstancePort.
func ParseAddressing(localIP, localPort, peerPort string) (Addressing, error) {
	if net.ParseIP(localIP) == nil {
		return Addressing{}, fmt.Errorf("%w for local IP: %s", ErrInvalidAddress, localIP)
	}
	lp, err := parsePort(localPort)
	if err != nil {
		return Addressing{}, fmt.Errorf("instance port: %w", err)
	}
	pp, err := parsePort(peerPort)
	if err != nil {
		return Addressing{}, fmt.Errorf("other instance port: %w", err)
	}
	return Addressing{LocalIP: localIP, LocalPort: lp, PeerPort: pp}, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return uint16(n), nil
}

// LocalAddr is the host:port the receive endpoint binds.
func (a Addressing) LocalAddr() string {
	return net.JoinHostPort(a.LocalIP, strconv.Itoa(int(a.LocalPort)))
}

// PeerAddr is the host:port outbound datagrams are sent to.
func (a Addressing) PeerAddr() string {
	return net.JoinHostPort(a.LocalIP, strconv.Itoa(int(a.PeerPort)))
}

// Options configures Run.
type Options struct {
	Addressing
	Transport transport.Transport

	RecvBufferBytes  int
	OutboundCapacity int
	InboundCapacity  int
	// SendRateBytes caps outbound throughput in bytes per second; 0 disables.
	SendRateBytes int

	Stdin   io.Reader
	Stdout  io.Writer
	Console config.ConsoleConfig
}

// Summary describes a finished session.
type Summary struct {
	Local     string
	Peer      string
	Transport string
	Started   time.Time
	Stopped   time.Time
	Stats     StatsSnapshot
}

// Run opens both endpoints, runs the four workers and blocks until shutdown
// is requested by the input worker or ctx is cancelled. It then closes the
// receive endpoint, waits for Sender and Display to drain, closes the send
// endpoint and prints the termination line.
//
// Startup failures release every endpoint already opened and are returned
// before any worker starts.
func Run(ctx context.Context, o Options) (Summary, error) {
	if o.Transport == nil {
		return Summary{}, errors.New("relay: no transport")
	}
	if o.RecvBufferBytes <= 0 {
		o.RecvBufferBytes = config.DefaultRecvBufferBytes
	}
	sum := Summary{Local: o.LocalAddr(), Peer: o.PeerAddr(), Transport: o.Transport.Kind().String()}

	in, err := o.Transport.Listen(ctx, sum.Local)
	if err != nil {
		return sum, fmt.Errorf("bind failed: %w", err)
	}
	out, err := o.Transport.Dial(ctx, sum.Peer)
	if err != nil {
		_ = in.Close()
		return sum, fmt.Errorf("send socket: %w", err)
	}

	con := console.New(o.Stdout, console.Options{
		LocalIP:     o.LocalIP,
		LocalPort:   o.LocalPort,
		PeerPort:    o.PeerPort,
		RewriteEcho: o.Console.RewriteEcho,
		Color:       o.Console.Color,
	})
	s := NewSession(o.OutboundCapacity, o.InboundCapacity)
	if o.SendRateBytes > 0 {
		s.Limiter = shaper.NewTokenBucket(int64(o.SendRateBytes), int64(o.SendRateBytes))
	}
	sum.Started = time.Now()
	zap.L().Info("relay started",
		zap.String("transport", sum.Transport),
		zap.Stringer("local", in.LocalAddr()),
		zap.Stringer("peer", out.RemoteAddr()),
	)

	// Input is not joined: after a cancellation it may stay parked on a
	// console read until the process exits.
	go s.InputLoop(o.Stdin, con)

	var drain sync.WaitGroup
	drain.Add(2)
	go func() { defer drain.Done(); s.SendLoop(out) }()
	go func() { defer drain.Done(); s.DisplayLoop(con) }()
	recvDone := make(chan struct{})
	go func() { defer close(recvDone); s.ReceiveLoop(in, o.RecvBufferBytes) }()

	select {
	case <-s.Shutdown.Done():
	case <-ctx.Done():
		zap.L().Info("relay interrupted", zap.Error(ctx.Err()))
		s.Shutdown.Request()
	}

	// Closing the receive endpoint is what releases a parked Recv.
	_ = in.Close()
	<-recvDone
	drain.Wait()
	_ = out.Close()
	s.flushInbound(con)

	sum.Stopped = time.Now()
	sum.Stats = s.Stats.Snapshot()
	zap.L().Info("relay stopped",
		zap.Duration("uptime", sum.Stopped.Sub(sum.Started)),
		zap.Uint64("sent", sum.Stats.Sent),
		zap.Uint64("received", sum.Stats.Received),
		zap.Uint64("send_errors", sum.Stats.SendErrors),
		zap.Uint64("dropped", sum.Stats.Dropped),
	)
	_ = con.Println("Terminated gracefully. Bye!")
	return sum, nil
}
