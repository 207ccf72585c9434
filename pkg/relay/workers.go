package relay

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gabrielkryss/s-talk/pkg/config"
	"github.com/gabrielkryss/s-talk/pkg/transport"
)

// Echoer prints a locally typed line.
type Echoer interface {
	Echo(text string) error
}

// Displayer prints a line received from the peer.
type Displayer interface {
	Received(text string) error
}

// InputLoop reads console lines from r and queues them for sending, echoing
// each one after it is queued. The Sentinel line, end of input or a read
// error requests shutdown. A final line without newline is still queued.
func (s *Session) InputLoop(r io.Reader, con Echoer) {
	br := bufio.NewReader(r)
	for !s.Shutdown.Requested() {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			if !errors.Is(err, io.EOF) {
				zap.L().Warn("console read failed", zap.Error(err))
			}
			s.Shutdown.Request()
			return
		}
		// Shutdown may have been requested elsewhere while we were parked.
		if s.Shutdown.Requested() {
			return
		}
		text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if text == Sentinel {
			s.Shutdown.Request()
			return
		}
		s.Outbound.Push(Message(text))
		s.Stats.Queued.Add(1)
		if ce := zap.L().Check(zap.DebugLevel, "outbound enqueued"); ce != nil {
			ce.Write(zap.Int("len", len(text)), zap.Int("depth", s.Outbound.Len()))
		}
		if echoErr := con.Echo(text); echoErr != nil {
			zap.L().Debug("echo failed", zap.Error(echoErr))
		}
		if err != nil {
			s.Shutdown.Request()
			return
		}
	}
}

// SendLoop transmits queued messages as single datagrams until shutdown has
// been requested and the outbound queue is empty. Failed sends are dropped.
func (s *Session) SendLoop(out transport.Outbound) {
	for !s.Shutdown.Requested() || s.Outbound.Len() > 0 {
		msg, ok := s.Outbound.PopBlocking(s.Shutdown.Requested)
		if !ok {
			continue
		}
		s.pace(len(msg))
		if err := out.Send([]byte(msg)); err != nil {
			s.Stats.SendErrors.Add(1)
			zap.L().Debug("datagram send failed", zap.Stringer("peer", out.RemoteAddr()), zap.Error(err))
			continue
		}
		s.Stats.Sent.Add(1)
	}
}

func (s *Session) pace(n int) {
	if s.Limiter == nil {
		return
	}
	for {
		ok, wait := s.Limiter.Allow(int64(n))
		if ok {
			return
		}
		time.Sleep(wait)
	}
}

// ReceiveLoop reads datagrams into a buffer of bufSize bytes and queues every
// non-empty one for display. It returns once shutdown is requested and the
// endpoint has been closed; read errors otherwise count as "no data".
// A bufSize <= 0 selects config.DefaultRecvBufferBytes.
func (s *Session) ReceiveLoop(in transport.Inbound, bufSize int) {
	if bufSize <= 0 {
		bufSize = config.DefaultRecvBufferBytes
	}
	buf := make([]byte, bufSize)
	for !s.Shutdown.Requested() {
		n, err := in.Recv(buf)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return
			}
			// A truncating read may report an error together with data.
			if n <= 0 {
				zap.L().Debug("datagram read failed", zap.Error(err))
				continue
			}
		}
		if n <= 0 {
			continue
		}
		if n == len(buf) {
			s.Stats.Truncated.Add(1)
			zap.L().Debug("datagram may be truncated", zap.Int("buffer", len(buf)))
		}
		if !s.Inbound.TryPush(Message(buf[:n])) {
			s.Stats.Dropped.Add(1)
			zap.L().Debug("inbound queue full; datagram dropped", zap.Int("capacity", s.Inbound.Cap()))
			continue
		}
		s.Stats.Received.Add(1)
	}
}

// DisplayLoop prints received messages until shutdown has been requested and
// the inbound queue is empty.
func (s *Session) DisplayLoop(con Displayer) {
	for !s.Shutdown.Requested() || s.Inbound.Len() > 0 {
		msg, ok := s.Inbound.PopBlocking(s.Shutdown.Requested)
		if !ok {
			continue
		}
		s.display(con, msg)
	}
}

// flushInbound prints whatever Receiver queued after Display exited.
func (s *Session) flushInbound(con Displayer) {
	for {
		msg, ok := s.Inbound.TryPop()
		if !ok {
			return
		}
		s.display(con, msg)
	}
}

func (s *Session) display(con Displayer, msg Message) {
	if err := con.Received(string(msg)); err != nil {
		zap.L().Debug("display failed", zap.Error(err))
	}
	s.Stats.Displayed.Add(1)
}
