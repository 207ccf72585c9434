package relay

import (
	"time"

	"github.com/gabrielkryss/s-talk/pkg/core/msgq"
)

// Sentinel is the console line that ends the session.
const Sentinel = "!"

// Message is one opaque chat payload. It is a string so a queued message can
// never be mutated through a shared buffer.
type Message string

// Session aggregates the state shared by the four workers.
type Session struct {
	Outbound *msgq.Queue[Message]
	Inbound  *msgq.Queue[Message]
	Shutdown *Shutdown
	Stats    Stats
	// Limiter, when set, paces outbound datagrams by payload size.
	Limiter Limiter
}

// Limiter admits n bytes or reports how long to wait before retrying.
type Limiter interface {
	Allow(n int64) (ok bool, wait time.Duration)
}

// NewSession builds the two queues and a shutdown flag that wakes both.
// A capacity <= 0 leaves the queue unbounded.
func NewSession(outboundCap, inboundCap int) *Session {
	out := msgq.New[Message](outboundCap)
	in := msgq.New[Message](inboundCap)
	return &Session{
		Outbound: out,
		Inbound:  in,
		Shutdown: NewShutdown(out, in),
	}
}
