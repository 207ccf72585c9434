package relay

import (
	"sync"
	"sync/atomic"
)

// Waker is implemented by queues that must release blocked goroutines when
// shutdown is requested.
type Waker interface {
	Wake()
}

// Shutdown is a write-once flag. The false->true transition wakes every
// registered Waker once and closes Done.
type Shutdown struct {
	requested atomic.Bool
	once      sync.Once
	done      chan struct{}
	wakers    []Waker
}

// NewShutdown returns an unset flag that wakes ws on transition.
func NewShutdown(ws ...Waker) *Shutdown {
	return &Shutdown{done: make(chan struct{}), wakers: ws}
}

// Request sets the flag. Only the first call has an effect; it reports
// whether this call performed the transition.
func (s *Shutdown) Request() bool {
	first := false
	s.once.Do(func() {
		// The flag is stored before any broadcast so a woken consumer
		// re-evaluating its predicate always observes it.
		s.requested.Store(true)
		for _, w := range s.wakers {
			w.Wake()
		}
		close(s.done)
		first = true
	})
	return first
}

// Requested reports whether shutdown has been requested.
func (s *Shutdown) Requested() bool { return s.requested.Load() }

// Done is closed once shutdown has been requested and all wakers notified.
func (s *Shutdown) Done() <-chan struct{} { return s.done }
