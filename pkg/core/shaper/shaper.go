// Package shaper limits byte throughput with a token bucket.
package shaper

import (
	"sync"
	"time"
)

// MaxDatagram is the largest payload a single UDP datagram can carry; the
// bucket always holds at least this many tokens so any message can pass.
const MaxDatagram = 65535

// TokenBucket is a simple token bucket for shaping.
type TokenBucket struct {
	mu       sync.Mutex
	capacity int64
	tokens   int64
	rate     int64 // tokens per second
	last     time.Time
	now      func() time.Time
}

// NewTokenBucket returns a full bucket refilled at ratePerSec. capacity is
// raised to MaxDatagram when smaller.
func NewTokenBucket(ratePerSec, capacity int64) *TokenBucket {
	if capacity < MaxDatagram {
		capacity = MaxDatagram
	}
	b := &TokenBucket{capacity: capacity, tokens: capacity, rate: ratePerSec, now: time.Now}
	b.last = b.now()
	return b
}

// Allow tries to consume n tokens; if not enough, returns duration to wait.
// A request larger than the capacity is charged as a full bucket.
func (b *TokenBucket) Allow(n int64) (ok bool, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n = min(n, b.capacity)
	now := b.now()
	// Refill
	dt := now.Sub(b.last)
	if dt > 0 {
		add := (b.rate * dt.Nanoseconds()) / int64(time.Second)
		if add > 0 {
			b.tokens += add
			if b.tokens > b.capacity {
				b.tokens = b.capacity
			}
			b.last = now
		}
	}
	if b.tokens >= n {
		b.tokens -= n
		return true, 0
	}
	need := n - b.tokens
	nanos := (need * int64(time.Second)) / b.rate
	if nanos <= 0 {
		nanos = int64(time.Millisecond)
	}
	return false, time.Duration(nanos)
}
