package relay

import "sync/atomic"

// Stats counts pipeline events. Counters are diagnostic only.
type Stats struct {
	Queued     atomic.Uint64 // lines accepted by Input
	Sent       atomic.Uint64
	SendErrors atomic.Uint64
	Received   atomic.Uint64 // non-empty datagrams queued for display
	Truncated  atomic.Uint64 // datagrams that filled the whole receive buffer
	Dropped    atomic.Uint64 // datagrams discarded because the inbound queue was full
	Displayed  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Queued     uint64 `json:"queued" cbor:"queued"`
	Sent       uint64 `json:"sent" cbor:"sent"`
	SendErrors uint64 `json:"send_errors" cbor:"send_errors"`
	Received   uint64 `json:"received" cbor:"received"`
	Truncated  uint64 `json:"truncated" cbor:"truncated"`
	Dropped    uint64 `json:"dropped" cbor:"dropped"`
	Displayed  uint64 `json:"displayed" cbor:"displayed"`
}

// Snapshot loads every counter into a StatsSnapshot.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queued:     s.Queued.Load(),
		Sent:       s.Sent.Load(),
		SendErrors: s.SendErrors.Load(),
		Received:   s.Received.Load(),
		Truncated:  s.Truncated.Load(),
		Dropped:    s.Dropped.Load(),
		Displayed:  s.Displayed.Load(),
	}
}
