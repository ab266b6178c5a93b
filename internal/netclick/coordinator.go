// Package netclick tracks in-flight network-mediated clicks: requests that
// must be confirmed by the gateway, fall back to local action on timeout,
// and resolve immediately on forced failover.
package netclick

import (
	"log"
	"sort"
	"time"

	"github.com/labodj/lsh-core/internal/click"
)

// Sender emits the outbound network-click messages.
type Sender interface {
	// SendNetworkClick sends a request (confirm=false) or a final
	// confirmation (confirm=true) for the button at the given index.
	SendNetworkClick(buttonIndex int, t click.Type, confirm bool) error
}

// Actions resolves a button's fallback policy and performs its local click
// action when a request expires or fails over.
type Actions interface {
	Fallback(buttonIndex int, t click.Type) click.Fallback
	Perform(buttonIndex int, t click.Type, now time.Time) bool
}

// Coordinator tracks pending network clicks in two independent per-type
// collections, each keyed by button index and capacity-bounded by the
// number of configured buttons. At most one entry is live per key.
type Coordinator struct {
	timeout time.Duration
	sender  Sender
	actions Actions

	long      map[int]time.Time
	superLong map[int]time.Time
}

// New creates a coordinator with the given request timeout.
func New(timeout time.Duration, capacity int, sender Sender, actions Actions) *Coordinator {
	return &Coordinator{
		timeout:   timeout,
		sender:    sender,
		actions:   actions,
		long:      make(map[int]time.Time, capacity),
		superLong: make(map[int]time.Time, capacity),
	}
}

// pending returns the collection for a click type, nil for invalid types.
func (c *Coordinator) pending(t click.Type) map[int]time.Time {
	switch t {
	case click.TypeLong:
		return c.long
	case click.TypeSuperLong:
		return c.superLong
	default:
		return nil
	}
}

// Request sends the network-click message and arms the fallback timer.
// A repeated request for the same key just refreshes the timestamp.
func (c *Coordinator) Request(buttonIndex int, t click.Type, now time.Time) {
	m := c.pending(t)
	if m == nil {
		return
	}
	if err := c.sender.SendNetworkClick(buttonIndex, t, false); err != nil {
		log.Printf("netclick: send request: %v", err)
	}
	m[buttonIndex] = now
}

// Confirm finalizes an acknowledged request: sends the confirmation
// message, removes the pending entry and reports whether other pending
// entries remain. Callers must check IsExpired first; an expired entry
// must never be confirmed.
func (c *Coordinator) Confirm(buttonIndex int, t click.Type) bool {
	m := c.pending(t)
	if m == nil {
		return c.HasPending()
	}
	if err := c.sender.SendNetworkClick(buttonIndex, t, true); err != nil {
		log.Printf("netclick: send confirm: %v", err)
	}
	delete(m, buttonIndex)
	return c.HasPending()
}

// IsExpired reports whether the pending entry for the key is gone or older
// than the timeout. An entry found expired is removed as a side effect.
func (c *Coordinator) IsExpired(buttonIndex int, t click.Type, now time.Time) bool {
	m := c.pending(t)
	if m == nil {
		return true
	}
	stamp, ok := m[buttonIndex]
	if !ok {
		return true
	}
	if now.Sub(stamp) > c.timeout {
		delete(m, buttonIndex)
		return true
	}
	return false
}

// CheckTimer resolves one pending entry if it has expired or failover is
// forced: performs the local fallback action when the button's policy is
// local fallback, and removes the entry. Reports whether a fallback
// action was performed.
func (c *Coordinator) CheckTimer(buttonIndex int, t click.Type, now time.Time, failover bool) bool {
	m := c.pending(t)
	if m == nil {
		return false
	}
	stamp, ok := m[buttonIndex]
	if !ok {
		return false
	}
	performed := false
	if failover || now.Sub(stamp) > c.timeout {
		if c.actions.Fallback(buttonIndex, t) == click.FallbackLocal {
			performed = c.actions.Perform(buttonIndex, t, now)
		}
		delete(m, buttonIndex)
	}
	return performed
}

// SweepAll applies CheckTimer logic to every pending entry: the long
// collection first, then super-long, ascending button index within each.
// Reports whether any fallback action was performed.
func (c *Coordinator) SweepAll(now time.Time, failover bool) bool {
	performed := c.sweep(c.long, click.TypeLong, now, failover)
	performed = c.sweep(c.superLong, click.TypeSuperLong, now, failover) || performed
	return performed
}

func (c *Coordinator) sweep(m map[int]time.Time, t click.Type, now time.Time, failover bool) bool {
	if len(m) == 0 {
		return false
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	performed := false
	for _, k := range keys {
		stamp := m[k]
		if !failover && now.Sub(stamp) <= c.timeout {
			continue
		}
		if c.actions.Fallback(k, t) == click.FallbackLocal {
			performed = c.actions.Perform(k, t, now) || performed
		}
		delete(m, k)
	}
	return performed
}

// HasPending reports whether either collection is non-empty. The caller
// uses this to stop periodic sweeps once quiescent.
func (c *Coordinator) HasPending() bool {
	return len(c.long) > 0 || len(c.superLong) > 0
}
