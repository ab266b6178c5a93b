// Package dispatch routes decoded gateway commands to the device registries
// and the network click coordinator. Validation is by convention: ids and
// command codes decode to 0 when absent, and 0 is never a valid id or
// command, so a single existence check covers missing and unknown values.
package dispatch

import (
	"log"
	"time"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/device"
	"github.com/labodj/lsh-core/internal/netclick"
	"github.com/labodj/lsh-core/internal/wire"
)

// Responder sends the outbound payloads a command can demand.
type Responder interface {
	SendDetails() error
	SendState() error
}

// Result tells the tick loop what a command changed.
type Result struct {
	// StateChanged triggers a deferred actuator state broadcast.
	StateChanged bool
	// NetworkClickResolved re-arms the coordinator sweep.
	NetworkClickResolved bool
}

// Dispatcher executes gateway commands. It is owned by the tick loop and is
// not safe for concurrent use.
type Dispatcher struct {
	Actuators *device.Actuators
	Buttons   *device.Buttons
	Clicks    *netclick.Coordinator
	Out       Responder

	// OnSystem, when set, receives the device management commands
	// (reboot, factory reset). When nil they are logged and ignored.
	OnSystem func(cmd uint8)
}

// Dispatch executes one decoded message. Malformed or unknown input never
// changes state and never returns an error.
func (d *Dispatcher) Dispatch(m *wire.Message, now time.Time) Result {
	var res Result

	switch m.Command {
	case wire.CmdSetSingle:
		index, ok := d.Actuators.Index(m.ID)
		if !ok {
			break
		}
		on, ok := m.StateBool()
		if !ok {
			break
		}
		res.StateChanged = d.Actuators.SetState(index, on, now)

	case wire.CmdSetState:
		states, ok := m.StateList()
		if !ok || len(states) != d.Actuators.Count() {
			break // wholesale reject, no partial application
		}
		changed := false
		for i, on := range states {
			changed = d.Actuators.SetState(i, on, now) || changed
		}
		res.StateChanged = changed

	case wire.CmdNetworkClickAck, wire.CmdFailoverClick:
		d.networkClickResponse(m, now, &res)

	case wire.CmdFailover:
		res.StateChanged = d.Clicks.SweepAll(now, true)

	case wire.CmdRequestState:
		d.send(d.Out.SendState)

	case wire.CmdRequestDetails:
		d.send(d.Out.SendDetails)

	case wire.CmdBoot:
		d.send(d.Out.SendDetails)
		d.send(d.Out.SendState)

	case wire.CmdPing:
		// Acknowledged by receipt alone; the outbound ping is
		// rate-limited independently.

	case wire.CmdSystemReboot, wire.CmdSystemReset:
		if d.OnSystem != nil {
			d.OnSystem(m.Command)
		} else {
			log.Printf("dispatch: ignoring system command %d", m.Command)
		}

	default:
		log.Printf("dispatch: unknown or missing command %d", m.Command)
	}
	return res
}

// networkClickResponse handles the shared shape of ack and failover-click.
// The button existence check runs before click-type validation, matching
// the absent-means-zero convention for both fields.
func (d *Dispatcher) networkClickResponse(m *wire.Message, now time.Time, res *Result) {
	index, ok := d.Buttons.Index(m.ID)
	if !ok {
		return
	}
	t := wire.ClickTypeOf(m.ClickType)
	if t == click.TypeNone {
		log.Printf("dispatch: invalid click type %d", m.ClickType)
		return
	}

	if m.Command == wire.CmdFailoverClick {
		res.StateChanged = d.Clicks.CheckTimer(index, t, now, true)
		return
	}
	if !d.Clicks.IsExpired(index, t, now) {
		res.StateChanged = d.Clicks.Confirm(index, t)
		res.NetworkClickResolved = res.StateChanged
	}
}

func (d *Dispatcher) send(fn func() error) {
	if err := fn(); err != nil {
		log.Printf("dispatch: send response: %v", err)
	}
}
