// Package wire implements the device<->gateway protocol: the shared message
// model, the JSON and CBOR codecs and their framers. Both encodings carry
// the same fields under the same single-letter keys; an absent optional key
// is equivalent to the value 0.
package wire

import (
	"github.com/labodj/lsh-core/internal/click"
)

// Protocol commands, carried under the "p" key.
const (
	// device -> gateway
	CmdDeviceDetails uint8 = 1 // name + actuator and button id lists
	CmdDeviceState   uint8 = 2 // one state per actuator, registration order
	CmdNetworkClick  uint8 = 3 // network click request or confirmation
	CmdBoot          uint8 = 4
	CmdPing          uint8 = 5

	// gateway -> device
	CmdRequestDetails  uint8 = 10
	CmdRequestState    uint8 = 11
	CmdSetState        uint8 = 12 // set all actuator states at once
	CmdSetSingle       uint8 = 13 // set one actuator by id
	CmdNetworkClickAck uint8 = 14
	CmdFailover        uint8 = 15 // resolve every pending network click
	CmdFailoverClick   uint8 = 16 // resolve one pending network click

	CmdSystemReboot uint8 = 254
	CmdSystemReset  uint8 = 255
)

// Click type codes carried under the "t" key.
const (
	WireClickLong      uint8 = 1
	WireClickSuperLong uint8 = 2
)

// ClickTypeOf maps a wire click code to a click type. Unknown codes map to
// TypeNone, which every consumer treats as invalid.
func ClickTypeOf(code uint8) click.Type {
	switch code {
	case WireClickLong:
		return click.TypeLong
	case WireClickSuperLong:
		return click.TypeSuperLong
	default:
		return click.TypeNone
	}
}

// ClickCode maps a click type to its wire code, 0 for untimed types.
func ClickCode(t click.Type) uint8 {
	switch t {
	case click.TypeLong:
		return WireClickLong
	case click.TypeSuperLong:
		return WireClickSuperLong
	default:
		return 0
	}
}

// Message is one protocol message. Every field but Command is optional;
// which fields are meaningful depends on the command. State is left loosely
// typed because it is either a 0/1 scalar (set-single) or a 0/1 list
// (state broadcasts) and the two decoders produce different number types.
// Id lists and state lists are []int rather than []uint8 because both
// encoders treat []uint8 as an opaque byte string.
type Message struct {
	Command   uint8  `json:"p" cbor:"p"`
	Name      string `json:"n,omitempty" cbor:"n,omitempty"`
	Actuators []int  `json:"a,omitempty" cbor:"a,omitempty"`
	Buttons   []int  `json:"b,omitempty" cbor:"b,omitempty"`
	ID        uint8  `json:"i,omitempty" cbor:"i,omitempty"`
	State     any    `json:"s,omitempty" cbor:"s,omitempty"`
	ClickType uint8  `json:"t,omitempty" cbor:"t,omitempty"`
	// Confirm is a pointer so an explicit c:0 survives encoding.
	Confirm *uint8 `json:"c,omitempty" cbor:"c,omitempty"`
}

// Confirmed reports whether the confirm flag is present and set.
func (m *Message) Confirmed() bool {
	return m.Confirm != nil && *m.Confirm == 1
}

// StateBool interprets a scalar State field as on/off. The second return
// is false when State is absent or not a scalar number.
func (m *Message) StateBool() (bool, bool) {
	n, ok := asNumber(m.State)
	if !ok {
		return false, false
	}
	return n == 1, true
}

// StateList interprets a list State field as per-actuator on/off values.
// The second return is false when State is absent or not a list.
func (m *Message) StateList() ([]bool, bool) {
	items, ok := m.State.([]any)
	if !ok {
		return nil, false
	}
	states := make([]bool, len(items))
	for i, it := range items {
		n, ok := asNumber(it)
		if !ok {
			return nil, false
		}
		states[i] = n == 1
	}
	return states, true
}

// asNumber normalizes the numeric types the two decoders produce.
func asNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case float64: // encoding/json
		return int64(n), true
	case uint64: // fxamacker/cbor
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	default:
		return 0, false
	}
}

// Details builds the device-details message.
func Details(name string, actuatorIDs, buttonIDs []uint8) *Message {
	return &Message{
		Command:   CmdDeviceDetails,
		Name:      name,
		Actuators: widen(actuatorIDs),
		Buttons:   widen(buttonIDs),
	}
}

func widen(ids []uint8) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// State builds the full actuator-state message, one 0/1 entry per actuator
// in registration order.
func State(states []bool) *Message {
	s := make([]int, len(states))
	for i, on := range states {
		if on {
			s[i] = 1
		}
	}
	return &Message{Command: CmdDeviceState, State: s}
}

// NetworkClick builds a network-click request (confirm=false) or
// confirmation (confirm=true).
func NetworkClick(t click.Type, buttonID uint8, confirm bool) *Message {
	var c uint8
	if confirm {
		c = 1
	}
	return &Message{
		Command:   CmdNetworkClick,
		ClickType: ClickCode(t),
		ID:        buttonID,
		Confirm:   &c,
	}
}
