// Package gateway maintains the conversation with the home gateway over a
// link: outbound encodes into a reused scratch buffer, rate-limited pings,
// and connectivity tracking based on inbound message freshness.
package gateway

import (
	"log"
	"time"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/link"
	"github.com/labodj/lsh-core/internal/wire"
)

// Default session timing. The connection timeout rides slightly above the
// ping interval so one lost ping round-trip drops the connection.
const (
	DefaultPingInterval = 10 * time.Second
	ConnTimeoutSlack    = 200 * time.Millisecond
)

// Session owns one link to the gateway. All methods except the internal
// reader goroutine must be called from the tick loop; the inbound channel
// is the only crossing point.
type Session struct {
	codec wire.Codec
	link  link.Link

	pingInterval time.Duration
	connTimeout  time.Duration

	scratch []byte
	framer  wire.Framer
	inbound chan wire.Message

	lastSent     time.Time
	lastReceived time.Time
	seenValid    bool
}

// New creates a session speaking the given codec over the link. A zero
// pingInterval selects the default.
func New(codec wire.Codec, l link.Link, pingInterval time.Duration) *Session {
	if pingInterval == 0 {
		pingInterval = DefaultPingInterval
	}
	return &Session{
		codec:        codec,
		link:         l,
		pingInterval: pingInterval,
		connTimeout:  pingInterval + ConnTimeoutSlack,
		scratch:      make([]byte, 0, wire.DefaultBufferSize),
		framer:       codec.NewFramer(),
		inbound:      make(chan wire.Message, 64),
	}
}

// Start launches the reader goroutine. It runs until the link read fails,
// which is how link closure is observed.
func (s *Session) Start() {
	go s.readLoop()
}

func (s *Session) readLoop() {
	buf := make([]byte, 512)
	for {
		n, err := s.link.Read(buf)
		if n > 0 {
			for _, m := range s.framer.Feed(buf[:n]) {
				select {
				case s.inbound <- m:
				default:
					log.Print("gateway: inbound queue full, dropping message")
				}
			}
		}
		if err != nil {
			log.Printf("gateway: link read: %v", err)
			return
		}
	}
}

// Feed injects already-received bytes, bypassing the reader goroutine.
// Sessions use either Start or Feed, never both.
func (s *Session) Feed(p []byte) {
	for _, m := range s.framer.Feed(p) {
		s.inbound <- m
	}
}

// Poll drains every inbound message currently available. Any message at
// all counts as proof of life for connectivity tracking.
func (s *Session) Poll(now time.Time) []wire.Message {
	var msgs []wire.Message
	for {
		select {
		case m := <-s.inbound:
			msgs = append(msgs, m)
		default:
			if len(msgs) > 0 {
				s.lastReceived = now
				s.seenValid = true
			}
			return msgs
		}
	}
}

// Connected reports whether the gateway is considered reachable: at least
// one valid message ever, and the latest one younger than the timeout.
func (s *Session) Connected(now time.Time) bool {
	return s.seenValid && now.Sub(s.lastReceived) < s.connTimeout
}

// SinceReceived returns the time since the last valid inbound message.
func (s *Session) SinceReceived(now time.Time) time.Duration {
	return now.Sub(s.lastReceived)
}

// Send encodes one message into the reused scratch buffer and writes it.
func (s *Session) Send(m *wire.Message, now time.Time) error {
	out, err := s.codec.Append(s.scratch[:0], m)
	if err != nil {
		return err
	}
	s.scratch = out[:0]
	return s.write(out, now)
}

func (s *Session) write(frame []byte, now time.Time) error {
	if _, err := s.link.Write(frame); err != nil {
		return err
	}
	s.lastSent = now
	return nil
}

// SendBoot writes the precomputed boot frame.
func (s *Session) SendBoot(now time.Time) error {
	return s.write(s.codec.Boot(), now)
}

// TrySendPing writes the precomputed ping frame if nothing has been sent
// for a full ping interval. Reports whether a ping went out.
func (s *Session) TrySendPing(now time.Time) bool {
	if now.Sub(s.lastSent) <= s.pingInterval {
		return false
	}
	if err := s.write(s.codec.Ping(), now); err != nil {
		log.Printf("gateway: send ping: %v", err)
		return false
	}
	return true
}

// SendDetails sends the device-details payload.
func (s *Session) SendDetails(name string, actuatorIDs, buttonIDs []uint8, now time.Time) error {
	return s.Send(wire.Details(name, actuatorIDs, buttonIDs), now)
}

// SendState sends the full actuator-state payload.
func (s *Session) SendState(states []bool, now time.Time) error {
	return s.Send(wire.State(states), now)
}

// SendNetworkClick sends a network click request or confirmation.
func (s *Session) SendNetworkClick(t click.Type, buttonID uint8, confirm bool, now time.Time) error {
	return s.Send(wire.NetworkClick(t, buttonID, confirm), now)
}

// Close closes the underlying link, which stops the reader goroutine.
func (s *Session) Close() error {
	return s.link.Close()
}
