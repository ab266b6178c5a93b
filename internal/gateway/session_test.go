package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/link"
	"github.com/labodj/lsh-core/internal/wire"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newSession() (*Session, *link.Fake) {
	fake := link.NewFake()
	return New(wire.JSONCodec{}, fake, 0), fake
}

func TestConnectivityTracking(t *testing.T) {
	s, _ := newSession()

	if s.Connected(t0) {
		t.Error("a fresh session must not be connected")
	}

	s.Feed([]byte("{\"p\":5}\n"))
	if got := s.Poll(t0); len(got) != 1 || got[0].Command != wire.CmdPing {
		t.Fatalf("poll: %+v", got)
	}
	if !s.Connected(t0.Add(time.Second)) {
		t.Error("connected after a valid message")
	}
	if s.Connected(t0.Add(DefaultPingInterval + ConnTimeoutSlack)) {
		t.Error("stale session must report disconnected")
	}
}

func TestPollDrainsEverythingAvailable(t *testing.T) {
	s, _ := newSession()

	s.Feed([]byte("{\"p\":10}\n{\"p\":11}\n{\"p\":15}\n"))
	got := s.Poll(t0)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %+v", got)
	}
	if got := s.Poll(t0.Add(time.Millisecond)); len(got) != 0 {
		t.Errorf("second poll must be empty, got %+v", got)
	}
	// The empty poll must not refresh connectivity.
	if s.SinceReceived(t0.Add(time.Second)) != time.Second {
		t.Error("SinceReceived must track the last non-empty poll")
	}
}

func TestMalformedInboundIsDroppedNotFatal(t *testing.T) {
	s, _ := newSession()

	s.Feed([]byte("not json\n{\"p\":11}\n"))
	got := s.Poll(t0)
	if len(got) != 1 || got[0].Command != wire.CmdRequestState {
		t.Fatalf("poll: %+v", got)
	}
}

func TestPingIsRateLimited(t *testing.T) {
	s, fake := newSession()

	if !s.TrySendPing(t0.Add(DefaultPingInterval + time.Millisecond)) {
		t.Fatal("first ping should go out")
	}
	if string(fake.Written()) != "{\"p\":5}\n" {
		t.Errorf("wrote %q", fake.Written())
	}

	now := t0.Add(DefaultPingInterval + time.Millisecond)
	if s.TrySendPing(now.Add(DefaultPingInterval)) {
		t.Error("ping within the interval must be suppressed")
	}
	if !s.TrySendPing(now.Add(DefaultPingInterval + time.Millisecond)) {
		t.Error("ping after the interval should go out")
	}
}

func TestAnySendResetsThePingTimer(t *testing.T) {
	s, _ := newSession()

	if err := s.SendState([]bool{true}, t0); err != nil {
		t.Fatal(err)
	}
	if s.TrySendPing(t0.Add(DefaultPingInterval)) {
		t.Error("a state send must count as outbound traffic")
	}
}

func TestOutboundPayloads(t *testing.T) {
	s, fake := newSession()

	if err := s.SendBoot(t0); err != nil {
		t.Fatal(err)
	}
	if err := s.SendDetails("hall", []uint8{1, 2}, []uint8{3}, t0); err != nil {
		t.Fatal(err)
	}
	if err := s.SendState([]bool{false, true}, t0); err != nil {
		t.Fatal(err)
	}
	if err := s.SendNetworkClick(click.TypeLong, 3, false, t0); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(string(fake.Written()), "\n"), "\n")
	want := []string{
		`{"p":4}`,
		`{"p":1,"n":"hall","a":[1,2],"b":[3]}`,
		`{"p":2,"s":[0,1]}`,
		`{"p":3,"i":3,"t":1,"c":0}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("wrote %d lines: %q", len(lines), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
}

func TestReaderGoroutineDeliversToPoll(t *testing.T) {
	fake := link.NewFake()
	s := New(wire.JSONCodec{}, fake, 0)
	s.Start()

	fake.Feed([]byte("{\"p\":14,\"t\":1,\"i\":2}\n"))

	deadline := time.Now().Add(time.Second)
	for {
		if got := s.Poll(t0); len(got) == 1 {
			if got[0].Command != wire.CmdNetworkClickAck || got[0].ID != 2 {
				t.Fatalf("poll: %+v", got)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("message never arrived")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
