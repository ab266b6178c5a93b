package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/labodj/lsh-core/internal/config"
	"github.com/labodj/lsh-core/internal/controller"
	"github.com/labodj/lsh-core/internal/gateway"
	"github.com/labodj/lsh-core/internal/gpio"
	"github.com/labodj/lsh-core/internal/link"
	"github.com/labodj/lsh-core/internal/mqtt"
	"github.com/labodj/lsh-core/internal/wire"
)

// Two actuators, a plain short button, a network-mediated long button and
// one indicator spanning both actuators.
const integrationConfig = `
name = "panel-it"
encoding = "json"

[link]
kind = "serial"
device = "/dev/ttyUSB0"

[[actuators]]
id = 10
pin = 17

[[actuators]]
id = 11
pin = 27

[[buttons]]
id = 1
pin = 5
short = true
short_actuators = [10]

[[buttons]]
id = 2
pin = 6
long = true
long_mode = "normal"
long_network = true
long_fallback = "local"
long_actuators = [11]

[[indicators]]
id = 1
pin = 13
mode = "any"
actuators = [10, 11]
`

type rig struct {
	cfg    *config.Config
	regs   *config.Registries
	ctrl   *controller.Controller
	link   *link.Fake
	sess   *gateway.Session
	reader *gpio.FakeReader
	relays *gpio.FakeWriter
	leds   *gpio.FakeWriter
	pub    *mqtt.FakePublisher
}

var rigBase = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newRig(t *testing.T) *rig {
	t.Helper()

	cfg, err := config.Parse([]byte(integrationConfig))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	regs, err := cfg.Build()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}

	relays := gpio.NewFakeWriter()
	regs.Actuators.SetSink(func(index int, on bool) { relays.Set(index, on) })
	leds := gpio.NewFakeWriter()
	regs.Indicators.SetSink(func(index int, on bool) { leds.Set(index, on) })

	codec, err := wire.ForEncoding(cfg.Encoding)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	fl := link.NewFake()
	sess := gateway.New(codec, fl, cfg.Timings.PingInterval())
	reader := gpio.NewFakeReader([][]bool{{false, false}})
	pub := mqtt.NewFakePublisher()

	ctrl := controller.New(controller.Params{
		Name:       cfg.Name,
		Actuators:  regs.Actuators,
		Buttons:    regs.Buttons,
		Indicators: regs.Indicators,
		Session:    sess,
		Inputs:     reader,
		Timings: controller.Timings{
			NetClickTimeout: cfg.Timings.NetClickTimeout(),
			NetClickSweep:   cfg.Timings.NetClickSweep(),
			AutoOffSweep:    cfg.Timings.AutoOffSweep(),
			DelayAfterRx:    cfg.Timings.DelayAfterRx(),
		},
		Publisher: pub,
	})

	if err := sess.SendBoot(rigBase); err != nil {
		t.Fatalf("send boot: %v", err)
	}
	fl.Reset()

	return &rig{
		cfg: cfg, regs: regs, ctrl: ctrl,
		link: fl, sess: sess, reader: reader,
		relays: relays, leds: leds, pub: pub,
	}
}

func TestIntegrationBootHandshake(t *testing.T) {
	r := newRig(t)

	r.sess.Feed([]byte("{\"p\":4}\n"))
	r.ctrl.Tick(rigBase)

	out := string(r.link.Written())
	if !strings.Contains(out, "{\"p\":1,\"n\":\"panel-it\",\"a\":[10,11],\"b\":[1,2]}") {
		t.Errorf("expected details payload, wrote: %q", out)
	}
	if !strings.Contains(out, "{\"p\":2,\"s\":[0,0]}") {
		t.Errorf("expected state payload, wrote: %q", out)
	}
}

func TestIntegrationLocalClickToRelayAndTelemetry(t *testing.T) {
	r := newRig(t)
	r.reader.Frames = [][]bool{
		{true, false},
		{true, false},
		{false, false},
	}

	r.ctrl.Tick(rigBase)
	r.ctrl.Tick(rigBase.Add(25 * time.Millisecond))
	r.ctrl.Tick(rigBase.Add(50 * time.Millisecond))

	if !r.regs.Actuators.Get(0).State() {
		t.Error("expected actuator 10 on")
	}
	if on := r.relays.States[0]; !on {
		t.Error("expected relay 0 driven high")
	}
	// Indicator is any-mode over both actuators.
	if on := r.leds.States[0]; !on {
		t.Error("expected indicator lit")
	}
	if !strings.Contains(string(r.link.Written()), "{\"p\":2,\"s\":[1,0]}") {
		t.Errorf("expected state broadcast, wrote: %q", r.link.Written())
	}
	if len(r.pub.Clicks) != 1 || r.pub.Clicks[0].Button != 1 || r.pub.Clicks[0].Origin != "local" {
		t.Fatalf("unexpected click events: %+v", r.pub.Clicks)
	}
	if len(r.pub.States) != 1 || !r.pub.States[0].States[0] || r.pub.States[0].States[1] {
		t.Fatalf("unexpected state events: %+v", r.pub.States)
	}
}

func TestIntegrationNetworkClickRoundTrip(t *testing.T) {
	r := newRig(t)

	// Gateway traffic makes the session connected.
	r.sess.Feed([]byte("{\"p\":5}\n"))
	r.ctrl.Tick(rigBase)
	r.link.Reset()
	r.pub.Reset()

	r.reader.Frames = [][]bool{
		{false, true},
		{false, true},
		{false, true},
		{false, false},
	}
	r.reader.Reset()
	r.ctrl.Tick(rigBase.Add(10 * time.Millisecond))
	r.ctrl.Tick(rigBase.Add(35 * time.Millisecond))
	r.ctrl.Tick(rigBase.Add(450 * time.Millisecond))

	if !strings.Contains(string(r.link.Written()), "{\"p\":3,\"i\":2,\"t\":1,\"c\":0}") {
		t.Errorf("expected network click request, wrote: %q", r.link.Written())
	}
	if r.regs.Actuators.Get(1).State() {
		t.Error("delegated click must not act locally")
	}

	r.sess.Feed([]byte("{\"p\":14,\"i\":2,\"t\":1}\n"))
	r.ctrl.Tick(rigBase.Add(500 * time.Millisecond))

	if !strings.Contains(string(r.link.Written()), "{\"p\":3,\"i\":2,\"t\":1,\"c\":1}") {
		t.Errorf("expected confirmation, wrote: %q", r.link.Written())
	}
	if r.regs.Actuators.Get(1).State() {
		t.Error("confirmed click must not act locally")
	}
	if len(r.pub.Clicks) != 1 || r.pub.Clicks[0].Origin != "network" {
		t.Fatalf("unexpected click events: %+v", r.pub.Clicks)
	}
}

func TestIntegrationGatewaySetStateDrivesOutputs(t *testing.T) {
	r := newRig(t)

	r.sess.Feed([]byte("{\"p\":12,\"s\":[1,1]}\n"))
	r.ctrl.Tick(rigBase)

	if !r.regs.Actuators.Get(0).State() || !r.regs.Actuators.Get(1).State() {
		t.Fatal("expected both actuators on after set-state")
	}
	if !r.relays.States[0] || !r.relays.States[1] {
		t.Error("expected both relays driven high")
	}

	// The broadcast is deferred until the link has been quiet.
	if strings.Contains(string(r.link.Written()), "\"p\":2") {
		t.Errorf("broadcast should be deferred, wrote: %q", r.link.Written())
	}
	r.ctrl.Tick(rigBase.Add(100 * time.Millisecond))
	if !strings.Contains(string(r.link.Written()), "{\"p\":2,\"s\":[1,1]}") {
		t.Errorf("expected deferred broadcast, wrote: %q", r.link.Written())
	}
}

func TestIntegrationMalformedInboundIgnored(t *testing.T) {
	r := newRig(t)

	r.sess.Feed([]byte("not json at all\n{\"p\":13,\"i\":99,\"s\":1}\n{\"p\":13,\"i\":10,\"s\":1}\n"))
	r.ctrl.Tick(rigBase)

	if !r.regs.Actuators.Get(0).State() {
		t.Error("valid set-single should apply")
	}
	if r.regs.Actuators.Get(1).State() {
		t.Error("unknown actuator id must not change anything")
	}
}
