// Package controller owns the tick loop that ties the panel together:
// button sampling, click classification, gateway command dispatch, the
// rate-limited sweeps and the deferred state broadcast. Everything runs on
// one goroutine; time is sampled once per tick and the cached value flows
// to every component invoked in that tick.
package controller

import (
	"log"
	"time"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/device"
	"github.com/labodj/lsh-core/internal/dispatch"
	"github.com/labodj/lsh-core/internal/gateway"
	"github.com/labodj/lsh-core/internal/gpio"
	"github.com/labodj/lsh-core/internal/mqtt"
	"github.com/labodj/lsh-core/internal/netclick"
	"github.com/labodj/lsh-core/internal/status"
)

// Default sweep and gating intervals, matching the firmware constants.
const (
	DefaultNetClickTimeout = 1000 * time.Millisecond
	DefaultNetClickSweep   = 50 * time.Millisecond
	DefaultAutoOffSweep    = 1000 * time.Millisecond
	DefaultDelayAfterRx    = 50 * time.Millisecond
)

// Timings carries the intervals the tick loop needs. Zero values select
// the defaults.
type Timings struct {
	NetClickTimeout time.Duration
	NetClickSweep   time.Duration
	AutoOffSweep    time.Duration
	DelayAfterRx    time.Duration
}

func (t Timings) withDefaults() Timings {
	if t.NetClickTimeout == 0 {
		t.NetClickTimeout = DefaultNetClickTimeout
	}
	if t.NetClickSweep == 0 {
		t.NetClickSweep = DefaultNetClickSweep
	}
	if t.AutoOffSweep == 0 {
		t.AutoOffSweep = DefaultAutoOffSweep
	}
	if t.DelayAfterRx == 0 {
		t.DelayAfterRx = DefaultDelayAfterRx
	}
	return t
}

// Params collects the collaborators a Controller needs. Publisher and
// Tracker are optional; everything else is required.
type Params struct {
	Name       string
	Actuators  *device.Actuators
	Buttons    *device.Buttons
	Indicators *device.Indicators
	Session    *gateway.Session
	Inputs     gpio.Reader
	Timings    Timings
	Publisher  mqtt.Publisher
	Tracker    *status.Tracker

	// OnSystem receives gateway device-management commands.
	OnSystem func(cmd uint8)
}

// Controller drives one tick of panel logic at a time. It owns the network
// click coordinator and the command dispatcher, and is itself the sender,
// fallback executor and responder they call back into. Not safe for
// concurrent use; Tick must be called from a single goroutine.
type Controller struct {
	name    string
	acts    *device.Actuators
	btns    *device.Buttons
	inds    *device.Indicators
	session *gateway.Session
	inputs  gpio.Reader
	timings Timings
	pub     mqtt.Publisher
	tracker *status.Tracker

	clicks     *netclick.Coordinator
	dispatcher *dispatch.Dispatcher

	// Scratch buffers reused across ticks.
	samples    []bool
	states     []bool
	trackerBuf []status.ActuatorState

	now          time.Time // cached tick time
	lastNetSweep time.Time
	lastAutoOff  time.Time

	// sweepArmed keeps the periodic network click sweep running only
	// while entries may be pending.
	sweepArmed bool

	// stateDirty defers the actuator state broadcast until the link has
	// been quiet long enough.
	stateDirty bool

	gatewayUp bool
	counts    status.ClickCounts
}

// New wires a controller from its collaborators.
func New(p Params) *Controller {
	c := &Controller{
		name:    p.Name,
		acts:    p.Actuators,
		btns:    p.Buttons,
		inds:    p.Indicators,
		session: p.Session,
		inputs:  p.Inputs,
		timings: p.Timings.withDefaults(),
		pub:     p.Publisher,
		tracker: p.Tracker,
		samples: make([]bool, p.Buttons.Count()),
		states:  make([]bool, 0, p.Actuators.Count()),
	}
	c.clicks = netclick.New(c.timings.NetClickTimeout, p.Buttons.Count(), c, c)
	c.dispatcher = &dispatch.Dispatcher{
		Actuators: p.Actuators,
		Buttons:   p.Buttons,
		Clicks:    c.clicks,
		Out:       c,
		OnSystem:  p.OnSystem,
	}
	return c
}

// Tick runs one full evaluation with the given time. All duration
// comparisons inside the tick use this value.
func (c *Controller) Tick(now time.Time) {
	c.now = now

	c.sampleButtons(now)
	c.drainInbound(now)
	c.sweepNetworkClicks(now)
	c.sweepAutoOff(now)
	c.broadcastState(now)
	c.inds.Refresh(c.acts)
	c.session.TrySendPing(now)
	c.observe(now)
}

func (c *Controller) sampleButtons(now time.Time) {
	if err := c.inputs.ReadAll(c.samples); err != nil {
		log.Printf("controller: read inputs: %v", err)
		return
	}
	for i := 0; i < c.btns.Count(); i++ {
		b := c.btns.Get(i)
		t := typeOf(b.Detector.Detect(c.samples[i], now))
		if t == click.TypeNone {
			continue
		}
		c.handleClick(b, t, now)
	}
}

// handleClick routes one classified click: network-mediated clicks go to
// the coordinator while the gateway is reachable, fall back to the local
// action (or nothing) while it is not; plain clicks act locally.
func (c *Controller) handleClick(b *device.Button, t click.Type, now time.Time) {
	c.count(t)
	timed := b.Detector.Options().Timed(t)

	if timed.Network {
		if c.session.Connected(now) {
			log.Printf("event: %s click button %d (network)", t, b.ID)
			c.clicks.Request(b.Index(), t, now)
			c.sweepArmed = true
			c.counts.Network++
			c.publishClick(b.ID, t, "network", now)
			return
		}
		if timed.Fallback != click.FallbackLocal {
			log.Printf("event: %s click button %d dropped, gateway down", t, b.ID)
			return
		}
		// Gateway down, act immediately instead of arming a timer.
	}

	log.Printf("event: %s click button %d (local)", t, b.ID)
	if device.Perform(b, t, c.acts, now) {
		c.stateDirty = true
	}
	c.publishClick(b.ID, t, "local", now)
}

func (c *Controller) drainInbound(now time.Time) {
	for _, m := range c.session.Poll(now) {
		res := c.dispatcher.Dispatch(&m, now)
		if res.StateChanged {
			c.stateDirty = true
		}
		if res.NetworkClickResolved && !c.clicks.HasPending() {
			c.sweepArmed = false
		}
	}
}

func (c *Controller) sweepNetworkClicks(now time.Time) {
	if !c.sweepArmed || now.Sub(c.lastNetSweep) < c.timings.NetClickSweep {
		return
	}
	c.lastNetSweep = now
	if c.clicks.SweepAll(now, false) {
		c.stateDirty = true
	}
	if !c.clicks.HasPending() {
		c.sweepArmed = false
	}
}

func (c *Controller) sweepAutoOff(now time.Time) {
	if now.Sub(c.lastAutoOff) < c.timings.AutoOffSweep {
		return
	}
	c.lastAutoOff = now
	if c.acts.AutoOffSweep(now) {
		c.stateDirty = true
	}
}

// broadcastState sends the deferred state payload once the link has been
// quiet for the configured delay, so a burst of inbound commands produces
// one broadcast instead of one per command.
func (c *Controller) broadcastState(now time.Time) {
	if !c.stateDirty || c.session.SinceReceived(now) <= c.timings.DelayAfterRx {
		return
	}
	if err := c.SendState(); err != nil {
		log.Printf("controller: send state: %v", err)
		return
	}
	c.stateDirty = false
	if c.pub != nil {
		c.states = c.acts.StatesInto(c.states[:0])
		event := mqtt.StateEvent{Timestamp: now, States: c.states}
		if err := c.pub.PublishState(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// observe updates external observers: gateway connectivity transitions and
// the status tracker.
func (c *Controller) observe(now time.Time) {
	connected := c.session.Connected(now)
	if connected != c.gatewayUp {
		c.gatewayUp = connected
		event := "GATEWAY_DOWN"
		if connected {
			event = "GATEWAY_UP"
		}
		log.Printf("event: %s", event)
		if c.pub != nil {
			if err := c.pub.PublishSystem(mqtt.SystemEvent{Timestamp: now, Event: event}); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	}

	if c.tracker == nil {
		return
	}
	c.trackerBuf = c.trackerBuf[:0]
	for i := 0; i < c.acts.Count(); i++ {
		a := c.acts.Get(i)
		c.trackerBuf = append(c.trackerBuf, status.ActuatorState{ID: a.ID, On: a.State()})
	}
	c.tracker.Update(c.trackerBuf, connected, c.clicks.HasPending(), c.counts)
}

func (c *Controller) count(t click.Type) {
	switch t {
	case click.TypeShort:
		c.counts.Short++
	case click.TypeLong:
		c.counts.Long++
	case click.TypeSuperLong:
		c.counts.SuperLong++
	}
}

func (c *Controller) publishClick(button uint8, t click.Type, origin string, now time.Time) {
	if c.pub == nil {
		return
	}
	event := mqtt.ClickEvent{Timestamp: now, Button: button, Click: t.String(), Origin: origin}
	if err := c.pub.PublishClick(event); err != nil {
		log.Printf("publish error: %v", err)
	}
}

// SendNetworkClick maps a button index back to its wire id and sends the
// request or confirmation through the session.
func (c *Controller) SendNetworkClick(buttonIndex int, t click.Type, confirm bool) error {
	return c.session.SendNetworkClick(t, c.btns.Get(buttonIndex).ID, confirm, c.now)
}

// Fallback returns the button's fallback policy for a click type.
func (c *Controller) Fallback(buttonIndex int, t click.Type) click.Fallback {
	return c.btns.Get(buttonIndex).Detector.Options().Timed(t).Fallback
}

// Perform executes the local fallback action for an expired or failed-over
// network click.
func (c *Controller) Perform(buttonIndex int, t click.Type, now time.Time) bool {
	b := c.btns.Get(buttonIndex)
	log.Printf("event: %s click button %d (fallback)", t, b.ID)
	c.counts.Fallback++
	c.publishClick(b.ID, t, "fallback", now)
	return device.Perform(b, t, c.acts, now)
}

// SendDetails sends the device identity payload.
func (c *Controller) SendDetails() error {
	return c.session.SendDetails(c.name, c.acts.IDs(), c.btns.IDs(), c.now)
}

// SendState sends the full actuator state payload.
func (c *Controller) SendState() error {
	c.states = c.acts.StatesInto(c.states[:0])
	return c.session.SendState(c.states, c.now)
}

// Counts returns the click tallies accumulated so far.
func (c *Controller) Counts() status.ClickCounts {
	return c.counts
}

// typeOf maps a detector result to the click type that should act.
func typeOf(r click.Result) click.Type {
	switch r {
	case click.ResultShort, click.ResultShortQuick:
		return click.TypeShort
	case click.ResultLong:
		return click.TypeLong
	case click.ResultSuperLong:
		return click.TypeSuperLong
	default:
		return click.TypeNone
	}
}
