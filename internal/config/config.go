// Package config loads and validates the panel configuration from a TOML
// file and builds the runtime registries from it. Capacities are fixed by
// the configuration: registration errors at build time are fatal, there is
// no dynamic recovery once the tick loop has started.
package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/device"
)

// Firmware-compatible timing defaults, in milliseconds.
const (
	defaultDebounceMS         = 20
	defaultLongPressMS        = 400
	defaultSuperLongPressMS   = 1000
	defaultNetClickTimeoutMS  = 1000
	defaultNetClickSweepMS    = 50
	defaultAutoOffSweepMS     = 1000
	defaultDelayAfterRxMS     = 50
	defaultSwitchDebounceMS   = 100
	defaultPingIntervalMS     = 10000
	defaultTickMS             = 5
	defaultEncoding           = "json"
	defaultLinkKind           = "serial"
	defaultBaudRate           = 250000
	defaultHTTPAddr           = ":8080"
)

// Config is the full panel configuration.
type Config struct {
	Name     string `toml:"name"`
	Encoding string `toml:"encoding"` // json or cbor

	Link       LinkConfig        `toml:"link"`
	GPIO       GPIOConfig        `toml:"gpio"`
	Timings    Timings           `toml:"timings"`
	Actuators  []ActuatorConfig  `toml:"actuators"`
	Buttons    []ButtonConfig    `toml:"buttons"`
	Indicators []IndicatorConfig `toml:"indicators"`
	MQTT       MQTTConfig        `toml:"mqtt"`
	HTTP       HTTPConfig        `toml:"http"`
}

// LinkConfig selects and parameterizes the gateway transport.
type LinkConfig struct {
	Kind   string `toml:"kind"`   // serial or websocket
	Device string `toml:"device"` // serial device path
	Baud   int    `toml:"baud"`
	URL    string `toml:"url"` // websocket endpoint
}

// GPIOConfig names the GPIO character device.
type GPIOConfig struct {
	Chip string `toml:"chip"`
}

// Timings carries every timer the core uses, in milliseconds to match the
// gateway-side configuration convention.
type Timings struct {
	DebounceMS        int `toml:"debounce_ms"`
	LongPressMS       int `toml:"long_press_ms"`
	SuperLongPressMS  int `toml:"super_long_press_ms"`
	NetClickTimeoutMS int `toml:"network_click_timeout_ms"`
	NetClickSweepMS   int `toml:"network_click_sweep_ms"`
	AutoOffSweepMS    int `toml:"auto_off_sweep_ms"`
	DelayAfterRxMS    int `toml:"delay_after_receive_ms"`
	SwitchDebounceMS  int `toml:"actuator_switch_debounce_ms"`
	PingIntervalMS    int `toml:"ping_interval_ms"`
	TickMS            int `toml:"tick_ms"`
}

// ActuatorConfig is one relay output.
type ActuatorConfig struct {
	ID        uint8 `toml:"id"`
	Pin       int   `toml:"pin"`
	Protected bool  `toml:"protected"`
	AutoOffMS int   `toml:"auto_off_ms"`
	DefaultOn bool  `toml:"default_on"`
}

// ButtonConfig is one physical button and its click behavior. Actuator
// lists reference actuator ids, not pins.
type ButtonConfig struct {
	ID  uint8 `toml:"id"`
	Pin int   `toml:"pin"`

	Short          bool    `toml:"short"`
	ShortActuators []uint8 `toml:"short_actuators"`

	Long          bool    `toml:"long"`
	LongMode      string  `toml:"long_mode"` // normal, on-only, off-only
	LongNetwork   bool    `toml:"long_network"`
	LongFallback  string  `toml:"long_fallback"` // local or nothing
	LongActuators []uint8 `toml:"long_actuators"`

	SuperLong          bool    `toml:"super_long"`
	SuperLongMode      string  `toml:"super_long_mode"` // normal or selective
	SuperLongNetwork   bool    `toml:"super_long_network"`
	SuperLongFallback  string  `toml:"super_long_fallback"`
	SuperLongActuators []uint8 `toml:"super_long_actuators"`
}

// IndicatorConfig is one LED output derived from actuator states.
type IndicatorConfig struct {
	ID        uint8   `toml:"id"`
	Pin       int     `toml:"pin"`
	Mode      string  `toml:"mode"` // any, all, majority
	Actuators []uint8 `toml:"actuators"`
}

// MQTTConfig configures the optional telemetry publisher.
type MQTTConfig struct {
	Enabled   bool   `toml:"enabled"`
	Broker    string `toml:"broker"`
	ClientID  string `toml:"client_id"`
	TopicBase string `toml:"topic_base"`
}

// HTTPConfig configures the optional status endpoint.
type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Load reads and validates a configuration file, filling defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse validates configuration bytes, filling defaults.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Encoding == "" {
		c.Encoding = defaultEncoding
	}
	if c.Link.Kind == "" {
		c.Link.Kind = defaultLinkKind
	}
	if c.Link.Baud == 0 {
		c.Link.Baud = defaultBaudRate
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}

	t := &c.Timings
	def := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	def(&t.DebounceMS, defaultDebounceMS)
	def(&t.LongPressMS, defaultLongPressMS)
	def(&t.SuperLongPressMS, defaultSuperLongPressMS)
	def(&t.NetClickTimeoutMS, defaultNetClickTimeoutMS)
	def(&t.NetClickSweepMS, defaultNetClickSweepMS)
	def(&t.AutoOffSweepMS, defaultAutoOffSweepMS)
	def(&t.DelayAfterRxMS, defaultDelayAfterRxMS)
	def(&t.SwitchDebounceMS, defaultSwitchDebounceMS)
	def(&t.PingIntervalMS, defaultPingIntervalMS)
	def(&t.TickMS, defaultTickMS)
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	switch c.Encoding {
	case "json", "cbor":
	default:
		return fmt.Errorf("config: unknown encoding %q", c.Encoding)
	}
	switch c.Link.Kind {
	case "serial":
		if c.Link.Device == "" {
			return fmt.Errorf("config: link.device is required for serial links")
		}
	case "websocket":
		if c.Link.URL == "" {
			return fmt.Errorf("config: link.url is required for websocket links")
		}
	default:
		return fmt.Errorf("config: unknown link kind %q", c.Link.Kind)
	}

	if len(c.Actuators) == 0 {
		return fmt.Errorf("config: at least one actuator is required")
	}
	ids := make(map[uint8]bool, len(c.Actuators))
	for _, a := range c.Actuators {
		if a.ID == 0 {
			return fmt.Errorf("config: actuator id 0 is reserved")
		}
		if ids[a.ID] {
			return fmt.Errorf("config: duplicate actuator id %d", a.ID)
		}
		ids[a.ID] = true
	}

	bids := make(map[uint8]bool, len(c.Buttons))
	for _, b := range c.Buttons {
		if b.ID == 0 {
			return fmt.Errorf("config: button id 0 is reserved")
		}
		if bids[b.ID] {
			return fmt.Errorf("config: duplicate button id %d", b.ID)
		}
		bids[b.ID] = true
		if !b.Short && !b.Long && !b.SuperLong {
			return fmt.Errorf("config: button %d has no click type enabled", b.ID)
		}
		for _, ref := range [][]uint8{b.ShortActuators, b.LongActuators, b.SuperLongActuators} {
			for _, id := range ref {
				if !ids[id] {
					return fmt.Errorf("config: button %d references unknown actuator %d", b.ID, id)
				}
			}
		}
		if _, err := longMode(b.LongMode); b.Long && err != nil {
			return fmt.Errorf("config: button %d: %w", b.ID, err)
		}
		if _, err := superLongMode(b.SuperLongMode); b.SuperLong && err != nil {
			return fmt.Errorf("config: button %d: %w", b.ID, err)
		}
		if _, err := fallback(b.LongFallback); b.LongNetwork && err != nil {
			return fmt.Errorf("config: button %d: %w", b.ID, err)
		}
		if _, err := fallback(b.SuperLongFallback); b.SuperLongNetwork && err != nil {
			return fmt.Errorf("config: button %d: %w", b.ID, err)
		}
	}

	iids := make(map[uint8]bool, len(c.Indicators))
	for _, ind := range c.Indicators {
		if ind.ID == 0 {
			return fmt.Errorf("config: indicator id 0 is reserved")
		}
		if iids[ind.ID] {
			return fmt.Errorf("config: duplicate indicator id %d", ind.ID)
		}
		iids[ind.ID] = true
		if _, err := indicatorMode(ind.Mode); err != nil {
			return fmt.Errorf("config: indicator %d: %w", ind.ID, err)
		}
		for _, id := range ind.Actuators {
			if !ids[id] {
				return fmt.Errorf("config: indicator %d references unknown actuator %d", ind.ID, id)
			}
		}
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("config: mqtt.broker is required when mqtt is enabled")
	}
	return nil
}

func longMode(s string) (click.LongMode, error) {
	switch s {
	case "normal", "":
		return click.LongNormal, nil
	case "on-only":
		return click.LongOnOnly, nil
	case "off-only":
		return click.LongOffOnly, nil
	default:
		return 0, fmt.Errorf("unknown long mode %q", s)
	}
}

func superLongMode(s string) (click.SuperLongMode, error) {
	switch s {
	case "normal", "":
		return click.SuperLongNormal, nil
	case "selective":
		return click.SuperLongSelective, nil
	default:
		return 0, fmt.Errorf("unknown super-long mode %q", s)
	}
}

func fallback(s string) (click.Fallback, error) {
	switch s {
	case "local", "":
		return click.FallbackLocal, nil
	case "nothing":
		return click.FallbackNothing, nil
	default:
		return 0, fmt.Errorf("unknown fallback %q", s)
	}
}

func indicatorMode(s string) (device.IndicatorMode, error) {
	switch s {
	case "any", "":
		return device.IndicatorAny, nil
	case "all":
		return device.IndicatorAll, nil
	case "majority":
		return device.IndicatorMajority, nil
	default:
		return 0, fmt.Errorf("unknown indicator mode %q", s)
	}
}

// Duration accessors.

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (t Timings) Debounce() time.Duration        { return ms(t.DebounceMS) }
func (t Timings) LongPress() time.Duration       { return ms(t.LongPressMS) }
func (t Timings) SuperLongPress() time.Duration  { return ms(t.SuperLongPressMS) }
func (t Timings) NetClickTimeout() time.Duration { return ms(t.NetClickTimeoutMS) }
func (t Timings) NetClickSweep() time.Duration   { return ms(t.NetClickSweepMS) }
func (t Timings) AutoOffSweep() time.Duration    { return ms(t.AutoOffSweepMS) }
func (t Timings) DelayAfterRx() time.Duration    { return ms(t.DelayAfterRxMS) }
func (t Timings) SwitchDebounce() time.Duration  { return ms(t.SwitchDebounceMS) }
func (t Timings) PingInterval() time.Duration    { return ms(t.PingIntervalMS) }
func (t Timings) Tick() time.Duration            { return ms(t.TickMS) }

// ButtonPins returns the button GPIO pins in configuration order.
func (c *Config) ButtonPins() []int {
	pins := make([]int, len(c.Buttons))
	for i, b := range c.Buttons {
		pins[i] = b.Pin
	}
	return pins
}

// ActuatorPins returns the actuator GPIO pins in configuration order.
func (c *Config) ActuatorPins() []int {
	pins := make([]int, len(c.Actuators))
	for i, a := range c.Actuators {
		pins[i] = a.Pin
	}
	return pins
}

// IndicatorPins returns the indicator GPIO pins in configuration order.
func (c *Config) IndicatorPins() []int {
	pins := make([]int, len(c.Indicators))
	for i, ind := range c.Indicators {
		pins[i] = ind.Pin
	}
	return pins
}
