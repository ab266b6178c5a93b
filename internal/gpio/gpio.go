// Package gpio provides GPIO access with hardware abstraction: button
// lines are sampled as a group, actuator relays and indicator LEDs are
// driven individually. The real implementation uses the Linux GPIO
// character device; the fake implementations allow testing without
// hardware.
package gpio

// Reader samples the panel's button lines.
type Reader interface {
	// ReadAll fills dst with one logical state per configured line,
	// true while the button is held down.
	ReadAll(dst []bool) error

	// Close releases GPIO resources.
	Close() error
}

// Writer drives a group of output lines (relays or LEDs) addressed by the
// index they were configured with.
type Writer interface {
	// Set drives one line high or low.
	Set(index int, on bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device used unless configured
// otherwise.
const DefaultChip = "gpiochip0"
