package link

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the gateway side of the wire.
const DefaultBaudRate = 250000

// serialLink wraps a serial port.
type serialLink struct {
	port serial.Port
}

// OpenSerial opens the serial device in 8N1 at the given baud rate.
func OpenSerial(device string, baud int) (Link, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return &serialLink{port: port}, nil
}

func (s *serialLink) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialLink) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialLink) Close() error                { return s.port.Close() }
