// Package link provides the byte transport to the gateway. The controller
// only sees a Link; serial and WebSocket carry the same framed stream.
package link

import (
	"fmt"
	"io"
)

// Link is a byte-stream connection to the gateway. Read blocks until bytes
// arrive and returns an error once the link is closed or lost.
type Link interface {
	io.Reader
	io.Writer
	io.Closer
}

// Open opens a link by kind. Serial links need a device and baud rate,
// websocket links a ws:// or wss:// URL.
func Open(kind, target string, baud int) (Link, error) {
	switch kind {
	case "serial", "":
		return OpenSerial(target, baud)
	case "websocket":
		return OpenWebSocket(target)
	default:
		return nil, fmt.Errorf("unknown link kind %q (want serial or websocket)", kind)
	}
}
