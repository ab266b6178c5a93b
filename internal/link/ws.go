package link

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const wsHandshakeTimeout = 10 * time.Second

// wsLink wraps a WebSocket connection for byte-level reading. Protocol
// frames ride in binary messages; anything else is skipped.
type wsLink struct {
	conn   *websocket.Conn
	buf    []byte
	off    int
	closed bool
}

// OpenWebSocket dials a ws:// or wss:// gateway endpoint.
func OpenWebSocket(rawURL string) (Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported url scheme %q (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	ctx, cancel := context.WithTimeout(context.Background(), wsHandshakeTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return &wsLink{conn: conn}, nil
}

func (w *wsLink) Read(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("websocket link closed")
	}
	if w.off < len(w.buf) {
		n := copy(p, w.buf[w.off:])
		w.off += n
		return n, nil
	}
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.off = copy(p, w.buf)
		return w.off, nil
	}
}

func (w *wsLink) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsLink) Close() error { return w.conn.Close() }
