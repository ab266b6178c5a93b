package link

import (
	"io"
	"sync"
)

// Fake is an in-memory Link for tests: inbound bytes are queued with Feed,
// outbound writes are recorded.
type Fake struct {
	mu     sync.Mutex
	queue  chan []byte
	rest   []byte
	wrote  []byte
	closed bool
}

// NewFake creates an open fake link.
func NewFake() *Fake {
	return &Fake{queue: make(chan []byte, 64)}
}

// Feed queues inbound bytes for the next Read.
func (f *Fake) Feed(p []byte) {
	f.queue <- append([]byte(nil), p...)
}

func (f *Fake) Read(p []byte) (int, error) {
	if len(f.rest) > 0 {
		n := copy(p, f.rest)
		f.rest = f.rest[n:]
		return n, nil
	}
	chunk, ok := <-f.queue
	if !ok {
		return 0, io.EOF
	}
	n := copy(p, chunk)
	f.rest = chunk[n:]
	return n, nil
}

func (f *Fake) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, p...)
	return len(p), nil
}

// Written returns everything written so far.
func (f *Fake) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.wrote...)
}

// Reset discards the recorded writes.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	return nil
}
