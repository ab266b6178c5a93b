package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Clicks contains all click events that were published.
	Clicks []ClickEvent

	// States contains all state snapshots that were published.
	States []StateEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, will be returned by every publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishClick records the click event.
func (f *FakePublisher) PublishClick(event ClickEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Clicks = append(f.Clicks, event)
	return nil
}

// PublishState records the state snapshot.
func (f *FakePublisher) PublishState(event StateEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.States = append(f.States, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Clicks = nil
	f.States = nil
	f.SystemEvents = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
