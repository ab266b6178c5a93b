package gpio

import "errors"

// FakeReader is a test double that returns scripted button frames.
type FakeReader struct {
	// Frames contains scripted line states, one slice per ReadAll call.
	// Each call consumes the next frame; the last frame repeats.
	Frames [][]bool

	// index tracks current position in Frames
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadAll()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given frames.
func NewFakeReader(frames [][]bool) *FakeReader {
	return &FakeReader{Frames: frames}
}

// ReadAll copies the next scripted frame into dst.
// If frames are exhausted, the last frame repeats.
func (f *FakeReader) ReadAll(dst []bool) error {
	if f.ReadError != nil {
		return f.ReadError
	}
	if len(f.Frames) == 0 {
		return errors.New("no frames configured")
	}

	frame := f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	copy(dst, frame)
	return nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of the frames.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeWriter records the output states it was driven to.
type FakeWriter struct {
	// States holds the last state set per line index.
	States map[int]bool

	// Calls records every Set in order.
	Calls []FakeSet

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// FakeSet is one recorded Set call.
type FakeSet struct {
	Index int
	On    bool
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{States: make(map[int]bool)}
}

// Set records the call.
func (f *FakeWriter) Set(index int, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States[index] = on
	f.Calls = append(f.Calls, FakeSet{Index: index, On: on})
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}
