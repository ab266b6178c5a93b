package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
)

// jsonFramer accumulates bytes until a newline, then parses the line. The
// buffer has a fixed capacity; a line that overflows it is abandoned and
// accumulation restarts with the bytes that follow, so one oversized or
// garbled line cannot wedge the stream.
type jsonFramer struct {
	buf []byte
}

func (f *jsonFramer) Feed(p []byte) []Message {
	var msgs []Message
	for len(p) > 0 {
		nl := bytes.IndexByte(p, '\n')
		if nl < 0 {
			f.take(p)
			return msgs
		}
		f.take(p[:nl])
		p = p[nl+1:]

		line := bytes.TrimSpace(f.buf)
		f.buf = f.buf[:0]
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			log.Printf("wire: drop malformed json line: %v", err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func (f *jsonFramer) take(p []byte) {
	if len(f.buf)+len(p) > cap(f.buf) {
		log.Printf("wire: line overflows %d byte buffer, resetting", cap(f.buf))
		f.buf = f.buf[:0]
		if len(p) > cap(f.buf) {
			p = p[len(p)-cap(f.buf):]
		}
	}
	f.buf = append(f.buf, p...)
}

// cborFramer reassembles self-delimited CBOR items. An incomplete item
// stays buffered until more bytes arrive; any other decode error means the
// stream lost sync, so the whole buffer is dropped.
type cborFramer struct {
	buf []byte
}

func (f *cborFramer) Feed(p []byte) []Message {
	f.buf = append(f.buf, p...)
	var msgs []Message
	for len(f.buf) > 0 {
		var m Message
		rest, err := cborDec.UnmarshalFirst(f.buf, &m)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				// Partial item, wait for more bytes. Unless it can
				// never complete within the buffer bound.
				if len(f.buf) > DefaultBufferSize {
					log.Printf("wire: cbor item overflows %d byte buffer, resetting", DefaultBufferSize)
					f.buf = f.buf[:0]
				}
				return msgs
			}
			log.Printf("wire: drop %d unsyncable cbor bytes: %v", len(f.buf), err)
			f.buf = f.buf[:0]
			return msgs
		}
		f.buf = f.buf[:copy(f.buf, rest)]
		msgs = append(msgs, m)
	}
	return msgs
}
