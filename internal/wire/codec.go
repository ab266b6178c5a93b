package wire

import (
	"encoding/json"
	"fmt"
)

// DefaultBufferSize bounds the framer reassembly buffers. Large enough for
// the biggest legal message (a full state list at maximum actuator count)
// plus slack.
const DefaultBufferSize = 1024

// Codec encodes messages and produces framers for the matching framing.
// Append writes one framed message to dst and returns the extended slice;
// callers reuse one scratch buffer across encodes. Boot and Ping return
// precomputed frames that bypass the encoder.
type Codec interface {
	Name() string
	Append(dst []byte, m *Message) ([]byte, error)
	NewFramer() Framer
	Boot() []byte
	Ping() []byte
}

// Framer reassembles a byte stream into messages. Feed consumes a chunk
// and returns every complete message it finished; malformed frames are
// dropped and logged, partial frames are buffered for the next call.
type Framer interface {
	Feed(p []byte) []Message
}

// ForEncoding returns the codec for a configured encoding name.
func ForEncoding(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q (want json or cbor)", name)
	}
}

// JSONCodec is the human-readable encoding: one JSON object per line.
type JSONCodec struct{}

var (
	jsonBoot = []byte("{\"p\":4}\n")
	jsonPing = []byte("{\"p\":5}\n")
)

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Append(dst []byte, m *Message) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return dst, fmt.Errorf("encode json message: %w", err)
	}
	dst = append(dst, raw...)
	return append(dst, '\n'), nil
}

func (JSONCodec) NewFramer() Framer {
	return &jsonFramer{buf: make([]byte, 0, DefaultBufferSize)}
}

func (JSONCodec) Boot() []byte { return jsonBoot }
func (JSONCodec) Ping() []byte { return jsonPing }
