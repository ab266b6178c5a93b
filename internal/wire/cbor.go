package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBORCodec is the binary encoding: one self-delimited CBOR map per
// message, same keys as the JSON form.
type CBORCodec struct{}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode

	// Precomputed frames: a one-entry map {"p": 4|5}.
	cborBoot = []byte{0xa1, 0x61, 0x70, 0x04}
	cborPing = []byte{0xa1, 0x61, 0x70, 0x05}
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

func (CBORCodec) Name() string { return "cbor" }

func (CBORCodec) Append(dst []byte, m *Message) ([]byte, error) {
	raw, err := cborEnc.Marshal(m)
	if err != nil {
		return dst, fmt.Errorf("encode cbor message: %w", err)
	}
	return append(dst, raw...), nil
}

func (CBORCodec) NewFramer() Framer {
	return &cborFramer{buf: make([]byte, 0, DefaultBufferSize)}
}

func (CBORCodec) Boot() []byte { return cborBoot }
func (CBORCodec) Ping() []byte { return cborPing }
