// Package framing holds the fixed constants every obfuscation method relies on
// and the bitstream layout used by LSB embedding.
//
// An LSB stream is a 32 bit big-endian count of payload bits followed by the
// payload bytes, every value written most significant bit first.
package framing

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/icza/bitio"
)

const (
	// MagicHeader is a JFIF APP0 prefix, enough for most tools to sniff the
	// file as a JPEG.
	MagicHeader = "\xff\xd8\xff\xe0\x00\x10\x4a\x46\x49\x46\x00\x01"

	// Marker separates carrier content from an appended payload. It is the
	// MD5 digest of MarkerSeed.
	Marker = "\x83\x22\x2b\x14\x27\x78\x0e\x84\xef\xf7\x13\x65\x41\x76\x27\x30"

	// MarkerSeed is the string Marker was derived from.
	MarkerSeed = "<AttackIQ - Start of Appended File>"

	// LengthPrefixBits is the width of the bit count leading every LSB stream.
	LengthPrefixBits = 32
)

// ErrPayloadTooLarge is returned when the payload bit count does not fit the
// length prefix.
var ErrPayloadTooLarge = errors.New("payload too large for a 32 bit length prefix")

// StreamBits returns the number of bits Encode produces for a payload of
// payloadLen bytes.
func StreamBits(payloadLen int) int {
	return LengthPrefixBits + 8*payloadLen
}

// Encode builds the LSB stream for data.
func Encode(data []byte) ([]byte, error) {
	bitLen := uint64(len(data)) * 8
	if bitLen > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(data)+LengthPrefixBits/8))
	w := bitio.NewWriter(buf)
	if err := w.WriteBits(bitLen, LengthPrefixBits); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeLength reads the payload bit count from the start of a stream.
func DecodeLength(stream []byte) (uint32, error) {
	r := bitio.NewReader(bytes.NewReader(stream))
	n, err := r.ReadBits(LengthPrefixBits)
	if err != nil {
		return 0, fmt.Errorf("reading length prefix: %w", err)
	}
	return uint32(n), nil
}

// Decode returns the bitLen payload bits that follow the length prefix,
// packed into bytes. bitLen must be a multiple of 8.
func Decode(stream []byte, bitLen uint32) ([]byte, error) {
	if bitLen%8 != 0 {
		return nil, fmt.Errorf("payload bit count %d is not a whole number of bytes", bitLen)
	}

	r := bitio.NewReader(bytes.NewReader(stream))
	if _, err := r.ReadBits(LengthPrefixBits); err != nil {
		return nil, fmt.Errorf("reading length prefix: %w", err)
	}

	data := make([]byte, bitLen/8)
	for i := range data {
		b, err := r.ReadBits(8)
		if err != nil {
			return nil, fmt.Errorf("reading payload byte %d: %w", i, err)
		}
		data[i] = byte(b)
	}

	return data, nil
}

// Bits collects single bits, in order, and packs them MSB first.
type Bits struct {
	buf bytes.Buffer
	w   *bitio.Writer
	n   int
}

// NewBits returns an empty bit collector.
func NewBits() *Bits {
	b := &Bits{}
	b.w = bitio.NewWriter(&b.buf)
	return b
}

// Add appends the low bit of v.
func (b *Bits) Add(v uint8) error {
	b.n++
	return b.w.WriteBool(v&1 == 1)
}

// Len returns the number of bits added so far.
func (b *Bits) Len() int { return b.n }

// Bytes pads the collected bits with zeros to a byte boundary and returns
// them. No further bits may be added afterwards.
func (b *Bits) Bytes() ([]byte, error) {
	if err := b.w.Close(); err != nil {
		return nil, err
	}
	return b.buf.Bytes(), nil
}
