package framing

import (
	"bytes"
	"crypto/md5"
	"testing"
)

func TestMarkerIsDigestOfSeed(t *testing.T) {
	sum := md5.Sum([]byte(MarkerSeed))
	if !bytes.Equal(sum[:], []byte(Marker)) {
		t.Fatalf("Marker = %x, want md5(%q) = %x", Marker, MarkerSeed, sum)
	}
	if len(Marker) != 16 {
		t.Fatalf("Marker length = %d, want 16", len(Marker))
	}
}

func TestMagicHeader(t *testing.T) {
	want := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}
	if !bytes.Equal([]byte(MagicHeader), want) {
		t.Fatalf("MagicHeader = % x, want % x", MagicHeader, want)
	}
}

func TestEncodeSingleByte(t *testing.T) {
	stream, err := Encode([]byte{0x01})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// bit count 8, big-endian, then the payload byte
	want := []byte{0x00, 0x00, 0x00, 0x08, 0x01}
	if !bytes.Equal(stream, want) {
		t.Fatalf("Encode = % x, want % x", stream, want)
	}
	if got := StreamBits(1); got != 40 {
		t.Fatalf("StreamBits(1) = %d, want 40", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello")},
		{"binary", []byte{0x00, 0xFF, 0x80, 0x7F, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := Encode(tt.data)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(stream)*8 != StreamBits(len(tt.data)) {
				t.Fatalf("stream is %d bits, want %d", len(stream)*8, StreamBits(len(tt.data)))
			}

			n, err := DecodeLength(stream)
			if err != nil {
				t.Fatalf("DecodeLength failed: %v", err)
			}
			if int(n) != 8*len(tt.data) {
				t.Fatalf("DecodeLength = %d, want %d", n, 8*len(tt.data))
			}

			got, err := Decode(stream, n)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Fatalf("Decode = % x, want % x", got, tt.data)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeLength([]byte{0x00, 0x01}); err == nil {
		t.Fatalf("expected error for a short length prefix")
	}
	if _, err := Decode([]byte{0, 0, 0, 3, 0xFF}, 3); err == nil {
		t.Fatalf("expected error for a bit count that is not a whole byte")
	}
	if _, err := Decode([]byte{0, 0, 0, 16, 0xFF}, 16); err == nil {
		t.Fatalf("expected error for a truncated stream")
	}
}

func TestBits(t *testing.T) {
	b := NewBits()
	for _, v := range []uint8{0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 1} {
		if err := b.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if b.Len() != 11 {
		t.Fatalf("Len = %d, want 11", b.Len())
	}

	got, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	want := []byte{0x01, 0xA0}
	if !bytes.Equal(got, want) {
		t.Fatalf("Bytes = % x, want % x", got, want)
	}
}

func TestBitsUsesLowBitOnly(t *testing.T) {
	b := NewBits()
	for _, v := range []uint8{0xFF, 0xFE, 0x03, 0x02, 0x81, 0x80, 0x11, 0x10} {
		b.Add(v)
	}
	got, _ := b.Bytes()
	if !bytes.Equal(got, []byte{0xAA}) {
		t.Fatalf("Bytes = % x, want aa", got)
	}
}
