// Package header hides a payload behind a fixed JPEG magic prefix.
package header

import (
	"bytes"

	"github.com/JustinTimperio/dataobfuscator/framing"
)

// Obfuscate prepends the magic header to data.
func Obfuscate(data []byte) []byte {
	out := make([]byte, 0, len(framing.MagicHeader)+len(data))
	out = append(out, framing.MagicHeader...)
	return append(out, data...)
}

// Deobfuscate strips the first len(MagicHeader) bytes from carrier. The prefix
// itself is not checked. A carrier shorter than the header yields an empty
// payload.
func Deobfuscate(carrier []byte) []byte {
	if len(carrier) <= len(framing.MagicHeader) {
		return []byte{}
	}
	out := make([]byte, len(carrier)-len(framing.MagicHeader))
	copy(out, carrier[len(framing.MagicHeader):])
	return out
}

// HasMagicHeader reports whether carrier starts with the magic header.
func HasMagicHeader(carrier []byte) bool {
	return bytes.HasPrefix(carrier, []byte(framing.MagicHeader))
}
