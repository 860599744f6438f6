// Package appended hides a payload after the end of a carrier file, separated
// by framing.Marker.
package appended

import (
	"bytes"
	"errors"

	"github.com/JustinTimperio/dataobfuscator/framing"
)

// ErrMarkerNotFound is returned when a carrier holds no appended payload.
var ErrMarkerNotFound = errors.New("append marker not found in carrier")

// Obfuscate returns carrier ‖ Marker ‖ data.
func Obfuscate(data, carrier []byte) []byte {
	out := make([]byte, 0, len(carrier)+len(framing.Marker)+len(data))
	out = append(out, carrier...)
	out = append(out, framing.Marker...)
	return append(out, data...)
}

// Deobfuscate returns everything after the first Marker in carrier.
//
// The first match wins, so a carrier whose own content happens to contain the
// marker bytes yields the wrong payload. That is a known limitation of the
// format and is kept for compatibility with existing files.
func Deobfuscate(carrier []byte) ([]byte, error) {
	i := bytes.Index(carrier, []byte(framing.Marker))
	if i < 0 {
		return nil, ErrMarkerNotFound
	}
	return bytes.Clone(carrier[i+len(framing.Marker):]), nil
}
