// Package image hides a payload in the least significant bits of an image.
//
// Bits go into the R, G and B channels of each pixel in turn. Pixels are
// visited one column at a time: every y for x = 0, then every y for x = 1,
// and so on. Alpha never carries data.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/JustinTimperio/dataobfuscator/framing"

	"github.com/icza/bitio"
)

const channels = 3

var (
	// ErrCapacityExceeded is matched by every *CapacityError.
	ErrCapacityExceeded = errors.New("data is too large to be embedded in the image")

	// ErrMalformedCarrier is returned when an image's length prefix cannot
	// describe a payload that fits in it.
	ErrMalformedCarrier = errors.New("image does not hold a valid embedded payload")
)

// CapacityError reports a payload that does not fit a carrier. Sizes are in
// bits.
type CapacityError struct {
	Required  int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v. Data contains %d bytes, maximum is %d", ErrCapacityExceeded, e.RequiredBytes(), e.AvailableBytes())
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// RequiredBytes is the size of the framed payload in bytes.
func (e *CapacityError) RequiredBytes() int { return e.Required / 8 }

// AvailableBytes is the carrier capacity in whole bytes.
func (e *CapacityError) AvailableBytes() int { return e.Available / 8 }

// Capacity returns how many bits img can hold, length prefix included.
func Capacity(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy() * channels
}

// MaxPayloadSize returns the largest payload, in bytes, that fits in img.
func MaxPayloadSize(img image.Image) int {
	n := (Capacity(img) - framing.LengthPrefixBits) / 8
	if n < 0 {
		return 0
	}
	return n
}

// walk calls fn for every pixel of b, column by column, until fn returns false.
func walk(b image.Rectangle, fn func(x, y int) bool) {
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if !fn(x, y) {
				return
			}
		}
	}
}

// Embed writes data into a copy of carrier. The carrier is left untouched.
func Embed(carrier image.Image, data []byte) (*image.NRGBA, error) {
	stream, err := framing.Encode(data)
	if err != nil {
		return nil, err
	}

	required := framing.StreamBits(len(data))
	available := Capacity(carrier)
	if required > available {
		return nil, &CapacityError{Required: required, Available: available}
	}

	out := cloneNRGBA(carrier)
	r := bitio.NewReader(bytes.NewReader(stream))

	var (
		written int
		readErr error
	)
	walk(out.Bounds(), func(x, y int) bool {
		pixel := out.NRGBAAt(x, y)
		for _, c := range [channels]*uint8{&pixel.R, &pixel.G, &pixel.B} {
			if written == required {
				break
			}
			bit, err := r.ReadBool()
			if err != nil {
				readErr = err
				return false
			}
			*c &^= 1
			if bit {
				*c |= 1
			}
			written++
		}
		out.SetNRGBA(x, y, pixel)
		return written < required
	})
	if readErr != nil {
		return nil, fmt.Errorf("reading payload stream: %w", readErr)
	}

	return out, nil
}

// Extract recovers the payload written by Embed.
//
// The length prefix is read first, then the image is walked again from the
// start for the prefix and payload together.
func Extract(img image.Image) ([]byte, error) {
	capacity := Capacity(img)
	if capacity < framing.LengthPrefixBits {
		return nil, fmt.Errorf("%w: %d bit capacity cannot hold a length prefix", ErrMalformedCarrier, capacity)
	}

	prefix, err := readBits(img, framing.LengthPrefixBits)
	if err != nil {
		return nil, err
	}
	bitLen, err := framing.DecodeLength(prefix)
	if err != nil {
		return nil, err
	}

	if bitLen%8 != 0 {
		return nil, fmt.Errorf("%w: payload length of %d bits is not a whole number of bytes", ErrMalformedCarrier, bitLen)
	}
	total := uint64(framing.LengthPrefixBits) + uint64(bitLen)
	if total > uint64(capacity) {
		return nil, fmt.Errorf("%w: payload needs %d bits, image holds %d", ErrMalformedCarrier, total, capacity)
	}

	stream, err := readBits(img, int(total))
	if err != nil {
		return nil, err
	}
	return framing.Decode(stream, bitLen)
}

// readBits collects the low bit of the first n channel slots of img.
func readBits(img image.Image, n int) ([]byte, error) {
	bits := framing.NewBits()
	var addErr error
	walk(img.Bounds(), func(x, y int) bool {
		pixel := nrgbaAt(img, x, y)
		for _, c := range [channels]uint8{pixel.R, pixel.G, pixel.B} {
			if bits.Len() == n {
				break
			}
			if err := bits.Add(c); err != nil {
				addErr = err
				return false
			}
		}
		return bits.Len() < n
	})
	if addErr != nil {
		return nil, addErr
	}
	return bits.Bytes()
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	if m, ok := img.(*image.NRGBA); ok {
		return m.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// cloneNRGBA copies img into a new NRGBA image with the same bounds.
func cloneNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)

	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			copy(out.Pix[out.PixOffset(b.Min.X, y):], src.Pix[i:i+4*b.Dx()])
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetNRGBA(x, y, nrgbaAt(img, x, y))
		}
	}
	return out
}
