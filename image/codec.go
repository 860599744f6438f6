package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrLossyFormat is returned when an embedded image would be written in a
// format that does not preserve every bit.
var ErrLossyFormat = errors.New("output format is lossy and would destroy embedded data")

// Format is an image encoding the package can write.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
	FormatJPEG
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatJPEG:
		return "jpeg"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Lossless reports whether f stores every channel value exactly.
func (f Format) Lossless() bool {
	return f != FormatJPEG
}

// FormatFromPath picks a format from the extension of path. Paths without a
// known image extension get PNG.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return FormatBMP
	case ".tif", ".tiff":
		return FormatTIFF
	case ".jpg", ".jpeg":
		return FormatJPEG
	}
	return FormatPNG
}

// Decode reads an image in any registered format and returns it with the
// format name.
func Decode(data []byte) (image.Image, string, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("could not decode carrier image: %w", err)
	}
	return img, name, nil
}

// ConfigCapacity returns the capacity in bits of an encoded image, reading
// only its header.
func ConfigCapacity(data []byte) (int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("could not decode carrier image: %w", err)
	}
	return cfg.Width * cfg.Height * channels, nil
}

// Encode writes img in format f.
func Encode(img image.Image, f Format) ([]byte, error) {
	buf := bytes.NewBuffer(nil)

	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(buf, img)
	case FormatBMP:
		err = bmp.Encode(buf, img)
	case FormatTIFF:
		err = tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatJPEG:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	default:
		return nil, fmt.Errorf("unsupported image format %v", f)
	}
	if err != nil {
		return nil, fmt.Errorf("could not encode %v image: %w", f, err)
	}

	return buf.Bytes(), nil
}

// Obfuscate embeds data in the carrier image and encodes the result as f,
// which must be lossless.
func Obfuscate(data, carrier []byte, f Format) ([]byte, error) {
	if !f.Lossless() {
		return nil, fmt.Errorf("%w: %v", ErrLossyFormat, f)
	}

	img, _, err := Decode(carrier)
	if err != nil {
		return nil, err
	}

	out, err := Embed(img, data)
	if err != nil {
		return nil, err
	}

	return Encode(out, f)
}

// Deobfuscate decodes a carrier image and extracts its payload.
func Deobfuscate(carrier []byte) ([]byte, error) {
	img, _, err := Decode(carrier)
	if err != nil {
		return nil, err
	}
	return Extract(img)
}
