package image

import (
	"image"
	"image/color"
	"image/draw"
)

// Default blank carrier sizes, used when no carrier file is given.
const (
	BlankSize    = 64
	BlankBigSize = 1024
)

// Blank returns a solid white width x height image.
func Blank(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// BlankCarrier returns an encoded solid white square image.
func BlankCarrier(size int, f Format) ([]byte, error) {
	return Encode(Blank(size, size), f)
}
