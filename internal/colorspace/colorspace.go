// Package colorspace converts raw image pixels into a perceptually uniform
// representation before any color-distance computation.
//
// The engine never compares raw RGB values: numeric distance in RGB is a
// poor proxy for perceived color difference. Pixels are converted to CIE
// L*a*b*, where Euclidean distance approximates perceptual difference.
// Alpha channels are dropped.
package colorspace

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// Dims is the channel count of the perceptual space (L, a, b).
const Dims = 3

// ToVectors flattens region r of img into a list of per-pixel L*a*b*
// vectors in row-major order. The region is clipped to the image bounds.
func ToVectors(img image.Image, r image.Rectangle) [][]float64 {
	r = r.Intersect(img.Bounds())
	out := make([][]float64, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out = append(out, PixelVector(img, x, y))
		}
	}
	return out
}

// PixelVector converts the pixel at (x, y) to its L*a*b* vector.
// Fully transparent pixels map to black.
func PixelVector(img image.Image, x, y int) []float64 {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return []float64{0, 0, 0}
	}
	l, a, b := c.Lab()
	return []float64{l, a, b}
}
