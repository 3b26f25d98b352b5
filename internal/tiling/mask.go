package tiling

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// Mask is a 2-D boolean grid matching the target image's extent.
// True marks pixels that belong to the region of interest.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// NewMask creates an all-false mask with the given extent.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// MaskFromImage builds a mask by thresholding the image's luminance.
// Pixels whose luminance is at or above level become true.
func MaskFromImage(img image.Image, level uint8) *Mask {
	gray := segment.Threshold(img, level)
	bounds := gray.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 0 {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Width returns the horizontal extent of the mask.
func (m *Mask) Width() int { return m.width }

// Height returns the vertical extent of the mask.
func (m *Mask) Height() int { return m.height }

// At reports whether the pixel at (x, y) is inside the mask.
// Out-of-bounds coordinates are outside.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set marks the pixel at (x, y). Out-of-bounds coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = v
}

// SetRect marks every pixel inside r.
func (m *Mask) SetRect(r image.Rectangle, v bool) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, v)
		}
	}
}

// AnyIn reports whether the tile's region contains at least one true pixel.
func (m *Mask) AnyIn(t Tile) bool {
	for y := t.Y1; y < t.Y2; y++ {
		for x := t.X1; x < t.X2; x++ {
			if m.At(x, y) {
				return true
			}
		}
	}
	return false
}

// AllIn reports whether every pixel in the tile's region is true.
func (m *Mask) AllIn(t Tile) bool {
	for y := t.Y1; y < t.Y2; y++ {
		for x := t.X1; x < t.X2; x++ {
			if !m.At(x, y) {
				return false
			}
		}
	}
	return true
}

// straddles reports whether the tile crosses the mask boundary, i.e. its
// region contains both true and false pixels.
func (m *Mask) straddles(t Tile) bool {
	return m.AnyIn(t) && !m.AllIn(t)
}
