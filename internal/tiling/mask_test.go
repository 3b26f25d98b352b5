package tiling

import (
	"image"
	"image/color"
	"testing"
)

func TestMask_AtAndSet(t *testing.T) {
	m := NewMask(8, 4)

	if m.Width() != 8 || m.Height() != 4 {
		t.Fatalf("extent: got %dx%d, want 8x4", m.Width(), m.Height())
	}
	if m.At(3, 2) {
		t.Error("new mask should be all false")
	}

	m.Set(3, 2, true)
	if !m.At(3, 2) {
		t.Error("Set(3,2) not visible through At")
	}

	// Out of bounds is outside, and setting there is a no-op.
	if m.At(-1, 0) || m.At(8, 0) || m.At(0, 4) {
		t.Error("out-of-bounds At should be false")
	}
	m.Set(100, 100, true)
}

func TestMask_AnyInAllIn(t *testing.T) {
	m := NewMask(10, 10)
	m.SetRect(image.Rect(0, 0, 5, 10), true)

	inside := Tile{0, 0, 5, 10}
	outside := Tile{5, 0, 10, 10}
	edge := Tile{3, 0, 7, 10}

	if !m.AllIn(inside) || !m.AnyIn(inside) {
		t.Error("left half should be fully inside")
	}
	if m.AnyIn(outside) {
		t.Error("right half should be fully outside")
	}
	if !m.AnyIn(edge) || m.AllIn(edge) || !m.straddles(edge) {
		t.Error("edge tile should straddle the boundary")
	}
}

func TestMaskFromImage(t *testing.T) {
	// Left half white, right half black.
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x < 5 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}

	m := MaskFromImage(img, 128)
	if m.Width() != 10 || m.Height() != 10 {
		t.Fatalf("extent: got %dx%d, want 10x10", m.Width(), m.Height())
	}
	if !m.At(2, 5) {
		t.Error("white pixel should be inside the mask")
	}
	if m.At(7, 5) {
		t.Error("black pixel should be outside the mask")
	}
}
