package tiling

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DrawTiles draws tile boundary outlines and a dot at each tile center onto
// a copy of img. The input image is never mutated.
//
// This is a utility for visually inspecting a tile layout.
func DrawTiles(img image.Image, tiles []Tile, c color.Color) *image.NRGBA {
	annotated := imaging.Clone(img)
	for _, t := range tiles {
		// Edges stay inside the half-open tile region.
		for x := t.X1; x < t.X2; x++ {
			annotated.Set(x, t.Y1, c)
			annotated.Set(x, t.Y2-1, c)
		}
		for y := t.Y1; y < t.Y2; y++ {
			annotated.Set(t.X1, y, c)
			annotated.Set(t.X2-1, y, c)
		}
		cx, cy := t.Center()
		annotated.Set(cx, cy, c)
	}
	return annotated
}
