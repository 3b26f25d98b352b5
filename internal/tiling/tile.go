package tiling

import "image"

// Tile represents a rectangular sub-region of the target image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
//
// Tiles are immutable once produced by Partition.
type Tile struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Width returns the horizontal extent of the tile in pixels.
func (t Tile) Width() int {
	return t.X2 - t.X1
}

// Height returns the vertical extent of the tile in pixels.
func (t Tile) Height() int {
	return t.Y2 - t.Y1
}

// Center returns the (x, y) midpoint of the tile, using integer division.
func (t Tile) Center() (int, int) {
	return (t.X1 + t.X2) / 2, (t.Y1 + t.Y2) / 2
}

// Rect converts the tile to a standard image.Rectangle.
func (t Tile) Rect() image.Rectangle {
	return image.Rect(t.X1, t.Y1, t.X2, t.Y2)
}

// subdivide splits the tile into its four equal quadrants.
//
// The traversal order is fixed: top-left, top-right, bottom-left,
// bottom-right. Callers rely on this order to keep partition output
// deterministic.
func (t Tile) subdivide() [4]Tile {
	halfW := t.Width() / 2
	halfH := t.Height() / 2
	var quads [4]Tile
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			quads[i] = Tile{
				X1: t.X1 + x*halfW,
				Y1: t.Y1 + y*halfH,
				X2: t.X1 + (x+1)*halfW,
				Y2: t.Y1 + (y+1)*halfH,
			}
			i++
		}
	}
	return quads
}
