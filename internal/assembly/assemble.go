// Package assembly stitches matched candidate images into the tile grid of
// an output canvas.
package assembly

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/logicielsjpb/photomosaic/internal/tiling"
)

// Loader resolves a candidate identifier to its pixel content. It is the
// external collaborator that owns file formats and decoding.
type Loader interface {
	Load(id string) (image.Image, error)
}

// Assemble paints the matched candidate image into each tile's region of the
// canvas. Every candidate is center-cropped to the tile's aspect ratio and
// resized to its exact pixel dimensions before being written, overwriting
// prior canvas content there.
//
// tiles and matches are parallel; a length mismatch is a caller error and
// fails immediately. A candidate that fails to load aborts assembly with a
// surfaced error rather than leaving a canvas region silently unpainted.
//
// Tiles are assumed non-overlapping, as produced by tiling.Partition;
// overlap is a caller obligation and is not validated here.
func Assemble(canvas draw.Image, tiles []tiling.Tile, matches []string, loader Loader) error {
	if len(tiles) != len(matches) {
		return fmt.Errorf("tiles and matches length mismatch: %d vs %d", len(tiles), len(matches))
	}
	for i, t := range tiles {
		src, err := loader.Load(matches[i])
		if err != nil {
			return fmt.Errorf("tile (%d,%d)-(%d,%d): load %q: %w", t.X1, t.Y1, t.X2, t.Y2, matches[i], err)
		}
		fitted := imaging.Fill(src, t.Width(), t.Height(), imaging.Center, imaging.Lanczos)
		draw.Draw(canvas, t.Rect(), fitted, image.Point{}, draw.Src)
	}
	return nil
}
