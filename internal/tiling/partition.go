package tiling

import (
	"errors"
	"fmt"
)

// ErrIndivisibleGrid is returned when an image dimension is not evenly
// divisible by the corresponding grid dimension times 2^depth. Subdivision
// must always produce integer-sized sub-tiles.
var ErrIndivisibleGrid = errors.New("image dimensions must be evenly divisible by the subdivided grid")

// ErrInvalidGrid is returned for non-positive extents or grid dimensions.
var ErrInvalidGrid = errors.New("invalid partition configuration")

// SplitFunc decides whether a tile that lies fully inside the mask (or any
// tile, when no mask is given) should still be subdivided. It is the hook
// for content-driven refinement such as high-contrast splitting.
type SplitFunc func(Tile) bool

type options struct {
	mask  *Mask
	depth int
	split SplitFunc
}

// Option configures Partition.
type Option func(*options)

// WithMask restricts the partition to tiles overlapping the mask and
// enables boundary-hugging refinement when combined with WithDepth.
func WithMask(m *Mask) Option {
	return func(o *options) { o.mask = m }
}

// WithDepth sets the maximum number of times a tile can be subdivided.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// WithSplitter installs a content-driven subdivision predicate, consulted at
// each refinement level for tiles that do not straddle the mask boundary.
func WithSplitter(fn SplitFunc) Option {
	return func(o *options) { o.split = fn }
}

// Partition divides a width x height image extent into a rows x cols grid of
// equal rectangular tiles, returned in row-major order.
//
// When a mask is supplied, tiles fully outside the mask are discarded. When
// depth > 0, each refinement level subdivides every tile that straddles the
// mask boundary (or that the splitter elects) into four equal quadrants,
// replacing the parent in place; quadrants fully outside the mask are
// discarded. Quadrant order is top-left, top-right, bottom-left,
// bottom-right.
//
// Each image dimension must be evenly divisible by the corresponding grid
// dimension times 2^depth, otherwise ErrIndivisibleGrid is returned.
func Partition(width, height, rows, cols int, opts ...Option) ([]Tile, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: extent %dx%d", ErrInvalidGrid, width, height)
	}
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidGrid, rows, cols)
	}
	if o.depth < 0 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidGrid, o.depth)
	}
	if o.mask != nil && (o.mask.Width() != width || o.mask.Height() != height) {
		return nil, fmt.Errorf("%w: mask extent %dx%d does not match image extent %dx%d",
			ErrInvalidGrid, o.mask.Width(), o.mask.Height(), width, height)
	}
	if height%(rows<<o.depth) != 0 {
		return nil, fmt.Errorf("%w: height %d not divisible by %d*2^%d",
			ErrIndivisibleGrid, height, rows, o.depth)
	}
	if width%(cols<<o.depth) != 0 {
		return nil, fmt.Errorf("%w: width %d not divisible by %d*2^%d",
			ErrIndivisibleGrid, width, cols, o.depth)
	}

	tileH := height / rows
	tileW := width / cols
	tiles := make([]Tile, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			tiles = append(tiles, Tile{
				X1: x * tileW,
				Y1: y * tileH,
				X2: (x + 1) * tileW,
				Y2: (y + 1) * tileH,
			})
		}
	}

	// Discard tiles fully outside the mask before any refinement.
	if o.mask != nil {
		kept := tiles[:0]
		for _, t := range tiles {
			if o.mask.AnyIn(t) {
				kept = append(kept, t)
			}
		}
		tiles = kept
	}

	for level := 0; level < o.depth; level++ {
		next := make([]Tile, 0, len(tiles))
		for _, t := range tiles {
			switch {
			case o.mask != nil && o.mask.straddles(t):
				for _, quad := range t.subdivide() {
					if o.mask.AnyIn(quad) {
						next = append(next, quad)
					}
				}
			case o.split != nil && o.split(t):
				for _, quad := range t.subdivide() {
					if o.mask == nil || o.mask.AnyIn(quad) {
						next = append(next, quad)
					}
				}
			default:
				next = append(next, t)
			}
		}
		tiles = next
	}

	return tiles, nil
}
