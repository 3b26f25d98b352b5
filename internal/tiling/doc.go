// Package tiling partitions a target image extent into rectangular tiles.
//
// The partitioner produces a base grid of equal tiles in row-major order and
// optionally refines it against a binary mask: tiles fully outside the mask
// are discarded, and tiles straddling the mask boundary are subdivided into
// quadrants up to a configured depth, so the tile layout hugs the mask edge.
//
// # Coordinate System
//
// Tiles use half-open pixel ranges with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Tiles produced from one
// partition call are pairwise non-overlapping and lie within the extent.
//
// # Thread Safety
//
// Tiles and masks are plain value containers. Partition allocates fresh
// tiles per call; masks must not be mutated while a partition that uses
// them is in progress.
package tiling
