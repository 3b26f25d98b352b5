package analysis

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrInvalidClusters is returned when the requested cluster count is below 1.
var ErrInvalidClusters = errors.New("cluster count must be at least 1")

// ErrInvalidSampleSize is returned when the requested sample size is below 1.
var ErrInvalidSampleSize = errors.New("sample size must be at least 1")

// ErrInsufficientData is returned when a region contains no pixels at all.
var ErrInsufficientData = errors.New("region contains no pixels")

// DominantColor reduces a pixel region to its single most prevalent color.
//
// The region is supplied as a flat list of per-pixel color vectors (any
// perceptually uniform space; all vectors must share one dimensionality).
// A uniform random sample of up to sampleSize pixels is drawn, k-means
// clustering with nClusters centroids is run on the sample, and the centroid
// of the most populous cluster is returned. Picking the dominant cluster
// rather than the mean of all pixels keeps the result on a visually
// prevalent color instead of a blend of disparate ones.
//
// When the region holds fewer pixels than nClusters, the cluster count is
// reduced to the pixel count. Only an empty region fails, with
// ErrInsufficientData.
//
// rng drives sampling and centroid seeding; pass a fixed-seed source for
// reproducible results. A nil rng falls back to a time-seeded source.
func DominantColor(pixels [][]float64, nClusters, sampleSize int, rng *rand.Rand) ([]float64, error) {
	if nClusters < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidClusters, nClusters)
	}
	if sampleSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleSize, sampleSize)
	}
	if len(pixels) == 0 {
		return nil, ErrInsufficientData
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Uniform random permutation, then a prefix of the requested size.
	// Only the slice is permuted; pixel vectors are never mutated.
	sample := make([][]float64, len(pixels))
	copy(sample, pixels)
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	k := nClusters
	if k > len(sample) {
		k = len(sample)
	}

	centroids, counts := kmeans(sample, k, rng)

	dominant := 0
	for i, n := range counts {
		if n > counts[dominant] {
			dominant = i
		}
	}
	return centroids[dominant], nil
}
