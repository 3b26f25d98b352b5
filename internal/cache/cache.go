// Package cache persists analyzed color vectors keyed by the arguments used
// to load the source image, so re-runs skip re-analysis.
package cache

// VectorCache maps loading arguments to previously computed color vectors.
// Implementations may be purely in-memory or backed by durable storage; the
// engine tolerates either.
type VectorCache interface {
	// Get returns the cached vector for key and whether it was present.
	Get(key string) ([]float64, bool, error)
	// Put stores the vector for key, replacing any previous value.
	Put(key string, vector []float64) error
	// Close releases any underlying resources.
	Close() error
}
