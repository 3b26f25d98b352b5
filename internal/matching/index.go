package matching

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyIndex is returned when a query is issued against an index that
// holds no candidates.
var ErrEmptyIndex = errors.New("query issued against an empty index")

// ErrDimensionMismatch is returned when a vector's length does not match the
// dimensionality established by the first candidate added to the index.
var ErrDimensionMismatch = errors.New("vector dimensionality mismatch")

// Match is a single nearest-neighbor hit.
type Match struct {
	ID       string  `json:"id"`       // Candidate identifier
	Distance float64 `json:"distance"` // Euclidean distance to the query vector
}

// Index maps color vectors to candidate identifiers and answers
// nearest-neighbor queries under Euclidean distance.
//
// Identifiers and vectors live in parallel, insertion-ordered storage.
// Insertion order is semantically meaningful: equidistant candidates resolve
// to the one added first. Add never touches the spatial index; instead the
// index is marked stale and rebuilt wholesale on the next Query, so a burst
// of Add calls followed by one Query pays a single O(n log n) rebuild.
type Index struct {
	ids     []string
	vectors [][]float64
	dims    int
	tree    *kdNode
	stale   bool
}

// NewIndex creates an empty index. The vector dimensionality is fixed by the
// first Add.
func NewIndex() *Index {
	return &Index{}
}

// Len returns the number of candidates in the index.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Add appends a candidate to the pool and marks the spatial index stale.
// The vector is copied; the caller may reuse its slice.
func (ix *Index) Add(id string, vector []float64) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	if ix.dims == 0 {
		ix.dims = len(vector)
	} else if len(vector) != ix.dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), ix.dims)
	}
	ix.ids = append(ix.ids, id)
	ix.vectors = append(ix.vectors, append([]float64(nil), vector...))
	ix.stale = true
	return nil
}

// Query returns the k candidates nearest to vector, ordered by ascending
// distance with insertion order breaking ties. If fewer than k candidates
// exist, all of them are returned.
//
// A stale spatial index is rebuilt from the full current vector collection
// before the lookup; laziness is a performance optimization only and never
// changes results.
func (ix *Index) Query(vector []float64, k int) ([]Match, error) {
	if len(ix.ids) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(vector) != ix.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), ix.dims)
	}
	if k < 1 {
		k = 1
	}
	if k > len(ix.ids) {
		k = len(ix.ids)
	}

	if ix.stale || ix.tree == nil {
		ix.tree = buildTree(ix.vectors)
		ix.stale = false
	}

	nearest := ix.tree.nearest(ix.vectors, vector, k)
	matches := make([]Match, len(nearest))
	for i, n := range nearest {
		matches[i] = Match{ID: ix.ids[n.idx], Distance: math.Sqrt(n.dist)}
	}
	return matches, nil
}
