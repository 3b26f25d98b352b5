package matching

import (
	"container/heap"
	"sort"
)

// kdNode is a node of a k-d tree over the index's vector storage. Nodes hold
// positions into the parallel slices rather than the vectors themselves.
type kdNode struct {
	idx   int
	axis  int
	left  *kdNode
	right *kdNode
}

// buildTree constructs a balanced k-d tree by median split, cycling the
// split axis with depth.
func buildTree(vectors [][]float64) *kdNode {
	idxs := make([]int, len(vectors))
	for i := range idxs {
		idxs[i] = i
	}
	return buildNode(idxs, vectors, 0)
}

func buildNode(idxs []int, vectors [][]float64, depth int) *kdNode {
	if len(idxs) == 0 {
		return nil
	}
	axis := depth % len(vectors[0])
	sort.Slice(idxs, func(i, j int) bool {
		a, b := vectors[idxs[i]][axis], vectors[idxs[j]][axis]
		if a == b {
			return idxs[i] < idxs[j]
		}
		return a < b
	})
	median := len(idxs) / 2
	return &kdNode{
		idx:   idxs[median],
		axis:  axis,
		left:  buildNode(idxs[:median], vectors, depth+1),
		right: buildNode(idxs[median+1:], vectors, depth+1),
	}
}

// neighbor pairs a storage position with its squared distance to the query.
type neighbor struct {
	idx  int
	dist float64
}

// closer orders neighbors by squared distance, then by storage position so
// that equidistant candidates resolve to the earliest insertion.
func closer(a, b neighbor) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.idx < b.idx
}

// neighborHeap is a max-heap keeping the k best neighbors seen so far; the
// worst of them sits at the root and is evicted first.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return closer(h[j], h[i]) }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// nearest returns the k nearest neighbors of query, ascending by squared
// distance with ties broken by lowest storage position. k must not exceed
// the number of stored vectors.
func (n *kdNode) nearest(vectors [][]float64, query []float64, k int) []neighbor {
	h := make(neighborHeap, 0, k)
	n.search(vectors, query, k, &h)

	result := make([]neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(neighbor)
	}
	return result
}

func (n *kdNode) search(vectors [][]float64, query []float64, k int, h *neighborHeap) {
	cand := neighbor{idx: n.idx, dist: sqDist(vectors[n.idx], query)}
	if h.Len() < k {
		heap.Push(h, cand)
	} else if closer(cand, (*h)[0]) {
		heap.Pop(h)
		heap.Push(h, cand)
	}

	axisDist := query[n.axis] - vectors[n.idx][n.axis]
	first, second := n.left, n.right
	if axisDist >= 0 {
		first, second = n.right, n.left
	}
	if first != nil {
		first.search(vectors, query, k, h)
	}
	// The far side may still hold an equidistant candidate with a lower
	// position, so prune only on a strictly greater plane distance.
	if second != nil && (h.Len() < k || axisDist*axisDist <= (*h)[0].dist) {
		second.search(vectors, query, k, h)
	}
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
