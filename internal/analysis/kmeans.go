package analysis

import (
	"math"
	"math/rand"
)

const (
	maxIterations = 20
	// Average centroid movement below this is treated as converged.
	convergence = 1e-4
)

// kmeans runs Lloyd's algorithm with k-means++ seeding over the sample and
// returns the final centroids together with the assignment count of each
// cluster. len(points) >= k >= 1 is the caller's responsibility.
func kmeans(points [][]float64, k int, rng *rand.Rand) ([][]float64, []int) {
	dims := len(points[0])
	centroids := seedCentroids(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < maxIterations; iter++ {
		changed := 0
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if iter > 0 && changed == 0 {
			break
		}

		next := recomputeCentroids(points, assignments, k, dims, rng)

		var movement float64
		for i := range centroids {
			movement += euclidean(centroids[i], next[i])
		}
		centroids = next
		if movement/float64(k) < convergence {
			break
		}
	}

	// Final assignment pass so counts reflect the returned centroids.
	counts := make([]int, k)
	for _, p := range points {
		counts[nearestCentroid(p, centroids)]++
	}
	return centroids, counts
}

// seedCentroids picks initial centroids with the k-means++ strategy: the
// first uniformly at random, the rest with probability proportional to the
// squared distance from the nearest centroid chosen so far.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneVector(points[rng.Intn(len(points))]))

	distances := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			min := math.MaxFloat64
			for _, c := range centroids {
				if d := sqEuclidean(p, c); d < min {
					min = d
				}
			}
			distances[i] = min
			total += min
		}

		if total == 0 {
			// All remaining points coincide with existing centroids.
			centroids = append(centroids, cloneVector(centroids[len(centroids)-1]))
			continue
		}

		target := rng.Float64() * total
		var cumulative float64
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				centroids = append(centroids, cloneVector(points[i]))
				break
			}
		}
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid, breaking
// distance ties by the lowest index.
func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := sqEuclidean(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := sqEuclidean(p, centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func recomputeCentroids(points [][]float64, assignments []int, k, dims int, rng *rand.Rand) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make([]float64, dims)
	}
	for i, p := range points {
		cluster := assignments[i]
		for d, v := range p {
			sums[cluster][d] += v
		}
		counts[cluster]++
	}

	centroids := make([][]float64, k)
	for i := range centroids {
		if counts[i] == 0 {
			// Empty cluster: reseed from a random point.
			centroids[i] = cloneVector(points[rng.Intn(len(points))])
			continue
		}
		c := make([]float64, dims)
		for d := range c {
			c[d] = sums[i][d] / float64(counts[i])
		}
		centroids[i] = c
	}
	return centroids
}

func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func euclidean(a, b []float64) float64 {
	return math.Sqrt(sqEuclidean(a, b))
}

func cloneVector(v []float64) []float64 {
	return append([]float64(nil), v...)
}
