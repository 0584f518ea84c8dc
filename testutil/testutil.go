package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates random points with coordinates in [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int) [][]float64 {
	return r.UniformRangePoints(num, dim, 0, 1)
}

// UniformRangePoints generates random points with coordinates in [minVal, maxVal).
func (r *RNG) UniformRangePoints(num, dim int, minVal, maxVal float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)
	span := maxVal - minVal

	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = minVal + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// GaussianPoints generates points from a standard normal distribution.
func (r *RNG) GaussianPoints(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = r.rand.NormFloat64()
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points scattered around random centers in the
// unit cube. Useful for testing clustering indexes on non-uniform data.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) [][]float64 {
	centers := r.UniformPoints(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		center := centers[i%clusters]
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range dim {
			p[j] = center[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// Float32Points generates random float32 points with coordinates in [0, 1).
func (r *RNG) Float32Points(num, dim int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([][]float32, num)
	for i := range num {
		p := make([]float32, dim)
		for j := range p {
			p[j] = r.rand.Float32()
		}
		points[i] = p
	}
	return points
}

// ExactKNN performs exact search for ground truth.
func ExactKNN[E any](points []E, dist distance.Adapter[E], query E, k int) []index.Neighbor {
	all := make([]index.Neighbor, len(points))
	for i, p := range points {
		all[i] = index.Neighbor{ID: i, Distance: dist.Distance(query, p)}
	}
	index.SortNeighbors(all)
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// ExactRadius returns every point within radius of query, closest first.
func ExactRadius[E any](points []E, dist distance.Adapter[E], query E, radius float64) []index.Neighbor {
	var res []index.Neighbor
	for i, p := range points {
		if d := dist.Distance(query, p); d <= radius {
			res = append(res, index.Neighbor{ID: i, Distance: d})
		}
	}
	index.SortNeighbors(res)
	return res
}

// ComputeRecall computes recall@k by comparing approximate results against
// ground truth. Candidates tied with the k-th true distance count as hits.
func ComputeRecall(groundTruth, approximate []index.Neighbor) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))
	kth := groundTruth[k-1].Distance

	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.ID]; ok || r.Distance <= kth+1e-12*math.Max(1, kth) {
			hits++
		}
	}

	return math.Min(1, float64(hits)/float64(k))
}
