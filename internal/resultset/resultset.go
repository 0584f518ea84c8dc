// Package resultset collects search candidates for k-nearest and radius
// queries behind one interface, so index traversals serve both.
package resultset

import (
	"math"

	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/queue"
)

// Set accumulates candidates during a traversal.
type Set interface {
	// Add offers a candidate.
	Add(id int, dist float64)

	// WorstDistance returns the distance a candidate must not exceed to be
	// accepted. Traversals prune branches farther than it.
	WorstDistance() float64

	// Full reports whether WorstDistance is a finite bound, so approximate
	// traversals may stop once their check budget is spent.
	Full() bool

	// Len returns the number of collected candidates.
	Len() int
}

// KNN keeps the k closest candidates in a bounded max-heap.
type KNN struct {
	k    int
	heap *queue.PriorityQueue
}

// NewKNN returns a set for the k closest candidates.
func NewKNN(k int) *KNN {
	return &KNN{k: k, heap: queue.NewMax(k)}
}

func (r *KNN) Add(id int, dist float64) {
	if r.k <= 0 {
		return
	}
	if r.heap.Len() < r.k {
		r.heap.Push(queue.Item{ID: id, Distance: dist})
		return
	}
	if top, _ := r.heap.Top(); dist < top.Distance {
		r.heap.Pop()
		r.heap.Push(queue.Item{ID: id, Distance: dist})
	}
}

func (r *KNN) WorstDistance() float64 {
	if r.heap.Len() < r.k {
		return math.Inf(1)
	}
	top, _ := r.heap.Top()
	return top.Distance
}

func (r *KNN) Full() bool { return r.heap.Len() >= r.k }

func (r *KNN) Len() int { return r.heap.Len() }

// Results returns the candidates closest first.
func (r *KNN) Results() []index.Neighbor {
	return collect(r.heap, true)
}

// Radius keeps every candidate within a radius, optionally capped to the
// closest maxNeighbors.
type Radius struct {
	radius float64
	max    int
	heap   *queue.PriorityQueue
}

// NewRadius returns a set for candidates within radius. A positive
// maxNeighbors caps the number of results.
func NewRadius(radius float64, maxNeighbors int) *Radius {
	return &Radius{radius: radius, max: maxNeighbors, heap: queue.NewMax(0)}
}

func (r *Radius) Add(id int, dist float64) {
	if dist > r.radius {
		return
	}
	if r.max > 0 && r.heap.Len() >= r.max {
		top, _ := r.heap.Top()
		if dist >= top.Distance {
			return
		}
		r.heap.Pop()
	}
	r.heap.Push(queue.Item{ID: id, Distance: dist})
}

func (r *Radius) WorstDistance() float64 {
	if r.max > 0 && r.heap.Len() >= r.max {
		top, _ := r.heap.Top()
		return top.Distance
	}
	return r.radius
}

// Full is always true: the radius bounds every traversal.
func (r *Radius) Full() bool { return true }

func (r *Radius) Len() int { return r.heap.Len() }

// Results returns the candidates, closest first when sorted is set.
func (r *Radius) Results(sorted bool) []index.Neighbor {
	return collect(r.heap, sorted)
}

func collect(pq *queue.PriorityQueue, sorted bool) []index.Neighbor {
	items := pq.Items()
	res := make([]index.Neighbor, len(items))
	for i, it := range items {
		res[i] = index.Neighbor{ID: it.ID, Distance: it.Distance}
	}
	if sorted {
		index.SortNeighbors(res)
	}
	return res
}
