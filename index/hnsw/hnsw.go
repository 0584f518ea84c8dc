// Package hnsw implements the Hierarchical Navigable Small World graph for
// approximate nearest neighbor search under any distance adapter.
package hnsw

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/bitmap"
	"github.com/hupe1980/nnsearch/internal/dataset"
	"github.com/hupe1980/nnsearch/internal/queue"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

const (
	// mmax0Multiplier is the multiplier for calculating maximum connections at layer 0.
	mmax0Multiplier = 2
)

// Compile-time check to ensure HNSW satisfies the index interface.
var _ index.Index[[]float64] = (*HNSW[[]float64])(nil)

// node holds the links of a point on every layer it belongs to.
type node struct {
	links [][]int
}

func (n *node) level() int { return len(n.links) - 1 }

// HNSW is a layered proximity graph. Removed points stay in the graph for
// navigation and are excluded from results.
type HNSW[E any] struct {
	dist   distance.Adapter[E]
	points *dataset.Points[E]
	params index.HNSWParams

	nodes      []*node
	entryPoint int
	maxLevel   int

	maxConnectionsPerLayer int
	maxConnectionsLayer0   int
	layerMultiplier        float64
	rng                    *rand.Rand
	sizeAtBuild            int

	// visited holds *bitmap.Set values reused across layer searches.
	visited sync.Pool
}

// New builds a graph over points.
func New[E any](points []E, dist distance.Adapter[E], params index.HNSWParams) (*HNSW[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.WithDefaults()
	h := &HNSW[E]{
		dist:                   dist,
		points:                 dataset.New(points),
		params:                 params,
		maxConnectionsPerLayer: params.M,
		maxConnectionsLayer0:   params.M * mmax0Multiplier,
		layerMultiplier:        1 / math.Log(float64(params.M)),
	}
	h.visited.New = func() any { return bitmap.New() }
	h.build()
	return h, nil
}

func (*HNSW[E]) Algorithm() index.Algorithm { return index.AlgorithmHNSW }

func (h *HNSW[E]) build() {
	h.rng = rand.New(rand.NewSource(h.params.Seed))
	h.nodes = make([]*node, h.points.Len())
	h.entryPoint, h.maxLevel = -1, -1
	for _, id := range h.points.Active() {
		h.insert(id)
	}
	h.sizeAtBuild = h.points.Size()
}

// AddPoints links new points into the graph, or rebuilds it over the
// remaining points once it has grown past rebuildThreshold times its size at
// the last build.
func (h *HNSW[E]) AddPoints(points []E, rebuildThreshold float64) error {
	first := h.points.Append(points)
	if rebuildThreshold > 1 && float64(h.sizeAtBuild)*rebuildThreshold < float64(h.points.Size()) {
		h.build()
		return nil
	}
	h.nodes = append(h.nodes, make([]*node, h.points.Len()-len(h.nodes))...)
	for id := first; id < h.points.Len(); id++ {
		h.insert(id)
	}
	return nil
}

func (h *HNSW[E]) randomLevel() int {
	return int(math.Floor(-math.Log(1-h.rng.Float64()) * h.layerMultiplier))
}

func (h *HNSW[E]) distTo(q E, id int) float64 {
	return h.dist.Distance(q, h.points.At(id))
}

func (h *HNSW[E]) insert(id int) {
	layer := h.randomLevel()
	h.nodes[id] = &node{links: make([][]int, layer+1)}

	if h.entryPoint < 0 {
		h.entryPoint, h.maxLevel = id, layer
		return
	}

	q := h.points.At(id)
	currID := h.entryPoint
	currDist := h.distTo(q, currID)

	// 1. Greedy search from top to layer + 1
	for level := h.maxLevel; level > layer; level-- {
		currID, currDist = h.greedy(q, currID, currDist, level)
	}

	// 2. Search and link from layer down to 0
	for level := min(layer, h.maxLevel); level >= 0; level-- {
		candidates := h.searchLayer(q, currID, currDist, level, h.params.EfConstruction, false)

		maxConns := h.maxConnectionsPerLayer
		if level == 0 {
			maxConns = h.maxConnectionsLayer0
		}

		items := ascending(candidates)
		currID, currDist = items[0].ID, items[0].Distance

		neighbors := h.selectNeighbors(items, maxConns)
		h.nodes[id].links[level] = neighbors
		for _, n := range neighbors {
			h.addConnection(n, id, level)
		}
	}

	if layer > h.maxLevel {
		h.entryPoint, h.maxLevel = id, layer
	}
}

func (h *HNSW[E]) greedy(q E, currID int, currDist float64, level int) (int, float64) {
	changed := true
	for changed {
		changed = false
		for _, next := range h.nodes[currID].links[level] {
			if d := h.distTo(q, next); d < currDist {
				currID, currDist = next, d
				changed = true
			}
		}
	}
	return currID, currDist
}

// ascending drains a max-heap into a slice ordered nearest first.
func ascending(pq *queue.PriorityQueue) []queue.Item {
	items := make([]queue.Item, pq.Len())
	for i := len(items) - 1; i >= 0; i-- {
		items[i], _ = pq.Pop()
	}
	return items
}

func (h *HNSW[E]) selectNeighbors(candidates []queue.Item, m int) []int {
	if h.params.SimpleSelection || len(candidates) <= m {
		return selectNeighborsSimple(candidates, m)
	}
	return h.selectNeighborsHeuristic(candidates, m)
}

func selectNeighborsSimple(candidates []queue.Item, m int) []int {
	res := make([]int, 0, min(m, len(candidates)))
	for _, c := range candidates[:min(m, len(candidates))] {
		res = append(res, c.ID)
	}
	return res
}

// selectNeighborsHeuristic keeps a candidate only if it is closer to the
// source than to every neighbor selected so far, then fills up with the
// closest rejected candidates.
func (h *HNSW[E]) selectNeighborsHeuristic(candidates []queue.Item, m int) []int {
	result := make([]int, 0, m)
	for _, cand := range candidates {
		if len(result) >= m {
			break
		}
		good := true
		for _, r := range result {
			if h.dist.Distance(h.points.At(cand.ID), h.points.At(r)) < cand.Distance {
				good = false
				break
			}
		}
		if good {
			result = append(result, cand.ID)
		}
	}

	for _, cand := range candidates {
		if len(result) >= m {
			break
		}
		if !slices.Contains(result, cand.ID) {
			result = append(result, cand.ID)
		}
	}
	return result
}

func (h *HNSW[E]) addConnection(sourceID, targetID, level int) {
	conns := h.nodes[sourceID].links[level]
	if slices.Contains(conns, targetID) {
		return
	}

	maxM := h.maxConnectionsPerLayer
	if level == 0 {
		maxM = h.maxConnectionsLayer0
	}
	if len(conns) < maxM {
		h.nodes[sourceID].links[level] = append(conns, targetID)
		return
	}

	// Pruning always keeps diverse links, even under simple selection:
	// dropping the farthest link first cuts clusters apart.
	source := h.points.At(sourceID)
	candidates := queue.NewMax(len(conns) + 1)
	for _, c := range conns {
		candidates.Push(queue.Item{ID: c, Distance: h.distTo(source, c)})
	}
	candidates.Push(queue.Item{ID: targetID, Distance: h.distTo(source, targetID)})
	h.nodes[sourceID].links[level] = h.selectNeighborsHeuristic(ascending(candidates), maxM)
}

// searchLayer returns a max-heap of the ef closest nodes found on level.
// With skipRemoved, removed nodes are traversed but not returned.
func (h *HNSW[E]) searchLayer(q E, epID int, epDist float64, level, ef int, skipRemoved bool) *queue.PriorityQueue {
	visited := h.visited.Get().(*bitmap.Set)
	visited.Clear()
	defer h.visited.Put(visited)

	candidates := queue.NewMin(ef)
	results := queue.NewMax(ef + 1)

	visited.Add(epID)
	candidates.Push(queue.Item{ID: epID, Distance: epDist})
	if !skipRemoved || !h.points.IsRemoved(epID) {
		results.Push(queue.Item{ID: epID, Distance: epDist})
	}

	for candidates.Len() > 0 {
		curr, _ := candidates.Pop()
		if worst, ok := results.Top(); ok && results.Len() >= ef && curr.Distance > worst.Distance {
			break
		}

		for _, next := range h.nodes[curr.ID].links[level] {
			if !visited.CheckedAdd(next) {
				continue
			}

			d := h.distTo(q, next)
			if worst, ok := results.Top(); ok && results.Len() >= ef && d > worst.Distance {
				continue
			}
			candidates.Push(queue.Item{ID: next, Distance: d})
			if !skipRemoved || !h.points.IsRemoved(next) {
				results.Push(queue.Item{ID: next, Distance: d})
				if results.Len() > ef {
					_, _ = results.Pop()
				}
			}
		}
	}
	return results
}

func (h *HNSW[E]) RemovePoint(id int) error { return h.points.Remove(id) }

func (h *HNSW[E]) Point(id int) (*E, error) { return h.points.Point(id) }

func (h *HNSW[E]) Size() int { return h.points.Size() }

// KNNSearch returns up to k neighbors. The candidate list holds
// max(params.Checks, k) nodes; index.Unlimited scans every point.
func (h *HNSW[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, h.points.Size()))
	h.search(query, set, max(params.Checks, k), params)
	return set.Results(), nil
}

// RadiusSearch returns the neighbors within radius among the
// params.Checks closest nodes found.
func (h *HNSW[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	h.search(query, set, max(params.Checks, 1), params)
	return set.Results(params.Sorted), nil
}

func (h *HNSW[E]) search(query E, set resultset.Set, ef int, params index.SearchParams) {
	if h.entryPoint < 0 || h.points.Size() == 0 {
		return
	}

	if params.IsExact() {
		for id := range h.points.Len() {
			if !h.points.IsRemoved(id) {
				set.Add(id, h.distTo(query, id))
			}
		}
		return
	}

	// 1. Greedy to layer 0
	currID := h.entryPoint
	currDist := h.distTo(query, currID)
	for level := h.maxLevel; level > 0; level-- {
		currID, currDist = h.greedy(query, currID, currDist, level)
	}

	// 2. Search layer 0
	for _, item := range h.searchLayer(query, currID, currDist, 0, ef, true).Items() {
		set.Add(item.ID, item.Distance)
	}
}
