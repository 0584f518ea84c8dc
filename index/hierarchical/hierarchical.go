// Package hierarchical provides a forest of clustering trees whose cluster
// centers are points of the data set. It only relies on the distance
// adapter, so any element type and metric can be indexed.
package hierarchical

import (
	"math"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/bitmap"
	"github.com/hupe1980/nnsearch/internal/dataset"
	ikmeans "github.com/hupe1980/nnsearch/internal/kmeans"
	"github.com/hupe1980/nnsearch/internal/queue"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

// Compile-time check to ensure Index satisfies the index interface.
var _ index.Index[string] = (*Index[string])(nil)

type node struct {
	pivot    int
	children []*node
	ids      []int
}

func (n *node) leaf() bool { return len(n.children) == 0 }

// Index is a forest of trees built by recursively assigning points to the
// nearest of Branching centers drawn from the points themselves.
type Index[E any] struct {
	dist        distance.Adapter[E]
	points      *dataset.Points[E]
	params      index.HierarchicalClusteringParams
	roots       []*node
	rngs        []*rand.Rand
	sizeAtBuild int
}

// New builds the forest over points. Trees are built one at a time unless
// params.BuildWorkers is above one, in which case the distance adapter must
// be safe for concurrent use.
func New[E any](points []E, dist distance.Adapter[E], params index.HierarchicalClusteringParams) (*Index[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	h := &Index[E]{
		dist:   dist,
		points: dataset.New(points),
		params: params.WithDefaults(),
	}
	if err := h.build(); err != nil {
		return nil, err
	}
	return h, nil
}

func (*Index[E]) Algorithm() index.Algorithm { return index.AlgorithmHierarchicalClustering }

func (h *Index[E]) distance(a, b int) float64 {
	return h.dist.Distance(h.points.At(a), h.points.At(b))
}

func (h *Index[E]) build() error {
	ids := h.points.Active()
	roots := make([]*node, h.params.Trees)
	rngs := make([]*rand.Rand, h.params.Trees)

	g := new(errgroup.Group)
	g.SetLimit(h.params.BuildWorkers)
	for t := range roots {
		g.Go(func() error {
			rngs[t] = rand.New(rand.NewSource(h.params.Seed + int64(t)))
			if len(ids) > 0 {
				roots[t] = &node{pivot: -1}
				h.computeClustering(roots[t], slices.Clone(ids), rngs[t])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	h.roots, h.rngs = roots, rngs
	h.sizeAtBuild = h.points.Size()
	return nil
}

func (h *Index[E]) computeClustering(n *node, ids []int, rng *rand.Rand) {
	n.children, n.ids = nil, nil
	if len(ids) < h.params.LeafMaxSize {
		n.ids = ids
		return
	}

	centers := ikmeans.ChooseCenters(ikmeans.Init(h.params.CentersInit), h.params.Branching, ids, h.distance, rng)
	if len(centers) < h.params.Branching {
		n.ids = ids
		return
	}

	subsets := make([][]int, len(centers))
	for _, id := range ids {
		best, bestDist := 0, math.Inf(1)
		for j, c := range centers {
			if d := h.distance(id, c); d < bestDist {
				best, bestDist = j, d
			}
		}
		subsets[best] = append(subsets[best], id)
	}

	for j, c := range centers {
		child := &node{pivot: c}
		n.children = append(n.children, child)
		h.computeClustering(child, subsets[j], rng)
	}
}

// AddPoints descends each point to the leaf under its nearest centers in
// every tree, re-clustering leaves that reach LeafMaxSize.
func (h *Index[E]) AddPoints(points []E, rebuildThreshold float64) error {
	first := h.points.Append(points)
	if rebuildThreshold > 1 && float64(h.sizeAtBuild)*rebuildThreshold < float64(h.points.Size()) {
		return h.build()
	}
	for id := first; id < h.points.Len(); id++ {
		for t := range h.roots {
			h.addPointToTree(t, id)
		}
	}
	return nil
}

func (h *Index[E]) addPointToTree(t, id int) {
	if h.roots[t] == nil {
		h.roots[t] = &node{pivot: -1, ids: []int{id}}
		return
	}
	n := h.roots[t]
	for !n.leaf() {
		best, bestDist := n.children[0], math.Inf(1)
		for _, c := range n.children {
			if d := h.distance(id, c.pivot); d < bestDist {
				best, bestDist = c, d
			}
		}
		n = best
	}
	n.ids = append(n.ids, id)
	if len(n.ids) >= h.params.LeafMaxSize {
		h.computeClustering(n, n.ids, h.rngs[t])
	}
}

func (h *Index[E]) RemovePoint(id int) error { return h.points.Remove(id) }

func (h *Index[E]) Point(id int) (*E, error) { return h.points.Point(id) }

func (h *Index[E]) Size() int { return h.points.Size() }

// KNNSearch returns up to k neighbors. params.Checks bounds the number of
// points compared; index.Unlimited compares every point.
func (h *Index[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, h.points.Size()))
	h.search(query, set, params)
	return set.Results(), nil
}

// RadiusSearch returns the neighbors within radius.
func (h *Index[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	h.search(query, set, params)
	return set.Results(params.Sorted), nil
}

func (h *Index[E]) search(query E, set resultset.Set, params index.SearchParams) {
	if len(h.roots) == 0 || h.roots[0] == nil || h.points.Size() == 0 {
		return
	}
	s := &forestSearch[E]{h: h, query: query, set: set}

	// Pivots carry no bound on their cluster, so exact search visits every
	// leaf of one tree.
	if params.IsExact() {
		s.visitAll(h.roots[0])
		return
	}

	s.maxChecks = params.Checks
	s.checked = bitmap.New()
	s.branches = queue.NewMin(64)
	for _, root := range h.roots {
		s.findNN(root)
	}
	for s.branches.Len() > 0 && (s.checks < s.maxChecks || !set.Full()) {
		b, _ := s.branches.Pop()
		s.findNN(s.pending[b.ID])
	}
}

type forestSearch[E any] struct {
	h     *Index[E]
	query E
	set   resultset.Set

	maxChecks int
	checks    int
	checked   *bitmap.Set
	branches  *queue.PriorityQueue
	pending   []*node
}

func (s *forestSearch[E]) visitAll(n *node) {
	if n.leaf() {
		for _, id := range n.ids {
			if !s.h.points.IsRemoved(id) {
				s.set.Add(id, s.h.dist.Distance(s.query, s.h.points.At(id)))
			}
		}
		return
	}
	for _, c := range n.children {
		s.visitAll(c)
	}
}

func (s *forestSearch[E]) findNN(n *node) {
	for !n.leaf() {
		dists := make([]float64, len(n.children))
		best := 0
		for i, c := range n.children {
			dists[i] = s.h.dist.Distance(s.query, s.h.points.At(c.pivot))
			if dists[i] < dists[best] {
				best = i
			}
		}
		for i, c := range n.children {
			if i != best {
				s.pending = append(s.pending, c)
				s.branches.Push(queue.Item{ID: len(s.pending) - 1, Distance: dists[i]})
			}
		}
		n = n.children[best]
	}

	if s.checks >= s.maxChecks && s.set.Full() {
		return
	}
	for _, id := range n.ids {
		if s.h.points.IsRemoved(id) || !s.checked.CheckedAdd(id) {
			continue
		}
		s.set.Add(id, s.h.dist.Distance(s.query, s.h.points.At(id)))
		s.checks++
	}
}
