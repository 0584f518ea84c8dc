// Package kmeans provides a hierarchical k-means tree index over points with
// Euclidean coordinates.
package kmeans

import (
	"cmp"
	"math"
	"math/rand"
	"slices"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/dataset"
	ikmeans "github.com/hupe1980/nnsearch/internal/kmeans"
	"github.com/hupe1980/nnsearch/internal/queue"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

// Compile-time check to ensure Tree satisfies the index interface.
var _ index.Index[[]float64] = (*Tree[[]float64])(nil)

// node is a cluster. Every point below it lies within radius of pivot.
type node struct {
	pivot    []float64
	radius   float64
	variance float64 // mean squared distance to pivot
	size     int
	children []*node
	ids      []int
}

func (n *node) leaf() bool { return len(n.children) == 0 }

// Tree recursively partitions the points into Branching clusters with
// Lloyd's algorithm until clusters are smaller than Branching.
type Tree[E any] struct {
	coords      distance.Coordinates[E]
	points      *dataset.Points[E]
	params      index.KMeansParams
	vecs        [][]float64
	root        *node
	rng         *rand.Rand
	sizeAtBuild int
}

// New builds a k-means tree over points.
func New[E any](points []E, coords distance.Coordinates[E], params index.KMeansParams) (*Tree[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	t := &Tree[E]{
		coords: coords,
		points: dataset.New(points),
		params: params.WithDefaults(),
	}
	t.appendVectors(0)
	t.build()
	return t, nil
}

func (*Tree[E]) Algorithm() index.Algorithm { return index.AlgorithmKMeans }

func (t *Tree[E]) appendVectors(first int) {
	for id := first; id < t.points.Len(); id++ {
		t.vecs = append(t.vecs, distance.Vector(t.coords, t.points.At(id), nil))
	}
}

func (t *Tree[E]) build() {
	t.rng = rand.New(rand.NewSource(t.params.Seed))
	ids := t.points.Active()
	t.root = nil
	if len(ids) > 0 {
		t.root = t.newNode(ids)
		t.computeClustering(t.root, ids)
	}
	t.sizeAtBuild = t.points.Size()
}

// newNode computes the statistics of the cluster formed by ids.
func (t *Tree[E]) newNode(ids []int) *node {
	dim := t.coords.Dimension()
	n := &node{pivot: make([]float64, dim), size: len(ids)}
	for _, id := range ids {
		for d, v := range t.vecs[id] {
			n.pivot[d] += v
		}
	}
	for d := range n.pivot {
		n.pivot[d] /= float64(len(ids))
	}
	for _, id := range ids {
		dsq := distance.SquaredEuclidean(t.vecs[id], n.pivot)
		n.variance += dsq
		n.radius = math.Max(n.radius, math.Sqrt(dsq))
	}
	n.variance /= float64(len(ids))
	return n
}

func (t *Tree[E]) computeClustering(n *node, ids []int) {
	n.children, n.ids = nil, nil
	if len(ids) < t.params.Branching {
		n.ids = slices.Clone(ids)
		return
	}

	dist := func(a, b int) float64 { return distance.Euclidean(t.vecs[a], t.vecs[b]) }
	centers := ikmeans.ChooseCenters(ikmeans.Init(t.params.CentersInit), t.params.Branching, ids, dist, t.rng)
	if len(centers) < t.params.Branching {
		n.ids = slices.Clone(ids)
		return
	}

	rows := make([][]float64, len(ids))
	for i, id := range ids {
		rows[i] = t.vecs[id]
	}
	centerRows := make([][]float64, len(centers))
	for j, c := range centers {
		centerRows[j] = slices.Clone(t.vecs[c])
	}
	assign := ikmeans.Train(rows, centerRows, t.params.Iterations, t.rng)

	subsets := make([][]int, len(centers))
	for i, id := range ids {
		subsets[assign[i]] = append(subsets[assign[i]], id)
	}
	for _, sub := range subsets {
		if len(sub) == len(ids) {
			n.ids = slices.Clone(ids)
			return
		}
	}

	for _, sub := range subsets {
		if len(sub) == 0 {
			continue
		}
		child := t.newNode(sub)
		n.children = append(n.children, child)
		t.computeClustering(child, sub)
	}
}

// AddPoints descends each point to its closest leaf, updating cluster
// statistics, and re-clusters leaves that reach Branching points.
func (t *Tree[E]) AddPoints(points []E, rebuildThreshold float64) error {
	first := t.points.Append(points)
	t.appendVectors(first)
	if rebuildThreshold > 1 && float64(t.sizeAtBuild)*rebuildThreshold < float64(t.points.Size()) {
		t.build()
		return nil
	}
	for id := first; id < t.points.Len(); id++ {
		t.addPoint(id)
	}
	return nil
}

func (t *Tree[E]) addPoint(id int) {
	vec := t.vecs[id]
	if t.root == nil {
		t.root = t.newNode([]int{id})
		t.root.ids = []int{id}
		return
	}

	n := t.root
	dsq := distance.SquaredEuclidean(vec, n.pivot)
	for {
		n.radius = math.Max(n.radius, math.Sqrt(dsq))
		n.variance = (float64(n.size)*n.variance + dsq) / float64(n.size+1)
		n.size++

		if n.leaf() {
			n.ids = append(n.ids, id)
			if len(n.ids) >= t.params.Branching {
				t.computeClustering(n, n.ids)
			}
			return
		}

		best := 0
		dsq = math.Inf(1)
		for i, c := range n.children {
			if d := distance.SquaredEuclidean(vec, c.pivot); d < dsq {
				best, dsq = i, d
			}
		}
		n = n.children[best]
	}
}

func (t *Tree[E]) RemovePoint(id int) error { return t.points.Remove(id) }

func (t *Tree[E]) Point(id int) (*E, error) { return t.points.Point(id) }

func (t *Tree[E]) Size() int { return t.points.Size() }

// KNNSearch returns up to k neighbors. params.Checks bounds the number of
// points compared; index.Unlimited searches exactly.
func (t *Tree[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, t.points.Size()))
	t.search(query, set, params)
	return set.Results(), nil
}

// RadiusSearch returns the neighbors within radius.
func (t *Tree[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	t.search(query, set, params)
	return set.Results(params.Sorted), nil
}

func (t *Tree[E]) search(query E, set resultset.Set, params index.SearchParams) {
	if t.root == nil || t.points.Size() == 0 {
		return
	}
	s := &treeSearch[E]{
		t:     t,
		query: query,
		q:     distance.Vector(t.coords, query, nil),
		set:   set,
	}
	if params.IsExact() {
		s.findExact(t.root)
		return
	}

	s.maxChecks = params.Checks
	s.branches = queue.NewMin(64)
	s.findNN(t.root)
	for s.branches.Len() > 0 && (s.checks < s.maxChecks || !set.Full()) {
		b, _ := s.branches.Pop()
		s.findNN(s.pending[b.ID])
	}
}

type treeSearch[E any] struct {
	t     *Tree[E]
	query E
	q     []float64
	set   resultset.Set

	maxChecks int
	checks    int
	branches  *queue.PriorityQueue
	pending   []*node
}

// pruned reports whether no point of n can beat the current worst result.
func (s *treeSearch[E]) pruned(n *node) bool {
	d := distance.Euclidean(s.q, n.pivot)
	return d-n.radius > s.set.WorstDistance()
}

func (s *treeSearch[E]) addLeaf(n *node) {
	for _, id := range n.ids {
		if s.t.points.IsRemoved(id) {
			continue
		}
		s.set.Add(id, s.t.coords.Distance(s.query, s.t.points.At(id)))
		s.checks++
	}
}

func (s *treeSearch[E]) findNN(n *node) {
	for {
		if s.pruned(n) {
			return
		}
		if n.leaf() {
			if s.checks >= s.maxChecks && s.set.Full() {
				return
			}
			s.addLeaf(n)
			return
		}
		n = s.exploreBranches(n)
	}
}

// exploreBranches returns the child with the closest pivot and queues the
// others, favouring clusters of high variance by CBIndex.
func (s *treeSearch[E]) exploreBranches(n *node) *node {
	dists := make([]float64, len(n.children))
	best := 0
	for i, c := range n.children {
		dists[i] = distance.SquaredEuclidean(s.q, c.pivot)
		if dists[i] < dists[best] {
			best = i
		}
	}
	for i, c := range n.children {
		if i == best {
			continue
		}
		s.pending = append(s.pending, c)
		s.branches.Push(queue.Item{
			ID:       len(s.pending) - 1,
			Distance: dists[i] - s.t.params.CBIndex*c.variance,
		})
	}
	return n.children[best]
}

func (s *treeSearch[E]) findExact(n *node) {
	if s.pruned(n) {
		return
	}
	if n.leaf() {
		s.addLeaf(n)
		return
	}

	type ordered struct {
		n    *node
		dist float64
	}
	order := make([]ordered, len(n.children))
	for i, c := range n.children {
		order[i] = ordered{c, distance.SquaredEuclidean(s.q, c.pivot)}
	}
	slices.SortFunc(order, func(a, b ordered) int { return cmp.Compare(a.dist, b.dist) })
	for _, o := range order {
		s.findExact(o.n)
	}
}
