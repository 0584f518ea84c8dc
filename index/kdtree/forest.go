// Package kdtree provides kd-tree indexes over points with Euclidean
// coordinates: a forest of randomized trees for approximate search and a
// single tree for exact search in low dimensions.
package kdtree

import (
	"math"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/bitmap"
	"github.com/hupe1980/nnsearch/internal/dataset"
	"github.com/hupe1980/nnsearch/internal/queue"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

// Compile-time check to ensure Forest satisfies the index interface.
var _ index.Index[[]float64] = (*Forest[[]float64])(nil)

// node is a forest node. Leaves hold exactly one point whose id is stored
// in divfeat.
type node struct {
	child1, child2 *node
	divfeat        int
	divval         float64
}

func (n *node) leaf() bool { return n.child1 == nil }

// Forest is a set of randomized kd-trees searched with a shared branch queue.
// Each tree splits on a dimension drawn among those of highest variance,
// which decorrelates the trees.
type Forest[E any] struct {
	space[E]
	params      index.KDTreeParams
	roots       []*node
	sizeAtBuild int
}

// NewForest builds a forest over points. Trees are built one at a time
// unless params.BuildWorkers is above one, in which case the adapter's
// Coordinate method must be safe for concurrent use.
func NewForest[E any](points []E, coords distance.Coordinates[E], params index.KDTreeParams) (*Forest[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	f := &Forest[E]{
		space:  space[E]{coords: coords, points: dataset.New(points)},
		params: params.WithDefaults(),
	}
	if err := f.build(); err != nil {
		return nil, err
	}
	return f, nil
}

func (*Forest[E]) Algorithm() index.Algorithm { return index.AlgorithmKDTree }

func (f *Forest[E]) build() error {
	ids := f.points.Active()
	roots := make([]*node, f.params.Trees)

	g := new(errgroup.Group)
	g.SetLimit(f.params.BuildWorkers)
	for t := range roots {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(f.params.Seed + int64(t)))
			ind := slices.Clone(ids)
			rng.Shuffle(len(ind), func(i, j int) { ind[i], ind[j] = ind[j], ind[i] })
			roots[t] = f.divideTree(ind, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.roots = roots
	f.sizeAtBuild = f.points.Size()
	return nil
}

func (f *Forest[E]) divideTree(ind []int, rng *rand.Rand) *node {
	switch len(ind) {
	case 0:
		return nil
	case 1:
		return &node{divfeat: ind[0]}
	}

	cutfeat, cutval := f.meanSplit(ind, rng)
	lim1, lim2 := f.planeSplit(ind, cutfeat, cutval)
	k := splitIndex(len(ind), lim1, lim2)

	return &node{
		divfeat: cutfeat,
		divval:  cutval,
		child1:  f.divideTree(ind[:k], rng),
		child2:  f.divideTree(ind[k:], rng),
	}
}

// AddPoints inserts points into every tree, or rebuilds the forest when it
// has grown past rebuildThreshold times its size at the last build.
func (f *Forest[E]) AddPoints(points []E, rebuildThreshold float64) error {
	first := f.points.Append(points)
	if rebuildThreshold > 1 && float64(f.sizeAtBuild)*rebuildThreshold < float64(f.points.Size()) {
		return f.build()
	}
	for id := first; id < f.points.Len(); id++ {
		for t := range f.roots {
			f.roots[t] = f.addPointToTree(f.roots[t], id)
		}
	}
	return nil
}

// addPointToTree descends to the leaf the point falls into and splits it
// along the dimension of largest difference between the two points.
func (f *Forest[E]) addPointToTree(root *node, id int) *node {
	if root == nil {
		return &node{divfeat: id}
	}

	n := root
	for !n.leaf() {
		if f.coord(id, n.divfeat) < n.divval {
			n = n.child1
		} else {
			n = n.child2
		}
	}

	leafID := n.divfeat
	divfeat, span := 0, -1.0
	for d := range f.coords.Dimension() {
		if s := math.Abs(f.coord(id, d) - f.coord(leafID, d)); s > span {
			divfeat, span = d, s
		}
	}

	pv, lv := f.coord(id, divfeat), f.coord(leafID, divfeat)
	left, right := &node{divfeat: id}, &node{divfeat: leafID}
	if pv >= lv {
		left, right = right, left
	}
	n.divfeat = divfeat
	n.divval = (pv + lv) / 2
	n.child1, n.child2 = left, right
	return root
}

func (f *Forest[E]) RemovePoint(id int) error { return f.points.Remove(id) }

func (f *Forest[E]) Point(id int) (*E, error) { return f.points.Point(id) }

func (f *Forest[E]) Size() int { return f.points.Size() }

// KNNSearch returns up to k neighbors. With params.Checks == index.Unlimited
// the first tree is searched exhaustively with exact pruning.
func (f *Forest[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, f.points.Size()))
	f.search(query, set, params)
	return set.Results(), nil
}

// RadiusSearch returns the neighbors within radius.
func (f *Forest[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	f.search(query, set, params)
	return set.Results(params.Sorted), nil
}

func (f *Forest[E]) search(query E, set resultset.Set, params index.SearchParams) {
	if len(f.roots) == 0 || f.points.Size() == 0 {
		return
	}
	s := &forestSearch[E]{
		f:     f,
		query: query,
		q:     distance.Vector(f.coords, query, nil),
		set:   set,
		epsSq: (1 + params.Eps) * (1 + params.Eps),
	}

	if params.IsExact() {
		s.dists = make([]float64, len(s.q))
		s.searchExact(f.roots[0], 0)
		return
	}

	s.maxChecks = params.Checks
	s.checked = bitmap.New()
	s.branches = queue.NewMin(64)
	for _, root := range f.roots {
		s.searchLevel(root, 0)
	}
	for s.branches.Len() > 0 && (s.checks < s.maxChecks || !set.Full()) {
		b, _ := s.branches.Pop()
		s.searchLevel(s.pending[b.ID], b.Distance)
	}
}

type forestSearch[E any] struct {
	f     *Forest[E]
	query E
	q     []float64
	set   resultset.Set
	epsSq float64

	// exact
	dists []float64

	// approximate
	maxChecks int
	checks    int
	checked   *bitmap.Set
	branches  *queue.PriorityQueue
	pending   []*node
}

func (s *forestSearch[E]) addLeaf(id int) {
	if s.f.points.IsRemoved(id) {
		return
	}
	s.set.Add(id, s.f.coords.Distance(s.query, s.f.points.At(id)))
}

func worstSq(set resultset.Set) float64 {
	w := set.WorstDistance()
	return w * w
}

// searchExact visits the closer child first and the farther child only when
// the squared distance to its cell, tracked per dimension, can still beat
// the current worst result.
func (s *forestSearch[E]) searchExact(n *node, mindistSq float64) {
	if n == nil {
		return
	}
	if n.leaf() {
		s.addLeaf(n.divfeat)
		return
	}

	diff := s.q[n.divfeat] - n.divval
	best, other := n.child1, n.child2
	if diff >= 0 {
		best, other = other, best
	}
	s.searchExact(best, mindistSq)

	cut := diff * diff
	saved := s.dists[n.divfeat]
	dst := mindistSq - saved + cut
	if dst*s.epsSq <= worstSq(s.set) {
		s.dists[n.divfeat] = cut
		s.searchExact(other, dst)
		s.dists[n.divfeat] = saved
	}
}

// searchLevel descends to a leaf, queueing the skipped branches by their
// approximate distance.
func (s *forestSearch[E]) searchLevel(n *node, mindistSq float64) {
	for n != nil {
		if worstSq(s.set) < mindistSq {
			return
		}
		if n.leaf() {
			id := n.divfeat
			if s.f.points.IsRemoved(id) {
				return
			}
			if s.checks >= s.maxChecks && s.set.Full() {
				return
			}
			if !s.checked.CheckedAdd(id) {
				return
			}
			s.checks++
			s.set.Add(id, s.f.coords.Distance(s.query, s.f.points.At(id)))
			return
		}

		diff := s.q[n.divfeat] - n.divval
		best, other := n.child1, n.child2
		if diff >= 0 {
			best, other = other, best
		}

		dst := mindistSq + diff*diff
		if dst*s.epsSq < worstSq(s.set) || !s.set.Full() {
			s.pending = append(s.pending, other)
			s.branches.Push(queue.Item{ID: len(s.pending) - 1, Distance: dst})
		}
		n = best
	}
}
