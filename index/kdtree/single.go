package kdtree

import (
	"math"
	"slices"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/dataset"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

var _ index.Index[[]float64] = (*Single[[]float64])(nil)

// splitEps tolerates rounding when comparing dimension spans.
const splitEps = 0.00001

// singleNode is a node of a Single tree. Points of child1 lie at or below
// divlow along divfeat; points of child2 lie at or above divhigh.
type singleNode struct {
	child1, child2 *singleNode
	ids            []int
	divfeat        int
	divlow         float64
	divhigh        float64
}

func (n *singleNode) leaf() bool { return n.child1 == nil }

// Single is one kd-tree with bucketed leaves, split at the middle of the
// widest dimension. Searches are exact up to params.Eps; Checks is ignored.
type Single[E any] struct {
	space[E]
	params      index.KDTreeSingleParams
	root        *singleNode
	sizeAtBuild int
}

// NewSingle builds a single kd-tree over points.
func NewSingle[E any](points []E, coords distance.Coordinates[E], params index.KDTreeSingleParams) (*Single[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Single[E]{
		space:  space[E]{coords: coords, points: dataset.New(points)},
		params: params.WithDefaults(),
	}
	s.build()
	return s, nil
}

func (*Single[E]) Algorithm() index.Algorithm { return index.AlgorithmKDTreeSingle }

func (s *Single[E]) build() {
	ids := s.points.Active()
	s.root = nil
	if len(ids) > 0 {
		s.root = s.divideTree(ids)
	}
	s.sizeAtBuild = s.points.Size()
}

func (s *Single[E]) divideTree(ind []int) *singleNode {
	if len(ind) <= s.params.LeafMaxSize {
		return &singleNode{ids: slices.Clone(ind)}
	}

	cutfeat, cutval := s.middleSplit(ind)
	lim1, lim2 := s.planeSplit(ind, cutfeat, cutval)
	k := splitIndex(len(ind), lim1, lim2)

	n := &singleNode{
		divfeat: cutfeat,
		divlow:  math.Inf(-1),
		divhigh: math.Inf(1),
	}
	for _, id := range ind[:k] {
		n.divlow = math.Max(n.divlow, s.coord(id, cutfeat))
	}
	for _, id := range ind[k:] {
		n.divhigh = math.Min(n.divhigh, s.coord(id, cutfeat))
	}
	n.child1 = s.divideTree(ind[:k])
	n.child2 = s.divideTree(ind[k:])
	return n
}

// middleSplit cuts the widest dimension of the bounding box at its middle,
// clamped to the range of the points.
func (s *Single[E]) middleSplit(ind []int) (int, float64) {
	dim := s.coords.Dimension()
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for d := range dim {
		lo[d], hi[d] = math.Inf(1), math.Inf(-1)
	}
	for _, id := range ind {
		for d := range dim {
			v := s.coord(id, d)
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}

	maxSpan := 0.0
	for d := range dim {
		maxSpan = math.Max(maxSpan, hi[d]-lo[d])
	}
	cutfeat, maxSpread := 0, -1.0
	for d := range dim {
		if span := hi[d] - lo[d]; span >= (1-splitEps)*maxSpan && span > maxSpread {
			cutfeat, maxSpread = d, span
		}
	}

	return cutfeat, (lo[cutfeat] + hi[cutfeat]) / 2
}

// AddPoints routes each point to its leaf, widening the split bounds on the
// way, and re-splits leaves that outgrow LeafMaxSize.
func (s *Single[E]) AddPoints(points []E, rebuildThreshold float64) error {
	first := s.points.Append(points)
	if rebuildThreshold > 1 && float64(s.sizeAtBuild)*rebuildThreshold < float64(s.points.Size()) {
		s.build()
		return nil
	}
	for id := first; id < s.points.Len(); id++ {
		s.addPoint(id)
	}
	return nil
}

func (s *Single[E]) addPoint(id int) {
	if s.root == nil {
		s.root = &singleNode{ids: []int{id}}
		return
	}
	n := s.root
	for !n.leaf() {
		v := s.coord(id, n.divfeat)
		if v < (n.divlow+n.divhigh)/2 {
			n.divlow = math.Max(n.divlow, v)
			n = n.child1
		} else {
			n.divhigh = math.Min(n.divhigh, v)
			n = n.child2
		}
	}
	n.ids = append(n.ids, id)
	if len(n.ids) > s.params.LeafMaxSize {
		*n = *s.divideTree(n.ids)
	}
}

func (s *Single[E]) RemovePoint(id int) error { return s.points.Remove(id) }

func (s *Single[E]) Point(id int) (*E, error) { return s.points.Point(id) }

func (s *Single[E]) Size() int { return s.points.Size() }

// KNNSearch returns up to k neighbors.
func (s *Single[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, s.points.Size()))
	s.search(query, set, params)
	return set.Results(), nil
}

// RadiusSearch returns the neighbors within radius.
func (s *Single[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	s.search(query, set, params)
	return set.Results(params.Sorted), nil
}

func (s *Single[E]) search(query E, set resultset.Set, params index.SearchParams) {
	if s.root == nil || s.points.Size() == 0 {
		return
	}
	q := distance.Vector(s.coords, query, nil)
	epsSq := (1 + params.Eps) * (1 + params.Eps)
	s.searchLevel(s.root, query, q, set, 0, make([]float64, len(q)), epsSq)
}

func (s *Single[E]) searchLevel(n *singleNode, query E, q []float64, set resultset.Set, mindistSq float64, dists []float64, epsSq float64) {
	if n.leaf() {
		for _, id := range n.ids {
			if s.points.IsRemoved(id) {
				continue
			}
			set.Add(id, s.coords.Distance(query, s.points.At(id)))
		}
		return
	}

	idx := n.divfeat
	val := q[idx]
	var best, other *singleNode
	var cut float64
	if (val-n.divlow)+(val-n.divhigh) < 0 {
		best, other = n.child1, n.child2
		cut = (val - n.divhigh) * (val - n.divhigh)
	} else {
		best, other = n.child2, n.child1
		cut = (val - n.divlow) * (val - n.divlow)
	}

	s.searchLevel(best, query, q, set, mindistSq, dists, epsSq)

	saved := dists[idx]
	dst := mindistSq - saved + cut
	if dst*epsSq <= worstSq(set) {
		dists[idx] = cut
		s.searchLevel(other, query, q, set, dst, dists, epsSq)
		dists[idx] = saved
	}
}
