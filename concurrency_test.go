package nnsearch

import (
	"sync/atomic"
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statefulL2 is a Euclidean adapter that keeps unsynchronized state, like a
// memoizing or counting user callback. overlap records calls that ran while
// another call was in flight.
type statefulL2 struct {
	l2       distance.L2[float64]
	calls    map[int]int
	inFlight atomic.Int32
	overlap  atomic.Int32
}

func newStatefulL2(dim int) *statefulL2 {
	return &statefulL2{l2: distance.NewL2[float64](dim), calls: map[int]int{}}
}

func (s *statefulL2) enter(key int) {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Add(1)
	}
	s.calls[key]++
}

func (s *statefulL2) leave() { s.inFlight.Add(-1) }

func (s *statefulL2) Distance(a, b []float64) float64 {
	s.enter(0)
	defer s.leave()
	return s.l2.Distance(a, b)
}

func (s *statefulL2) Dimension() int { return s.l2.Dimension() }

func (s *statefulL2) Coordinate(e []float64, i int) float64 {
	s.enter(1)
	defer s.leave()
	return s.l2.Coordinate(e, i)
}

func (s *statefulL2) Validate(e []float64) error { return s.l2.Validate(e) }

func TestStatefulDistanceIsNotCalledConcurrently(t *testing.T) {
	points := testutil.NewRNG(50).UniformPoints(2000, 2)

	tests := []struct {
		name   string
		params index.Params
	}{
		{"Hierarchical", index.HierarchicalClusteringParams{Branching: 4, LeafMaxSize: 8}},
		{"KDTree", index.DefaultKDTreeParams()},
		{"Composite", index.CompositeParams{Branching: 4}},
		{"KMeans", index.KMeansParams{Branching: 4}},
		{"HNSW", index.HNSWParams{M: 4, EfConstruction: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := newStatefulL2(2)
			s, err := New[[]float64](dist, WithIndexParams(tt.params))
			require.NoError(t, err)

			require.NoError(t, s.AddAll(points))
			_, err = s.Remove(points[7])
			require.NoError(t, err)

			assert.Zero(t, dist.overlap.Load())
			assert.Positive(t, dist.calls[0]+dist.calls[1])
		})
	}
}

func TestStatefulDistanceFunc(t *testing.T) {
	calls := map[int]int{}
	dist := func(a, b []float64) float64 {
		calls[len(a)]++
		return euclid(a, b)
	}

	s, err := NewHierarchicalClustering(dist, index.HierarchicalClusteringParams{Branching: 4, LeafMaxSize: 8})
	require.NoError(t, err)
	require.NoError(t, s.AddAll(testutil.NewRNG(51).UniformPoints(5000, 2)))
	assert.Positive(t, calls[2])
}
