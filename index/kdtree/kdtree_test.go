package kdtree

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForest(t *testing.T) {
	testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
		f, err := NewForest(points, distance.NewL2[float64](3), index.DefaultKDTreeParams())
		require.NoError(t, err)
		return f
	}, testutil.CheckOptions{MinRecall: 0.5})
}

func TestForestParallelBuild(t *testing.T) {
	testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
		f, err := NewForest(points, distance.NewL2[float64](3), index.KDTreeParams{Trees: 4, BuildWorkers: 4, Seed: 3})
		require.NoError(t, err)
		return f
	}, testutil.CheckOptions{MinRecall: 0.4})
}

func TestSingle(t *testing.T) {
	testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
		s, err := NewSingle(points, distance.NewL2[float64](3), index.KDTreeSingleParams{LeafMaxSize: 4})
		require.NoError(t, err)
		return s
	}, testutil.CheckOptions{MinRecall: 1})
}

func TestInvalidParams(t *testing.T) {
	_, err := NewForest([][]float64{{1}}, distance.NewL2[float64](1), index.KDTreeParams{Trees: -1})
	assert.True(t, errors.Is(err, index.ErrInvalidConfiguration))

	_, err = NewForest([][]float64{{1}}, distance.NewL2[float64](1), index.KDTreeParams{BuildWorkers: -1})
	assert.True(t, errors.Is(err, index.ErrInvalidConfiguration))

	_, err = NewSingle([][]float64{{1}}, distance.NewL2[float64](1), index.KDTreeSingleParams{LeafMaxSize: -1})
	assert.True(t, errors.Is(err, index.ErrInvalidConfiguration))
}

func TestForestEps(t *testing.T) {
	rng := testutil.NewRNG(5)
	points := rng.UniformPoints(300, 3)
	l2 := distance.NewL2[float64](3)
	f, err := NewForest(points, l2, index.DefaultKDTreeParams())
	require.NoError(t, err)

	params := index.SearchParams{Checks: index.Unlimited, Eps: 0.5, Sorted: true}
	q := []float64{0.3, 0.3, 0.3}
	got, err := f.KNNSearch(q, 5, params)
	require.NoError(t, err)
	want := testutil.ExactKNN(points, l2, q, 5)
	require.Len(t, got, 5)
	for i := range got {
		// Each result is within (1+eps) of the true i-th neighbor.
		assert.LessOrEqual(t, got[i].Distance, want[i].Distance*1.5+1e-12)
	}
}

func TestScalarPoints(t *testing.T) {
	points := []float64{5, 1, 9, 3, 7}
	s, err := NewSingle(points, distance.Scalar[float64]{}, index.KDTreeSingleParams{LeafMaxSize: 1})
	require.NoError(t, err)

	res, err := s.KNNSearch(6, 2, index.DefaultSearchParams())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.ElementsMatch(t, []int{0, 4}, []int{res[0].ID, res[1].ID})
}

func TestPlaneSplit(t *testing.T) {
	points := [][]float64{{3}, {1}, {2}, {2}, {5}, {0}}
	sp := space[[]float64]{coords: distance.NewL2[float64](1)}
	f, err := NewForest(points, distance.NewL2[float64](1), index.KDTreeParams{Trees: 1})
	require.NoError(t, err)
	sp.points = f.points

	ind := []int{0, 1, 2, 3, 4, 5}
	lim1, lim2 := sp.planeSplit(ind, 0, 2)
	assert.Equal(t, 2, lim1)
	assert.Equal(t, 4, lim2)
	for i, id := range ind {
		v := points[id][0]
		switch {
		case i < lim1:
			assert.Less(t, v, 2.0)
		case i < lim2:
			assert.Equal(t, 2.0, v)
		default:
			assert.Greater(t, v, 2.0)
		}
	}
}

func TestSelectDivision(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	variance := []float64{0, 10, 0, 0, 0, 0, 9, 0}
	for range 20 {
		d := selectDivision(variance, rng)
		assert.Contains(t, []int{1, 6, 0, 2, 3}, d, "drawn among the top five")
	}
}

func TestSplitIndex(t *testing.T) {
	assert.Equal(t, 5, splitIndex(10, 0, 10))
	assert.Equal(t, 7, splitIndex(10, 7, 8))
	assert.Equal(t, 2, splitIndex(10, 1, 2))
	assert.Equal(t, 5, splitIndex(10, 3, 8))
}
