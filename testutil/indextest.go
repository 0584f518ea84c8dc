package testutil

import (
	"math"
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Builder constructs the index under test over points.
type Builder func(t *testing.T, points [][]float64) index.Index[[]float64]

// CheckOptions tunes CheckIndex for a variant.
type CheckOptions struct {
	// MinRecall is the average recall@10 required with default search params.
	MinRecall float64
}

// CheckIndex runs the behaviour every index shares over Euclidean
// three dimensional points.
func CheckIndex(t *testing.T, build Builder, opts CheckOptions) {
	t.Helper()

	l2 := distance.NewL2[float64](3)
	exact := index.DefaultSearchParams().Exact()
	approx := index.DefaultSearchParams()

	t.Run("Example", func(t *testing.T) {
		points := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
		idx := build(t, points)
		require.Equal(t, 3, idx.Size())

		for _, params := range []index.SearchParams{exact, approx} {
			res, err := idx.KNNSearch([]float64{0.1, 0.1, 0}, 1, params)
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, 0, res[0].ID)

			res, err = idx.KNNSearch([]float64{0, 0, 0}, 2, params)
			require.NoError(t, err)
			require.Len(t, res, 2)
			assert.Equal(t, 0, res[0].ID)
			assert.Contains(t, []int{1, 2}, res[1].ID)
			assert.InDelta(t, 1.0, res[1].Distance, 1e-12)

			res, err = idx.RadiusSearch([]float64{0, 0, 0}, 1.0, params)
			require.NoError(t, err)
			assert.ElementsMatch(t, []int{0, 1, 2}, ids(res))
			assert.True(t, sorted(res))
		}
	})

	t.Run("ExactMatchesBruteForce", func(t *testing.T) {
		rng := NewRNG(4711)
		points := rng.UniformPoints(500, 3)
		queries := rng.UniformPoints(20, 3)
		idx := build(t, points)

		for _, q := range queries {
			want := ExactKNN(points, l2, q, 10)
			got, err := idx.KNNSearch(q, 10, exact)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-9)
			}

			wantR := ExactRadius(points, l2, q, 0.2)
			gotR, err := idx.RadiusSearch(q, 0.2, exact)
			require.NoError(t, err)
			assert.ElementsMatch(t, ids(wantR), ids(gotR))
			assert.True(t, sorted(gotR))
		}
	})

	t.Run("ApproximateRecall", func(t *testing.T) {
		rng := NewRNG(42)
		points := rng.ClusteredPoints(1000, 3, 10, 0.05)
		queries := rng.UniformPoints(30, 3)
		idx := build(t, points)

		var recall float64
		for _, q := range queries {
			got, err := idx.KNNSearch(q, 10, approx)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), 10)
			assert.True(t, sorted(got))
			recall += ComputeRecall(ExactKNN(points, l2, q, 10), got)

			truth := map[int]bool{}
			for _, n := range ExactRadius(points, l2, q, 0.1) {
				truth[n.ID] = true
			}
			gotR, err := idx.RadiusSearch(q, 0.1, approx)
			require.NoError(t, err)
			for _, n := range gotR {
				assert.LessOrEqual(t, n.Distance, 0.1)
				assert.True(t, truth[n.ID])
			}
		}
		assert.GreaterOrEqual(t, recall/float64(len(queries)), opts.MinRecall)
	})

	t.Run("RemovePoint", func(t *testing.T) {
		points := NewRNG(7).UniformPoints(200, 3)
		idx := build(t, points)

		require.NoError(t, idx.RemovePoint(5))
		assert.Equal(t, 199, idx.Size())

		res, err := idx.KNNSearch(points[5], 1, exact)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.NotEqual(t, 5, res[0].ID)

		res, err = idx.KNNSearch(points[5], 200, exact)
		require.NoError(t, err)
		assert.Len(t, res, 199)
		assert.NotContains(t, ids(res), 5)

		ref, err := idx.Point(5)
		require.NoError(t, err)
		assert.Same(t, &points[5], ref)

		_, err = idx.Point(200)
		assert.ErrorIs(t, err, index.ErrInvalidID)
		assert.ErrorIs(t, idx.RemovePoint(-1), index.ErrInvalidID)
	})

	t.Run("AddPoints", func(t *testing.T) {
		rng := NewRNG(99)
		first := rng.UniformPoints(100, 3)
		second := rng.UniformPoints(100, 3)
		third := rng.UniformPoints(300, 3)
		all := append(append(append([][]float64{}, first...), second...), third...)

		idx := build(t, first)
		require.NoError(t, idx.AddPoints(second, math.MaxFloat32/200))
		assert.Equal(t, 200, idx.Size())

		// Forces the internal restructuring path.
		require.NoError(t, idx.AddPoints(third, 2))
		assert.Equal(t, 500, idx.Size())

		for _, id := range []int{0, 150, 420} {
			res, err := idx.KNNSearch(all[id], 1, exact)
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.InDelta(t, 0.0, res[0].Distance, 1e-12)

			ref, err := idx.Point(id)
			require.NoError(t, err)
			assert.Equal(t, all[id], *ref)
		}

		q := []float64{0.5, 0.5, 0.5}
		want := ExactKNN(all, l2, q, 25)
		got, err := idx.KNNSearch(q, 25, exact)
		require.NoError(t, err)
		require.Len(t, got, 25)
		for i := range want {
			assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-9)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		idx := build(t, nil)
		assert.Equal(t, 0, idx.Size())

		res, err := idx.KNNSearch([]float64{0, 0, 0}, 3, approx)
		require.NoError(t, err)
		assert.Empty(t, res)

		res, err = idx.RadiusSearch([]float64{0, 0, 0}, 10, exact)
		require.NoError(t, err)
		assert.Empty(t, res)

		more := [][]float64{{1, 1, 1}, {2, 2, 2}}
		require.NoError(t, idx.AddPoints(more, math.MaxFloat32/2))
		assert.Equal(t, 2, idx.Size())

		res, err = idx.KNNSearch([]float64{2, 2, 2.1}, 1, exact)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, 1, res[0].ID)
	})

	t.Run("DegenerateArguments", func(t *testing.T) {
		points := [][]float64{{0, 0, 0}, {1, 1, 1}}
		idx := build(t, points)

		res, err := idx.KNNSearch([]float64{0, 0, 0}, 0, exact)
		require.NoError(t, err)
		assert.Empty(t, res)

		res, err = idx.KNNSearch([]float64{0, 0, 0}, 10, exact)
		require.NoError(t, err)
		assert.Len(t, res, 2)

		res, err = idx.RadiusSearch([]float64{0, 0, 0}, -1, exact)
		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("Duplicates", func(t *testing.T) {
		points := make([][]float64, 50)
		for i := range points {
			points[i] = []float64{1, 2, 3}
		}
		points = append(points, []float64{4, 5, 6})
		idx := build(t, points)

		res, err := idx.KNNSearch([]float64{4, 5, 6}, 1, exact)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, 50, res[0].ID)

		res, err = idx.RadiusSearch([]float64{1, 2, 3}, 0, exact)
		require.NoError(t, err)
		assert.Len(t, res, 50)
	})
}

func ids(ns []index.Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func sorted(ns []index.Neighbor) bool {
	for i := 1; i < len(ns); i++ {
		if ns[i].Distance < ns[i-1].Distance {
			return false
		}
	}
	return true
}
