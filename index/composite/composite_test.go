package composite

import (
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite(t *testing.T) {
	testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
		c, err := New(points, distance.NewL2[float64](3), index.DefaultCompositeParams())
		require.NoError(t, err)
		return c
	}, testutil.CheckOptions{MinRecall: 0.5})
}

func TestCompositeParallelBuild(t *testing.T) {
	testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
		c, err := New(points, distance.NewL2[float64](3), index.CompositeParams{Trees: 2, Branching: 8, BuildWorkers: 2})
		require.NoError(t, err)
		return c
	}, testutil.CheckOptions{MinRecall: 0.5})
}

func TestSubIndexesStayInSync(t *testing.T) {
	points := testutil.NewRNG(21).UniformPoints(100, 3)
	c, err := New(points, distance.NewL2[float64](3), index.CompositeParams{Trees: 2, Branching: 4})
	require.NoError(t, err)

	require.NoError(t, c.AddPoints(testutil.NewRNG(22).UniformPoints(50, 3), 1e9))
	require.NoError(t, c.RemovePoint(7))
	assert.Equal(t, 149, c.forest.Size())
	assert.Equal(t, 149, c.tree.Size())

	a, err := c.forest.Point(120)
	require.NoError(t, err)
	b, err := c.tree.Point(120)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRadiusCap(t *testing.T) {
	points := testutil.NewRNG(23).UniformPoints(200, 3)
	c, err := New(points, distance.NewL2[float64](3), index.DefaultCompositeParams())
	require.NoError(t, err)

	params := index.DefaultSearchParams().Exact()
	params.MaxNeighbors = 7
	res, err := c.RadiusSearch([]float64{0.5, 0.5, 0.5}, 5, params)
	require.NoError(t, err)
	require.Len(t, res, 7)

	want := testutil.ExactKNN(points, distance.NewL2[float64](3), []float64{0.5, 0.5, 0.5}, 7)
	for i := range want {
		assert.InDelta(t, want[i].Distance, res[i].Distance, 1e-12)
	}
}

func TestInvalidParams(t *testing.T) {
	_, err := New([][]float64{{1}}, distance.NewL2[float64](1), index.CompositeParams{Trees: -1})
	assert.ErrorIs(t, err, index.ErrInvalidConfiguration)
}
