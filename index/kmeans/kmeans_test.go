package kmeans

import (
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	tests := []struct {
		name      string
		params    index.KMeansParams
		minRecall float64
	}{
		{"Default", index.DefaultKMeansParams(), 0.4},
		{"SmallBranching", index.KMeansParams{Branching: 4, Iterations: 5, Seed: 2}, 0.4},
		{"Gonzales", index.KMeansParams{Branching: 8, CentersInit: index.CentersGonzales}, 0.4},
		{"KMeansPP", index.KMeansParams{Branching: 8, CentersInit: index.CentersKMeansPP, Iterations: index.Unlimited}, 0.4},
		{"NoCBIndex", index.KMeansParams{Branching: 16, CBIndex: 0}, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
				tree, err := New(points, distance.NewL2[float64](3), tt.params)
				require.NoError(t, err)
				return tree
			}, testutil.CheckOptions{MinRecall: tt.minRecall})
		})
	}
}

func TestClusterInvariant(t *testing.T) {
	points := testutil.NewRNG(3).ClusteredPoints(600, 3, 6, 0.1)
	tree, err := New(points[:300], distance.NewL2[float64](3), index.KMeansParams{Branching: 4})
	require.NoError(t, err)
	require.NoError(t, tree.AddPoints(points[300:], 1e9))

	var walk func(n *node) int
	walk = func(n *node) int {
		ids := collect(n)
		for _, id := range ids {
			assert.LessOrEqual(t, distance.Euclidean(tree.vecs[id], n.pivot), n.radius+1e-9)
		}
		for _, c := range n.children {
			walk(c)
		}
		return len(ids)
	}
	assert.Equal(t, 600, walk(tree.root))
	assert.Equal(t, 600, tree.root.size)
}

func collect(n *node) []int {
	if n.leaf() {
		return n.ids
	}
	var out []int
	for _, c := range n.children {
		out = append(out, collect(c)...)
	}
	return out
}

func TestLeavesBelowBranching(t *testing.T) {
	points := testutil.NewRNG(8).UniformPoints(500, 3)
	tree, err := New(points, distance.NewL2[float64](3), index.KMeansParams{Branching: 5})
	require.NoError(t, err)

	var check func(n *node)
	check = func(n *node) {
		if n.leaf() {
			assert.Less(t, len(n.ids), 5)
			return
		}
		assert.LessOrEqual(t, len(n.children), 5)
		for _, c := range n.children {
			check(c)
		}
	}
	check(tree.root)
}

func TestInvalidParams(t *testing.T) {
	_, err := New([][]float64{{1}}, distance.NewL2[float64](1), index.KMeansParams{Branching: 1})
	assert.ErrorIs(t, err, index.ErrInvalidConfiguration)

	_, err = New([][]float64{{1}}, distance.NewL2[float64](1), index.KMeansParams{CBIndex: -1})
	assert.ErrorIs(t, err, index.ErrInvalidConfiguration)
}
