package hnsw

import (
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/dataset"
	"github.com/hupe1980/nnsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHNSW(t *testing.T) {
	tests := []struct {
		name      string
		params    index.HNSWParams
		minRecall float64
	}{
		{"Default", index.DefaultHNSWParams(), 0.7},
		{"Simple", index.HNSWParams{M: 12, EfConstruction: 100, SimpleSelection: true, Seed: 4}, 0.5},
		{"SmallM", index.HNSWParams{M: 4, EfConstruction: 64}, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.CheckIndex(t, func(t *testing.T, points [][]float64) index.Index[[]float64] {
				h, err := New(points, distance.NewL2[float64](3), tt.params)
				require.NoError(t, err)
				return h
			}, testutil.CheckOptions{MinRecall: tt.minRecall})
		})
	}
}

func TestLinkBounds(t *testing.T) {
	points := testutil.NewRNG(11).UniformPoints(500, 4)
	h, err := New(points, distance.NewL2[float64](4), index.HNSWParams{M: 6})
	require.NoError(t, err)

	for id, n := range h.nodes {
		require.NotNil(t, n)
		for level, links := range n.links {
			limit := 6
			if level == 0 {
				limit = 12
			}
			assert.LessOrEqual(t, len(links), limit)
			assert.NotContains(t, links, id)
			for _, l := range links {
				assert.GreaterOrEqual(t, h.nodes[l].level(), level)
			}
		}
	}
	assert.Equal(t, h.maxLevel, h.nodes[h.entryPoint].level())
}

func TestRemovedPointsStayNavigable(t *testing.T) {
	points := testutil.NewRNG(12).UniformPoints(300, 3)
	h, err := New(points, distance.NewL2[float64](3), index.DefaultHNSWParams())
	require.NoError(t, err)

	for id := range 150 {
		require.NoError(t, h.RemovePoint(id))
	}
	require.NoError(t, h.RemovePoint(h.entryPoint))

	params := index.DefaultSearchParams()
	params.Checks = 64
	for _, q := range points[200:220] {
		res, err := h.KNNSearch(q, 5, params)
		require.NoError(t, err)
		require.NotEmpty(t, res)
		for _, n := range res {
			assert.GreaterOrEqual(t, n.ID, 150)
			assert.NotEqual(t, h.entryPoint, n.ID)
		}
	}
}

func TestEfGrowsWithK(t *testing.T) {
	points := testutil.NewRNG(13).UniformPoints(400, 3)
	h, err := New(points, distance.NewL2[float64](3), index.DefaultHNSWParams())
	require.NoError(t, err)

	params := index.DefaultSearchParams()
	params.Checks = 1
	res, err := h.KNNSearch([]float64{0.5, 0.5, 0.5}, 50, params)
	require.NoError(t, err)
	assert.Len(t, res, 50)
}

func TestPruningKeepsDiverseLinks(t *testing.T) {
	// Node 0 sits at the origin with three links on its right. A fourth
	// point on its left must survive pruning even under simple selection.
	points := [][]float64{{0}, {1}, {1.1}, {1.2}, {-1.5}}
	h := &HNSW[[]float64]{
		dist:                   distance.NewL2[float64](1),
		points:                 dataset.New(points),
		params:                 index.HNSWParams{M: 3, SimpleSelection: true},
		maxConnectionsPerLayer: 3,
		maxConnectionsLayer0:   3,
		nodes: []*node{
			{links: [][]int{{1, 2, 3}}},
			{links: [][]int{{0}}},
			{links: [][]int{{0}}},
			{links: [][]int{{0}}},
			{links: [][]int{{}}},
		},
	}

	h.addConnection(0, 4, 0)

	links := h.nodes[0].links[0]
	assert.Len(t, links, 3)
	assert.Contains(t, links, 1)
	assert.Contains(t, links, 4)
}

func TestRepeatedSearchIsStable(t *testing.T) {
	points := testutil.NewRNG(14).UniformPoints(500, 3)
	h, err := New(points, distance.NewL2[float64](3), index.DefaultHNSWParams())
	require.NoError(t, err)

	q := []float64{0.3, 0.6, 0.9}
	first, err := h.KNNSearch(q, 10, index.DefaultSearchParams())
	require.NoError(t, err)
	for range 5 {
		res, err := h.KNNSearch(q, 10, index.DefaultSearchParams())
		require.NoError(t, err)
		assert.Equal(t, first, res)
	}
}
