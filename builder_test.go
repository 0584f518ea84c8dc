package nnsearch

import (
	"testing"

	"github.com/hupe1980/nnsearch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderIsImmutable(t *testing.T) {
	base := Vectors[float64](2)
	kd := base.KDTree(2)
	hnsw := base.HNSW(4, 50).Exact()

	assert.Equal(t, index.LinearParams{}, base.params)
	assert.Equal(t, index.AlgorithmKDTree, kd.params.Algorithm())
	assert.Equal(t, index.DefaultSearchParams(), kd.search)
	assert.True(t, hnsw.search.IsExact())
}

func TestBuilderBuild(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	tests := []struct {
		name    string
		builder Builder[[]float64]
		algo    index.Algorithm
	}{
		{"Linear", Vectors[float64](2).Linear(), index.AlgorithmLinear},
		{"KDTree", Vectors[float64](2).KDTree(3), index.AlgorithmKDTree},
		{"KDTreeSingle", Vectors[float64](2).KDTreeSingle(4), index.AlgorithmKDTreeSingle},
		{"KMeans", Vectors[float64](2).KMeans(4, 5), index.AlgorithmKMeans},
		{"Composite", Vectors[float64](2).Composite(2, 4), index.AlgorithmComposite},
		{"HierarchicalClustering", Vectors[float64](2).HierarchicalClustering(2, 4, 8), index.AlgorithmHierarchicalClustering},
		{"HNSW", Vectors[float64](2).HNSW(4, 50), index.AlgorithmHNSW},
		{"FuncHNSW", ForFunc(euclid).HNSW(8, 100), index.AlgorithmHNSW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.builder.Checks(16).Capacity(8).Metrics(metrics).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.algo, s.IndexParams().Algorithm())
			assert.Equal(t, 16, s.SearchParams().Checks)
			assert.Equal(t, 8, s.Capacity())

			require.NoError(t, s.AddAll([][]float64{{0, 0}, {1, 0}, {0, 1}}))
			removed, err := s.Remove([]float64{1, 0})
			require.NoError(t, err)
			assert.True(t, removed)
		})
	}
}

func TestBuilderErrors(t *testing.T) {
	_, err := ForFunc[[]float64](nil).Build()
	assert.ErrorIs(t, err, ErrNilDistance)

	_, err = ForFunc(euclid).KDTree(4).Build()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Vectors[float64](2).Checks(0).Build()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Vectors[float64](2).KMeans(1, 5).Build()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
