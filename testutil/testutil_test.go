package testutil

import (
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.UniformPoints(8, 32)

	assert.Equal(t, 8, len(p))
	assert.Equal(t, 32, len(p[0]))
	assert.LessOrEqual(t, p[0][0], 1.0)
	assert.GreaterOrEqual(t, p[1][0], 0.0)
}

func TestUniformRangePoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.UniformRangePoints(8, 32, -1, 1)

	assert.Equal(t, 8, len(p))
	for _, v := range p[3] {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestPointsDoNotAlias(t *testing.T) {
	p := NewRNG(4711).UniformPoints(2, 3)
	p[0] = append(p[0], 42)
	assert.Len(t, p[1], 3)
	assert.NotEqual(t, 42.0, p[1][0])
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.ClusteredPoints(100, 4, 5, 0.01)

	assert.Equal(t, 100, len(p))
	// Points sharing a center stay close.
	assert.Less(t, distance.Euclidean(p[0], p[5]), 0.2)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(1, 10)

	rng.Reset()
	p2 := rng.UniformPoints(1, 10)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestExactKNN(t *testing.T) {
	points := [][]float64{{0}, {5}, {1}, {3}}
	got := ExactKNN(points, distance.NewL2[float64](1), []float64{0.9}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 0, got[1].ID)

	assert.Len(t, ExactKNN(points, distance.NewL2[float64](1), []float64{0}, 10), 4)
}

func TestExactRadius(t *testing.T) {
	points := [][]float64{{0}, {5}, {1}, {3}}
	got := ExactRadius(points, distance.NewL2[float64](1), []float64{0.5}, 0.5)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int{0, 2}, []int{got[0].ID, got[1].ID})
}

func TestComputeRecall(t *testing.T) {
	truth := []index.Neighbor{{ID: 1, Distance: 0.1}, {ID: 2, Distance: 0.2}, {ID: 3, Distance: 0.3}, {ID: 4, Distance: 0.4}}

	tests := []struct {
		name   string
		approx []index.Neighbor
		want   float64
	}{
		{"Perfect", truth, 1},
		{"Half", []index.Neighbor{{ID: 1, Distance: 0.1}, {ID: 9, Distance: 0.5}}, 0.5},
		{"Tie", []index.Neighbor{{ID: 1, Distance: 0.1}, {ID: 9, Distance: 0.2}}, 1},
		{"Empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeRecall(truth, tt.approx), 1e-9)
		})
	}

	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
}
