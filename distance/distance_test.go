package distance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc(t *testing.T) {
	calls := 0
	f := Func[string](func(a, b string) float64 {
		calls++
		return math.Abs(float64(len(a) - len(b)))
	})

	assert.Equal(t, 2.0, f.Distance("abc", "a"))
	assert.Equal(t, 0.0, f.Distance("x", "y"))
	assert.Equal(t, 2, calls)
}

func TestL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{0, 0, 0}, []float64{1, 2, 2}, 3},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Negative", []float64{-1, 0, 0}, []float64{2, 4, 0}, 5},
	}

	l2 := NewL2[float64](3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, l2.Distance(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.expected, l2.Distance(tt.b, tt.a), 1e-9)
		})
	}

	assert.Equal(t, 3, l2.Dimension())
	assert.Equal(t, 2.0, l2.Coordinate([]float64{1, 2, 3}, 1))
}

func TestL2Integer(t *testing.T) {
	l2 := NewL2[int](2)
	assert.InDelta(t, 5.0, l2.Distance([]int{0, 0}, []int{3, 4}), 1e-9)
}

func TestL2Validate(t *testing.T) {
	l2 := NewL2[float64](3)
	require.NoError(t, l2.Validate([]float64{1, 2, 3}))

	err := l2.Validate([]float64{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestScalar(t *testing.T) {
	s := Scalar[int]{}
	assert.Equal(t, 7.0, s.Distance(-2, 5))
	assert.Equal(t, 1, s.Dimension())
	assert.Equal(t, -2.0, s.Coordinate(-2, 0))
}

func TestFloat32L2(t *testing.T) {
	f := NewFloat32L2(2)
	assert.InDelta(t, 5.0, f.Distance([]float32{0, 0}, []float32{3, 4}), 1e-5)
	assert.InDelta(t, 0.0, f.Distance([]float32{1, 1}, []float32{1, 1}), 1e-6)
	assert.Equal(t, 2, f.Dimension())
	assert.Error(t, f.Validate([]float32{1}))
}

func TestFloat32Cosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"Parallel", []float32{1, 0}, []float32{2, 0}, 0},
		{"Diagonal", []float32{1, 1}, []float32{3, 3}, 0},
		{"Orthogonal", []float32{1, 0}, []float32{0, 3}, 1},
		{"Opposite", []float32{1, 2}, []float32{-1, -2}, 2},
		{"ZeroAndNonZero", []float32{0, 0}, []float32{0, 3}, 1},
		{"BothZero", []float32{0, 0}, []float32{0, 0}, 0},
	}

	f := NewFloat32Cosine(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, f.Distance(tt.a, tt.b), 1e-5)
			assert.InDelta(t, tt.expected, f.Distance(tt.b, tt.a), 1e-5)
			assert.GreaterOrEqual(t, f.Distance(tt.a, tt.b), 0.0)
		})
	}

	var dm *DimensionMismatchError
	require.ErrorAs(t, f.Validate([]float32{1, 2, 3}), &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.NoError(t, f.Validate([]float32{1, 2}))
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 25.0, SquaredEuclidean([]float64{0, 0}, []float64{3, 4}), 1e-9)
	assert.InDelta(t, 5.0, Euclidean([]float64{0, 0}, []float64{3, 4}), 1e-9)
}

func TestVector(t *testing.T) {
	l2 := NewL2[int32](3)
	v := Vector[[]int32](l2, []int32{1, 2, 3}, nil)
	assert.Equal(t, []float64{1, 2, 3}, v)

	buf := make([]float64, 8)
	v = Vector[[]int32](l2, []int32{4, 5, 6}, buf)
	assert.Len(t, v, 3)
	assert.Equal(t, 4.0, buf[0])
}
