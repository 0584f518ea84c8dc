package distance

import "math"

// Compile time checks.
var (
	_ Coordinates[[]float64] = L2[float64]{}
	_ Validator[[]float64]   = L2[float64]{}
	_ Coordinates[float64]   = Scalar[float64]{}
)

// L2 is the Euclidean distance over fixed-dimension numeric slices.
// It computes natively without a user callback.
type L2[S Number] struct {
	dim int
}

// NewL2 returns a Euclidean adapter for vectors of the given dimension.
func NewL2[S Number](dim int) L2[S] {
	return L2[S]{dim: dim}
}

// Distance returns the Euclidean distance of a and b.
func (l L2[S]) Distance(a, b []S) float64 {
	var sum float64
	for i := 0; i < l.dim && i < len(a) && i < len(b); i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Dimension returns the vector dimension.
func (l L2[S]) Dimension() int { return l.dim }

// Coordinate returns e[i] as float64.
func (l L2[S]) Coordinate(e []S, i int) float64 { return float64(e[i]) }

// Validate rejects vectors whose length differs from the dimension.
func (l L2[S]) Validate(e []S) error {
	if len(e) != l.dim {
		return &DimensionMismatchError{Expected: l.dim, Actual: len(e)}
	}
	return nil
}

// Scalar is the absolute difference over single numbers.
type Scalar[S Number] struct{}

// Distance returns |a-b|.
func (Scalar[S]) Distance(a, b S) float64 {
	return math.Abs(float64(a) - float64(b))
}

// Dimension is always 1.
func (Scalar[S]) Dimension() int { return 1 }

// Coordinate returns e.
func (Scalar[S]) Coordinate(e S, _ int) float64 { return float64(e) }
