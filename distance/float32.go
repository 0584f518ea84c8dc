package distance

import "github.com/viant/vec/search"

var (
	_ Coordinates[[]float32] = Float32L2{}
	_ Validator[[]float32]   = Float32L2{}
	_ Validator[[]float32]   = Float32Cosine{}
)

// Float32L2 is the Euclidean distance over []float32 vectors computed with
// the vectorized kernels of github.com/viant/vec.
type Float32L2 struct {
	dim int
}

// NewFloat32L2 returns a Euclidean adapter for float32 vectors.
func NewFloat32L2(dim int) Float32L2 {
	return Float32L2{dim: dim}
}

// Distance returns the Euclidean distance of a and b.
func (f Float32L2) Distance(a, b []float32) float64 {
	return float64(search.Float32s(a).EuclideanDistance(b))
}

// Dimension returns the vector dimension.
func (f Float32L2) Dimension() int { return f.dim }

// Coordinate returns e[i] as float64.
func (f Float32L2) Coordinate(e []float32, i int) float64 { return float64(e[i]) }

// Validate rejects vectors whose length differs from the dimension.
func (f Float32L2) Validate(e []float32) error {
	if len(e) != f.dim {
		return &DimensionMismatchError{Expected: f.dim, Actual: len(e)}
	}
	return nil
}

// Float32Cosine is the cosine distance (1 - cosine similarity) over
// []float32 vectors. It is not Euclidean, so it does not expose coordinates
// and only serves generic-metric indexes.
type Float32Cosine struct {
	dim int
}

// NewFloat32Cosine returns a cosine adapter for float32 vectors.
func NewFloat32Cosine(dim int) Float32Cosine {
	return Float32Cosine{dim: dim}
}

// Distance returns the cosine distance of a and b. Zero vectors are at
// distance 1 from everything except other zero vectors.
func (f Float32Cosine) Distance(a, b []float32) float64 {
	va, vb := search.Float32s(a), search.Float32s(b)
	ma, mb := va.Magnitude(), vb.Magnitude()
	if ma == 0 || mb == 0 {
		if ma == mb {
			return 0
		}
		return 1
	}
	d := float64(va.CosineDistance(vb))
	if d < 0 {
		return 0
	}
	return d
}

// Validate rejects vectors whose length differs from the dimension.
func (f Float32Cosine) Validate(e []float32) error {
	if len(e) != f.dim {
		return &DimensionMismatchError{Expected: f.dim, Actual: len(e)}
	}
	return nil
}
