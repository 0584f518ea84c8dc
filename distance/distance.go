// Package distance provides the distance adapters the search indexes call.
package distance

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when an element does not have the
// dimension an adapter was created for.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionMismatchError carries the expected and actual dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Unwrap allows errors.Is(err, ErrDimensionMismatch).
func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}

// Adapter computes the distance between two elements.
//
// Implementations must return a non-negative value and should be symmetric.
// Zero is expected only for identical elements.
type Adapter[E any] interface {
	Distance(a, b E) float64
}

// Coordinates is implemented by adapters over fixed-size numeric elements
// whose distance is Euclidean in the exposed coordinates. Space partitioning
// indexes (kd-trees, k-means trees) require it.
type Coordinates[E any] interface {
	Adapter[E]

	// Dimension returns the number of coordinates per element.
	Dimension() int

	// Coordinate returns coordinate i of e as float64.
	Coordinate(e E, i int) float64
}

// Validator is implemented by adapters that can reject malformed elements
// before they reach an index.
type Validator[E any] interface {
	Validate(e E) error
}

// Func adapts a plain function to the Adapter interface.
// The function is invoked once per evaluated pair.
type Func[E any] func(a, b E) float64

// Distance calls f(a, b).
func (f Func[E]) Distance(a, b E) float64 {
	return f(a, b)
}

// Number is the set of scalar types the specialized adapters accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// SquaredEuclidean returns the squared Euclidean distance of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Euclidean returns the Euclidean distance of two vectors.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// Vector copies the coordinates of e into dst (allocating when dst is too
// short) and returns it.
func Vector[E any](c Coordinates[E], e E, dst []float64) []float64 {
	dim := c.Dimension()
	if cap(dst) < dim {
		dst = make([]float64, dim)
	}
	dst = dst[:dim]
	for i := range dim {
		dst[i] = c.Coordinate(e, i)
	}
	return dst
}
