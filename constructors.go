package nnsearch

import (
	"slices"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// NewLinear creates a Searcher that compares queries against every element
// with the given distance function. Results are always exact.
func NewLinear[T any](dist func(a, b T) float64, optFns ...Option) (*Searcher[T], error) {
	return newWithFunc(dist, index.LinearParams{}, optFns)
}

// NewHierarchicalClustering creates a Searcher over a forest of clustering
// trees whose centers are stored elements. Only the distance function is
// needed, so any element type works.
func NewHierarchicalClustering[T any](dist func(a, b T) float64, params index.HierarchicalClusteringParams, optFns ...Option) (*Searcher[T], error) {
	return newWithFunc(dist, params, optFns)
}

// NewHNSW creates a Searcher over a navigable small world graph under the
// given distance function.
func NewHNSW[T any](dist func(a, b T) float64, params index.HNSWParams, optFns ...Option) (*Searcher[T], error) {
	return newWithFunc(dist, params, optFns)
}

func newWithFunc[T any](dist func(a, b T) float64, params index.Params, optFns []Option) (*Searcher[T], error) {
	if dist == nil {
		return nil, translateError("new", ErrNilDistance)
	}
	return New[T](distance.Func[T](dist), prepend(optFns, WithIndexParams(params))...)
}

// NewKDTree creates a Searcher over vectors of dimension dim compared by
// Euclidean distance, indexed by a forest of randomized kd-trees.
func NewKDTree[S distance.Number](dim int, params index.KDTreeParams, optFns ...Option) (*Searcher[[]S], error) {
	return newVectors[S](dim, params, optFns)
}

// NewKDTreeSingle creates a Searcher over vectors of dimension dim indexed by
// a single kd-tree. Suited to exact search in low dimensions.
func NewKDTreeSingle[S distance.Number](dim int, params index.KDTreeSingleParams, optFns ...Option) (*Searcher[[]S], error) {
	return newVectors[S](dim, params, optFns)
}

// NewKMeans creates a Searcher over vectors of dimension dim indexed by a
// hierarchical k-means tree.
func NewKMeans[S distance.Number](dim int, params index.KMeansParams, optFns ...Option) (*Searcher[[]S], error) {
	return newVectors[S](dim, params, optFns)
}

// NewComposite creates a Searcher over vectors of dimension dim indexed by
// both a kd forest and a k-means tree.
func NewComposite[S distance.Number](dim int, params index.CompositeParams, optFns ...Option) (*Searcher[[]S], error) {
	return newVectors[S](dim, params, optFns)
}

// NewKDTreeCuda3d requests a GPU kd-tree over three dimensional vectors.
// This build has no GPU backend, so it always fails with
// ErrInvalidConfiguration.
func NewKDTreeCuda3d[S distance.Number](params index.KDTreeCuda3dParams, optFns ...Option) (*Searcher[[]S], error) {
	return newVectors[S](3, params, optFns)
}

func newVectors[S distance.Number](dim int, params index.Params, optFns []Option) (*Searcher[[]S], error) {
	opts := prepend(optFns,
		WithIndexParams(params),
		WithEqual(func(a, b []S) bool { return slices.Equal(a, b) }),
		WithClone(func(v []S) []S { return slices.Clone(v) }),
	)
	return New[[]S](distance.NewL2[S](dim), opts...)
}

// prepend puts defaults before the caller's options so the caller wins.
func prepend(optFns []Option, defaults ...Option) []Option {
	return append(defaults, optFns...)
}
