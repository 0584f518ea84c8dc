package nnsearch

import (
	"slices"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// =============================================================================
// Builder (Immutable)
// =============================================================================

// Builder is an immutable fluent builder for Searchers.
// Each method returns a new builder with the updated configuration.
//
// Example:
//
//	s, err := nnsearch.Vectors[float32](3).
//	    KDTree(4).
//	    Checks(128).
//	    Capacity(1 << 16).
//	    Build()
type Builder[T any] struct {
	dist     distance.Adapter[T]
	params   index.Params
	search   index.SearchParams
	capacity int
	equal    func(a, b T) bool
	clone    func(T) T
	logger   *Logger
	metrics  MetricsCollector
}

// For creates a builder for elements compared by dist. The index defaults to
// an exhaustive linear scan.
func For[T any](dist distance.Adapter[T]) Builder[T] {
	return Builder[T]{
		dist:   dist,
		params: index.LinearParams{},
		search: index.DefaultSearchParams(),
	}
}

// ForFunc creates a builder for elements compared by a distance function.
func ForFunc[T any](dist func(a, b T) float64) Builder[T] {
	var adapter distance.Adapter[T]
	if dist != nil {
		adapter = distance.Func[T](dist)
	}
	return For(adapter)
}

// Vectors creates a builder for vectors of dimension dim compared by
// Euclidean distance and by value. Inserted vectors are copied.
func Vectors[S distance.Number](dim int) Builder[[]S] {
	return For[[]S](distance.NewL2[S](dim)).
		Equal(func(a, b []S) bool { return slices.Equal(a, b) }).
		Clone(func(v []S) []S { return slices.Clone(v) })
}

// Index sets the index parameters directly.
func (b Builder[T]) Index(p index.Params) Builder[T] {
	b.params = p
	return b
}

// Linear selects the exhaustive linear index.
func (b Builder[T]) Linear() Builder[T] {
	b.params = index.LinearParams{}
	return b
}

// KDTree selects a forest of randomized kd-trees.
func (b Builder[T]) KDTree(trees int) Builder[T] {
	p := index.DefaultKDTreeParams()
	p.Trees = trees
	b.params = p
	return b
}

// KDTreeSingle selects a single kd-tree with the given leaf size.
func (b Builder[T]) KDTreeSingle(leafMaxSize int) Builder[T] {
	p := index.DefaultKDTreeSingleParams()
	p.LeafMaxSize = leafMaxSize
	b.params = p
	return b
}

// KMeans selects a hierarchical k-means tree.
func (b Builder[T]) KMeans(branching, iterations int) Builder[T] {
	p := index.DefaultKMeansParams()
	p.Branching = branching
	p.Iterations = iterations
	b.params = p
	return b
}

// Composite selects a kd forest combined with a k-means tree.
func (b Builder[T]) Composite(trees, branching int) Builder[T] {
	p := index.DefaultCompositeParams()
	p.Trees = trees
	p.Branching = branching
	b.params = p
	return b
}

// HierarchicalClustering selects a forest of clustering trees.
func (b Builder[T]) HierarchicalClustering(trees, branching, leafMaxSize int) Builder[T] {
	p := index.DefaultHierarchicalClusteringParams()
	p.Trees = trees
	p.Branching = branching
	p.LeafMaxSize = leafMaxSize
	b.params = p
	return b
}

// HNSW selects a navigable small world graph.
func (b Builder[T]) HNSW(m, efConstruction int) Builder[T] {
	p := index.DefaultHNSWParams()
	p.M = m
	p.EfConstruction = efConstruction
	b.params = p
	return b
}

// Checks bounds the distance evaluations of approximate queries.
func (b Builder[T]) Checks(n int) Builder[T] {
	b.search.Checks = n
	return b
}

// Eps relaxes pruning by a factor of 1+eps.
func (b Builder[T]) Eps(eps float64) Builder[T] {
	b.search.Eps = eps
	return b
}

// MaxNeighbors caps radius results.
func (b Builder[T]) MaxNeighbors(n int) Builder[T] {
	b.search.MaxNeighbors = n
	return b
}

// Exact makes every query exact.
func (b Builder[T]) Exact() Builder[T] {
	b.search = b.search.Exact()
	return b
}

// Capacity preallocates room for n elements.
func (b Builder[T]) Capacity(n int) Builder[T] {
	b.capacity = n
	return b
}

// Equal sets the equality used by Remove.
func (b Builder[T]) Equal(equal func(a, b T) bool) Builder[T] {
	b.equal = equal
	return b
}

// Logger sets the logger.
func (b Builder[T]) Logger(l *Logger) Builder[T] {
	b.logger = l
	return b
}

// Clone sets the copy applied to every inserted element.
func (b Builder[T]) Clone(clone func(T) T) Builder[T] {
	b.clone = clone
	return b
}

// Metrics sets the metrics collector.
func (b Builder[T]) Metrics(mc MetricsCollector) Builder[T] {
	b.metrics = mc
	return b
}

// Build validates the configuration and creates an empty Searcher.
func (b Builder[T]) Build() (*Searcher[T], error) {
	opts := []Option{
		WithIndexParams(b.params),
		WithSearchParams(b.search),
		WithCapacity(b.capacity),
	}
	if b.equal != nil {
		opts = append(opts, WithEqual(b.equal))
	}
	if b.clone != nil {
		opts = append(opts, WithClone(b.clone))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	return New(b.dist, opts...)
}
