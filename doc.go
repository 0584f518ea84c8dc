// Package nnsearch provides nearest neighbor search over arbitrary element
// types under a caller-supplied distance.
//
// A Searcher owns the inserted elements and one index built over them. The
// index variant is chosen by its parameters and can be switched at any time:
//
//   - linear: exhaustive scan, always exact, any distance
//   - kdtree: forest of randomized kd-trees, Euclidean coordinates
//   - kdtree_single: one kd-tree, exact in low dimensions
//   - kmeans: hierarchical k-means tree, Euclidean coordinates
//   - composite: kd forest and k-means tree searched together
//   - hierarchical: clustering trees around stored elements, any distance
//   - hnsw: navigable small world graph, any distance
//
// # Quick Start
//
//	s, _ := nnsearch.NewKDTree[float64](2, index.DefaultKDTreeParams())
//	_ = s.AddAll([][]float64{{0, 0}, {1, 0}, {0, 1}})
//	p, _ := s.Nearest([]float64{0.1, 0.1})    // [0 0]
//	ns, _ := s.NearestK([]float64{0, 0}, 2)   // [[0 0] ...]
//	rs, _ := s.NearestR([]float64{0, 0}, 1.0) // all three
//	ok, _ := s.Remove([]float64{1, 0})        // true
//
// Element types without coordinates work with the linear, hierarchical and
// hnsw variants:
//
//	s, _ := nnsearch.NewHNSW(levenshtein, index.DefaultHNSWParams())
//
// # Rebuilds
//
// Indexes keep references into the element store. When the store has to
// grow, its capacity at least doubles and the index is rebuilt, so N single
// insertions cause O(log N) rebuilds. Removals, distance changes and index
// parameter changes rebuild as well. A rebuild is transactional: if building
// the new index fails the previous store and index stay in place.
//
// # Exactness
//
// Queries use the Searcher's index.SearchParams. index.Unlimited checks
// request an exact search from every variant. List always runs an exact
// query without touching the configured parameters.
//
// # Errors
//
// Every error returned by a Searcher is an *Error carrying an ErrorKind and
// matches one of ErrEmptyStructure, ErrInvalidConfiguration,
// ErrInvalidArgument or ErrBackend under errors.Is.
//
// A Searcher is not safe for concurrent use.
package nnsearch
