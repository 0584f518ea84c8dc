// Package index provides the nearest neighbor index contract, its
// configuration and the shared helpers of the index implementations.
//
// # Index Selection
//
// The concrete Params type selects the variant:
//
//   - LinearParams: exhaustive search, exact, any distance
//   - KDTreeParams: randomized kd-tree forest, approximate, Euclidean coordinates
//   - KDTreeSingleParams: single kd-tree, exact, low dimensional coordinates
//   - KMeansParams: hierarchical k-means tree, approximate, Euclidean coordinates
//   - CompositeParams: kd forest and k-means tree searched together
//   - HierarchicalClusteringParams: clustering forest with point centers, any distance
//   - HNSWParams: navigable small world graph, approximate, any distance
//   - KDTreeCuda3dParams: GPU kd-tree, not available in this build
//
// # Search Tuning
//
// SearchParams.Checks bounds the work of approximate variants. Setting it to
// Unlimited requests an exact search from every variant.
//
// # Configuration Files
//
// Config reads the index and search tuning from YAML:
//
//	index:
//	  algorithm: kmeans
//	  branching: 16
//	  centers_init: kmeanspp
//	search:
//	  checks: 128
//
// # Subpackages
//
//   - linear: exhaustive search
//   - kdtree: kd forest and single kd-tree
//   - kmeans: k-means tree
//   - hierarchical: hierarchical clustering forest
//   - composite: kd forest plus k-means tree
//   - hnsw: graph index
package index
