// Package index provides the search index contract and its configuration.
package index

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Neighbor represents a search result.
type Neighbor struct {
	// ID is the position of the point in the index's point list.
	ID int

	// Distance is the distance between the query and the point.
	Distance float64
}

// Index is a nearest neighbor search engine over points of type E.
//
// An index keeps references to the points it was built or extended with and
// never copies them. Callers must keep the backing storage of those points in
// place for the lifetime of the index.
type Index[E any] interface {
	// Algorithm reports the variant of the index.
	Algorithm() Algorithm

	// AddPoints extends the index with points. The index restructures itself
	// completely when rebuildThreshold > 1 and the number of points it was
	// last built with, times rebuildThreshold, is below its current size.
	AddPoints(points []E, rebuildThreshold float64) error

	// RemovePoint marks the point with the given id as removed.
	RemovePoint(id int) error

	// Point returns a reference to the point with the given id. Removed
	// points remain addressable until the index is discarded.
	Point(id int) (*E, error)

	// KNNSearch returns up to k neighbors of query, closest first.
	KNNSearch(query E, k int, params SearchParams) ([]Neighbor, error)

	// RadiusSearch returns the neighbors within radius of query.
	RadiusSearch(query E, radius float64, params SearchParams) ([]Neighbor, error)

	// Size returns the number of points that have not been removed.
	Size() int
}

// Algorithm identifies an index variant.
type Algorithm int

// Index variants.
const (
	AlgorithmLinear Algorithm = iota
	AlgorithmKDTree
	AlgorithmKDTreeSingle
	AlgorithmKMeans
	AlgorithmComposite
	AlgorithmHierarchicalClustering
	AlgorithmHNSW
	AlgorithmKDTreeCuda3d
)

var algorithmNames = map[Algorithm]string{
	AlgorithmLinear:                 "linear",
	AlgorithmKDTree:                 "kdtree",
	AlgorithmKDTreeSingle:           "kdtree_single",
	AlgorithmKMeans:                 "kmeans",
	AlgorithmComposite:              "composite",
	AlgorithmHierarchicalClustering: "hierarchical",
	AlgorithmHNSW:                   "hnsw",
	AlgorithmKDTreeCuda3d:           "kdtree_cuda3d",
}

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(a))
}

// ParseAlgorithm parses a configuration name. Matching is case-insensitive.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range algorithmNames {
		if name == s {
			return a, nil
		}
	}
	return 0, &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q", s)}
}

// MarshalYAML encodes the algorithm by name.
func (a Algorithm) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML decodes an algorithm name.
func (a *Algorithm) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
