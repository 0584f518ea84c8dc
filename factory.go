package nnsearch

import (
	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/index/composite"
	"github.com/hupe1980/nnsearch/index/hierarchical"
	"github.com/hupe1980/nnsearch/index/hnsw"
	"github.com/hupe1980/nnsearch/index/kdtree"
	"github.com/hupe1980/nnsearch/index/kmeans"
	"github.com/hupe1980/nnsearch/index/linear"
)

// needsCoordinates reports whether an algorithm partitions coordinate space
// and therefore requires a distance.Coordinates adapter.
func needsCoordinates(a index.Algorithm) bool {
	switch a {
	case index.AlgorithmKDTree, index.AlgorithmKDTreeSingle, index.AlgorithmKMeans,
		index.AlgorithmComposite, index.AlgorithmKDTreeCuda3d:
		return true
	default:
		return false
	}
}

// CheckConfig reports whether params are valid and can be served with dist.
func CheckConfig[T any](dist distance.Adapter[T], params index.Params) error {
	if dist == nil {
		return ErrNilDistance
	}
	if params == nil {
		return &index.ConfigError{Field: "algorithm", Reason: "no index parameters"}
	}
	if err := params.Validate(); err != nil {
		return err
	}

	a := params.Algorithm()
	if needsCoordinates(a) {
		c, ok := dist.(distance.Coordinates[T])
		if !ok {
			return index.NewConfigError(a, "distance", "requires an adapter with coordinates")
		}
		if c.Dimension() < 1 {
			return index.NewConfigError(a, "dimension", "must be positive")
		}
	}
	if a == index.AlgorithmKDTreeCuda3d {
		return index.NewConfigError(a, "", "GPU backend unavailable")
	}
	return nil
}

// BuildIndex constructs the index variant selected by params over points.
// The index keeps references into points; the backing array must not be
// reallocated while the index is in use.
func BuildIndex[T any](points []T, dist distance.Adapter[T], params index.Params) (index.Index[T], error) {
	if err := CheckConfig(dist, params); err != nil {
		return nil, err
	}

	coords, _ := dist.(distance.Coordinates[T])
	switch p := params.(type) {
	case index.LinearParams:
		return linear.New(points, dist), nil
	case index.KDTreeParams:
		f, err := kdtree.NewForest(points, coords, p)
		if err != nil {
			return nil, err
		}
		return f, nil
	case index.KDTreeSingleParams:
		s, err := kdtree.NewSingle(points, coords, p)
		if err != nil {
			return nil, err
		}
		return s, nil
	case index.KMeansParams:
		t, err := kmeans.New(points, coords, p)
		if err != nil {
			return nil, err
		}
		return t, nil
	case index.CompositeParams:
		c, err := composite.New(points, coords, p)
		if err != nil {
			return nil, err
		}
		return c, nil
	case index.HierarchicalClusteringParams:
		h, err := hierarchical.New(points, dist, p)
		if err != nil {
			return nil, err
		}
		return h, nil
	case index.HNSWParams:
		h, err := hnsw.New(points, dist, p)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, index.NewConfigError(params.Algorithm(), "", "unsupported algorithm")
	}
}
