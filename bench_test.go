package nnsearch_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/nnsearch"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/testutil"
)

func benchBuilders() map[string]nnsearch.Builder[[]float64] {
	return map[string]nnsearch.Builder[[]float64]{
		"linear":       nnsearch.Vectors[float64](8).Linear(),
		"kdtree":       nnsearch.Vectors[float64](8).Index(index.DefaultKDTreeParams()),
		"kdtreeSingle": nnsearch.Vectors[float64](8).Index(index.DefaultKDTreeSingleParams()),
		"kmeans":       nnsearch.Vectors[float64](8).Index(index.DefaultKMeansParams()),
		"hierarchical": nnsearch.Vectors[float64](8).Index(index.DefaultHierarchicalClusteringParams()),
		"hnsw":         nnsearch.Vectors[float64](8).Index(index.DefaultHNSWParams()),
	}
}

// BenchmarkAdd benchmarks single insertions including growth rebuilds.
func BenchmarkAdd(b *testing.B) {
	points := testutil.NewRNG(1).UniformPoints(10000, 8)

	for name, builder := range benchBuilders() {
		b.Run(name, func(b *testing.B) {
			s, err := builder.Build()
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()

			for i := 0; b.Loop(); i++ {
				if err := s.Add(points[i%len(points)]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkNearestK benchmarks k-NN queries with default search parameters.
func BenchmarkNearestK(b *testing.B) {
	rng := testutil.NewRNG(2)
	points := rng.UniformPoints(10000, 8)
	queries := rng.UniformPoints(100, 8)

	for name, builder := range benchBuilders() {
		for _, k := range []int{1, 10} {
			b.Run(fmt.Sprintf("%s/k=%d", name, k), func(b *testing.B) {
				s, err := builder.Build()
				if err != nil {
					b.Fatal(err)
				}
				if err := s.AddAll(points); err != nil {
					b.Fatal(err)
				}
				b.ResetTimer()

				for i := 0; b.Loop(); i++ {
					if _, err := s.NearestK(queries[i%len(queries)], k); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
