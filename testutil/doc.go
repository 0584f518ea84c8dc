// Package testutil provides testing utilities for nnsearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points, computing exact
// nearest neighbors, verifying recall, and a conformance suite that every
// index variant runs.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 3)            // uniform [0, 1)
//	points = rng.ClusteredPoints(1000, 3, 8, 0.05)  // around 8 centers
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactKNN(points, dist, query, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, approx)
//
// # Conformance
//
//	testutil.CheckIndex(t, build, testutil.CheckOptions{MinRecall: 0.5})
package testutil
