// Package distance provides the distance adapters search indexes call.
//
// Two kinds of adapter exist:
//
//   - Func wraps an arbitrary user function and works for any element type.
//   - Specialized adapters (L2, Scalar, Float32L2) compute Euclidean distance
//     natively and expose coordinates, which space partitioning indexes need.
//
// Float32L2 and Float32Cosine use the kernels of github.com/viant/vec.
//
// # Usage
//
//	d := distance.Func[string](levenshtein)
//	v := distance.NewL2[float64](3)
//	dist := v.Distance([]float64{0, 0, 0}, []float64{1, 2, 2}) // 3
package distance
