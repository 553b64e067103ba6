// Package similarity provides similarity metrics for comparing
// embedding vectors.
package similarity

// Func computes the similarity between two embedding vectors. Higher
// values indicate greater similarity. Implementations return 0 for
// empty or mismatched-length inputs.
type Func func(a, b []float32) float32
