package similarity

import "math"

// Cosine computes the cosine similarity between two vectors: the
// normalized dot product, independent of vector magnitude. The result
// is in [-1, 1]; for embedding vectors from the supported providers it
// is effectively in [0, 1].
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
