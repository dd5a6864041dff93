package memory

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the normalized dot product of u and v, in [-1, 1].
// Vectors of different lengths fail with ErrDimensionMismatch. A
// zero-magnitude vector yields 0 rather than NaN, so a degenerate embedding
// can never dominate or poison a ranking.
func CosineSimilarity(u, v []float32) (float64, error) {
	if len(u) != len(v) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(u), len(v))
	}

	var dot, normU, normV float64
	for i := range u {
		dot += float64(u[i]) * float64(v[i])
		normU += float64(u[i]) * float64(u[i])
		normV += float64(v[i]) * float64(v[i])
	}

	if normU == 0 || normV == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normU) * math.Sqrt(normV)), nil
}
