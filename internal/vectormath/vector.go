// Package vectormath implements the small amount of linear algebra the
// search engine needs: L2 normalisation, cosine similarity/distance and
// element-wise averaging over float32 embedding vectors.
package vectormath

import (
	"fmt"
	"math"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

// Normalize divides each component by the vector's L2 norm so the result
// has unit length. The zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity normalises both vectors and returns their dot product.
// Vectors of different lengths yield domain.ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	a = Normalize(a)
	b = Normalize(b)

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot, nil
}

// CosineDistance is 1 - CosineSimilarity. Lower means more similar.
func CosineDistance(a, b []float32) (float64, error) {
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// Mean returns the element-wise mean of the given vectors, renormalised to
// unit length. All vectors must share one dimension.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors to average", domain.ErrInvalidInput)
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(v), dim)
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	avg := make([]float32, dim)
	n := float64(len(vectors))
	for i, s := range sum {
		avg[i] = float32(s / n)
	}
	return Normalize(avg), nil
}
