// Package embed wraps the external embedding service behind a small client
// interface. It is the only part of the matching engine that performs
// network calls; everything else is deterministic string and numeric
// comparison.
package embed

import (
	"context"
	"math"
)

type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 0 for zero-norm vectors or mismatched lengths.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	na := math.Sqrt(normA)
	nb := math.Sqrt(normB)
	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (na * nb)
}
