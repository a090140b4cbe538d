// Package vecmath provides the issue-space vector type and the similarity
// metrics used to compare member ideal points against proposals.
package vecmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. Every vector participating in one simulation must share
// the same dimension.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Vector is a point in the N-dimensional issue space.
type Vector []float64

// Metric selects the similarity function used for scoring.
type Metric string

const (
	// MetricCosine is cosine similarity in [-1, 1].
	MetricCosine Metric = "cosine"

	// MetricEuclidean is a decreasing transform of Euclidean distance,
	// mapped onto (-1, 1] so it shares a scale with cosine.
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric maps a string to a Metric. An empty string defaults to
// cosine. Unknown values return an error.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", MetricCosine:
		return MetricCosine, nil
	case MetricEuclidean:
		return MetricEuclidean, nil
	default:
		return "", fmt.Errorf("unknown similarity metric %q (valid: cosine, euclidean)", s)
	}
}

// Similarity computes the similarity between a and b under the given
// metric. It returns ErrDimensionMismatch if the lengths differ.
func Similarity(metric Metric, a, b Vector) (float64, error) {
	switch metric {
	case MetricEuclidean:
		return NegEuclidean(a, b)
	default:
		return Cosine(a, b)
	}
}

// Cosine computes the cosine similarity between a and b in [-1, 1].
// A zero-magnitude vector yields 0 rather than an error: a member with no
// position is orthogonal to every proposal.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: len(a)=%d len(b)=%d: %w", len(a), len(b), ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA < math.SmallestNonzeroFloat64 || normB < math.SmallestNonzeroFloat64 {
		return 0, nil
	}

	return dot / (normA * normB), nil
}

// NegEuclidean maps the Euclidean distance d between a and b to
// 2/(1+d) - 1: identical vectors score 1, and the score decreases
// monotonically toward -1 as the distance grows.
func NegEuclidean(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("euclidean: len(a)=%d len(b)=%d: %w", len(a), len(b), ErrDimensionMismatch)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return 2.0/(1.0+math.Sqrt(sum)) - 1.0, nil
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
