package utils

import (
	"math"
	"sort"
)

// DotProduct calculates the dot product of two float32 vectors.
// Returns 0 if vectors have different lengths.
func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var result float64
	for i := range a {
		result += float64(a[i]) * float64(b[i])
	}
	return result
}

// Magnitude calculates the Euclidean magnitude (L2 norm) of a float32 vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize normalizes a float32 vector to unit length.
// Returns nil if the input is empty or has zero magnitude.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	mag := Magnitude(v)
	if mag == 0 {
		return nil
	}

	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(float64(x) / mag)
	}
	return result
}

// ScoredItem represents an item with a score for top-K selection.
type ScoredItem[T any] struct {
	Item  T
	Score float64
}

// TopKByScore returns the k items with the highest scores, in descending
// score order. Items with equal scores keep their input order, so the result
// is fully determined by the input. NaN scores sort last.
func TopKByScore[T any](items []ScoredItem[T], k int) []ScoredItem[T] {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	result := make([]ScoredItem[T], len(items))
	copy(result, items)
	sort.SliceStable(result, func(i, j int) bool {
		return scoreGreater(result[i].Score, result[j].Score)
	})

	if k < len(result) {
		result = result[:k]
	}
	return result
}

func scoreGreater(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}
